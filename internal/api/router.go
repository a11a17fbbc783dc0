package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
)

// Options configures the API router.
type Options struct {
	DB        *sql.DB
	Engine    *matching.Engine
	JWTSecret string

	// EvaluationTimeout bounds the matching pass run after an item is
	// created or edited.
	EvaluationTimeout time.Duration
	Image             imaging.Options
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	if opts.EvaluationTimeout <= 0 {
		opts.EvaluationTimeout = 15 * time.Second
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: opts.DB, JWTSecret: opts.JWTSecret}
	usersHandler := &UsersHandler{DB: opts.DB}
	itemsHandler := &ItemsHandler{
		DB:                opts.DB,
		Engine:            opts.Engine,
		EvaluationTimeout: opts.EvaluationTimeout,
		Image:             opts.Image,
	}
	matchesHandler := &MatchesHandler{Engine: opts.Engine}
	notificationsHandler := &NotificationsHandler{DB: opts.DB}

	authMW := AuthMiddleware(opts.JWTSecret, opts.DB)
	requireAdmin := RequireRole(model.RoleAdmin)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all users), write (owner or admin).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("PUT /api/items/{id}/status", authMW(http.HandlerFunc(itemsHandler.UpdateStatus)))
	mux.Handle("POST /api/items/{id}/evaluate", authMW(http.HandlerFunc(itemsHandler.Evaluate)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.UploadImage)))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	// Matches (participants only).
	mux.Handle("GET /api/matches", authMW(http.HandlerFunc(matchesHandler.List)))
	mux.Handle("GET /api/matches/{id}", authMW(http.HandlerFunc(matchesHandler.Get)))
	mux.Handle("POST /api/matches/{id}/confirm", authMW(http.HandlerFunc(matchesHandler.Confirm)))
	mux.Handle("POST /api/matches/{id}/reject", authMW(http.HandlerFunc(matchesHandler.Reject)))

	// Notifications (own inbox only).
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("GET /api/notifications/unread-count", authMW(http.HandlerFunc(notificationsHandler.UnreadCount)))
	mux.Handle("POST /api/notifications/read-all", authMW(http.HandlerFunc(notificationsHandler.MarkAllRead)))
	mux.Handle("POST /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))
	mux.Handle("DELETE /api/notifications/{id}", authMW(http.HandlerFunc(notificationsHandler.Delete)))

	return mux
}
