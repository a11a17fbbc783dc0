package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erazemk/lostfound/internal/api"
	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/config"
	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/notify"
	"github.com/erazemk/lostfound/internal/store"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var adminUser string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, adminUser, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&adminUser, "user", "u", "admin", "Admin username on first run")
	return cmd
}

func runServe(parent context.Context, cfg *config.Config, adminUser string, out io.Writer) error {
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	closeLog, err := setupLogger(cfg.Logging.Path, level)
	if err != nil {
		return err
	}
	defer closeLog()

	// Check if DB exists, auto-init if not.
	dbPath := cfg.Database.Path
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(dbPath, adminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		database.Close()

		printInitResult(out, dbPath, adminUser, password)
		fmt.Fprintln(out)
	}

	database, err := openDatabase(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	slog.Info("database ready", "path", dbPath)

	jwtSecret, err := store.GetJWTSecret(parent, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	if n, err := store.PurgeExpiredTokens(parent, database, time.Now()); err != nil {
		slog.Warn("failed to purge revoked tokens", "error", err)
	} else if n > 0 {
		slog.Info("purged expired revoked tokens", "count", n)
	}

	engine := newEngine(cfg, database)

	router := api.NewRouter(api.Options{
		DB:                database,
		Engine:            engine,
		JWTSecret:         jwtSecret,
		EvaluationTimeout: time.Duration(cfg.Server.EvaluationTimeout) * time.Second,
		Image: imaging.Options{
			MaxDimension: cfg.Server.MaxImageDimension,
			MaxBytes:     cfg.Server.MaxImageBytes,
		},
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigCtx.Done():
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}

	// Handlers still running after a forced shutdown may create matches,
	// but no longer dispatch notifications.
	engine.Close()
	slog.Info("server stopped, closing database")
	return nil
}

// newEngine wires the matching engine to the SQLite stores and every
// configured notification sink.
func newEngine(cfg *config.Config, database *sql.DB) *matching.Engine {
	sinks := notify.Multi{notify.NewStoreSink(database)}
	ntfy := notify.NewNtfySink(
		cfg.Notifications.NtfyTopic,
		cfg.Notifications.BaseURL,
		time.Duration(cfg.Notifications.RequestTimeout)*time.Second,
	)
	if ntfy != nil {
		sinks = append(sinks, ntfy)
	}

	return matching.NewEngine(
		store.Items{DB: database},
		store.Matches{DB: database},
		sinks,
		matching.Options{
			Workers:       cfg.Matching.Workers,
			StoreTimeout:  cfg.Matching.StoreTimeout(),
			NotifyTimeout: cfg.Matching.NotifyTimeout(),
			Logger:        slog.Default(),
		},
	)
}

// openDatabase opens an existing database and brings its schema up to date.
func openDatabase(path string) (*sql.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

// initDatabase creates a new database, ensures the schema, and creates the admin user.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := openDatabase(path)
	if err != nil {
		os.Remove(path)
		return nil, "", err
	}

	fail := func(step string, err error) (*sql.DB, string, error) {
		database.Close()
		os.Remove(path)
		return nil, "", fmt.Errorf("%s: %w", step, err)
	}

	password, err := auth.GeneratePassword(16)
	if err != nil {
		return fail("generating password", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail("hashing password", err)
	}

	if _, err := store.CreateUser(context.Background(), database, adminUsername, hash, model.RoleAdmin); err != nil {
		return fail("creating admin user", err)
	}

	return database, password, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}
