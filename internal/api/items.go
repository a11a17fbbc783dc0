package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/imaging"
	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ItemsHandler handles lost and found reports.
type ItemsHandler struct {
	DB                *sql.DB
	Engine            *matching.Engine
	EvaluationTimeout time.Duration
	Image             imaging.Options
}

type itemRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Status        string `json:"status"`
	LocationLost  string `json:"location_lost"`
	LocationFound string `json:"location_found"`
	Color         string `json:"color"`
	Brand         string `json:"brand"`
}

type itemStatusRequest struct {
	ItemStatus string `json:"item_status"`
}

// itemResponse is returned when a write may have produced matches.
type itemResponse struct {
	Item    *model.Item   `json:"item"`
	Matches []model.Match `json:"matches"`
}

// validate trims the request and checks it describes a report in the given
// direction. Only the location field of that direction may be set.
func (req *itemRequest) validate(status string) string {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	req.LocationLost = strings.TrimSpace(req.LocationLost)
	req.LocationFound = strings.TrimSpace(req.LocationFound)
	req.Color = strings.TrimSpace(req.Color)
	req.Brand = strings.TrimSpace(req.Brand)

	switch {
	case req.Title == "":
		return "title required"
	case !model.ValidCategory(req.Category):
		return "invalid category"
	case !model.ValidStatus(status):
		return "status must be lost or found"
	case status == model.StatusLost && req.LocationFound != "":
		return "lost items take location_lost only"
	case status == model.StatusFound && req.LocationLost != "":
		return "found items take location_found only"
	}
	return ""
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (req *itemRequest) apply(item *model.Item) {
	item.Title = req.Title
	item.Description = req.Description
	item.Category = req.Category
	item.LocationLost = req.LocationLost
	item.LocationFound = req.LocationFound
	item.Color = req.Color
	item.Brand = req.Brand
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ItemFilter{
		Status:     q.Get("status"),
		ItemStatus: q.Get("item_status"),
		Category:   q.Get("category"),
	}
	if q.Get("mine") != "" {
		filter.UserID = GetClaims(r.Context()).UserID
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The new item is matched against the
// active reports of the opposite direction before responding.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Status = normalizeStatus(req.Status)
	if msg := req.validate(req.Status); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	in := &model.Item{UserID: claims.UserID, Status: req.Status}
	req.apply(in)

	item, err := store.CreateItem(r.Context(), h.DB, in)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item reported", "user", claims.Username, "item_id", item.ID, "status", item.Status)
	jsonResponse(w, http.StatusCreated, itemResponse{
		Item:    item,
		Matches: h.evaluate(r.Context(), item),
	})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookup(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Edits re-score the item's matches.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwned(w, r)
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Status = normalizeStatus(req.Status)
	if req.Status != "" && req.Status != item.Status {
		jsonError(w, http.StatusBadRequest, "status cannot be changed")
		return
	}
	if msg := req.validate(item.Status); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}
	req.apply(item)

	if err := store.UpdateItem(r.Context(), h.DB, item); err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	updated, err := store.GetItem(r.Context(), h.DB, item.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	jsonResponse(w, http.StatusOK, itemResponse{
		Item:    updated,
		Matches: h.evaluate(r.Context(), updated),
	})
}

// UpdateStatus handles PUT /api/items/{id}/status. Reactivated items are
// matched again.
func (h *ItemsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwned(w, r)
	if !ok {
		return
	}

	var req itemStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidItemStatus(req.ItemStatus) {
		jsonError(w, http.StatusBadRequest, "invalid item status")
		return
	}

	if err := store.SetItemStatus(r.Context(), h.DB, item.ID, req.ItemStatus); err != nil {
		slog.Error("failed to set item status", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item status")
		return
	}
	wasActive := item.ItemStatus == model.ItemStatusActive
	item.ItemStatus = req.ItemStatus

	resp := itemResponse{Item: item, Matches: []model.Match{}}
	if !wasActive && item.ItemStatus == model.ItemStatusActive {
		resp.Matches = h.evaluate(r.Context(), item)
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Evaluate handles POST /api/items/{id}/evaluate. Unlike create and update,
// matching failures are reported to the caller.
func (h *ItemsHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwned(w, r)
	if !ok {
		return
	}

	matches, err := h.Engine.EvaluateNewItem(r.Context(), item.ID, item.Status)
	if err != nil {
		engineError(w, r, err)
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, itemResponse{Item: item, Matches: matches})
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwned(w, r)
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, item.ID); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", GetClaims(r.Context()).Username, "item_id", item.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.lookupOwned(w, r)
	if !ok {
		return
	}

	limit := h.Image.MaxBytes
	if limit <= 0 {
		limit = imaging.DefaultMaxBytes
	}
	// Leave room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, limit+64<<10)

	if err := r.ParseMultipartForm(limit); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file, h.Image)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	case errors.Is(err, imaging.ErrUnsupported):
		jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
		return
	case err != nil:
		jsonError(w, http.StatusBadRequest, "invalid image")
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// evaluate runs the matching pass for item. Failures are logged and yield
// no matches so that the surrounding write still succeeds.
func (h *ItemsHandler) evaluate(ctx context.Context, item *model.Item) []model.Match {
	// Matching continues if the client goes away.
	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.EvaluationTimeout)
	defer cancel()

	matches, err := h.Engine.EvaluateNewItem(ectx, item.ID, item.Status)
	if err != nil {
		slog.Error("match evaluation failed",
			"request_id", RequestID(ctx),
			"item_id", item.ID,
			"retryable", matching.IsRetryable(err),
			"error", err,
		)
		return []model.Match{}
	}
	if matches == nil {
		matches = []model.Match{}
	}
	return matches
}

func (h *ItemsHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

// lookupOwned is lookup restricted to the item's owner and admins.
func (h *ItemsHandler) lookupOwned(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	item, ok := h.lookup(w, r)
	if !ok {
		return nil, false
	}
	claims := GetClaims(r.Context())
	if item.UserID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "not your item")
		return nil, false
	}
	return item, true
}
