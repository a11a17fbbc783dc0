package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/lostfound/internal/matching"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// decodeOptionalJSON is decodeJSON that accepts an empty body.
func decodeOptionalJSON(r *http.Request, target any) error {
	err := decodeJSON(r, target)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// engineError maps matching errors to HTTP responses.
func engineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, matching.ErrNotFound):
		jsonError(w, http.StatusNotFound, "match not found")
	case errors.Is(err, matching.ErrForbidden):
		jsonError(w, http.StatusForbidden, "not a participant in this match")
	case errors.Is(err, matching.ErrInvalidInput):
		jsonError(w, http.StatusBadRequest, "invalid request")
	case matching.IsRetryable(err):
		slog.Warn("store unavailable", "request_id", RequestID(r.Context()), "error", err)
		w.Header().Set("Retry-After", "1")
		jsonError(w, http.StatusServiceUnavailable, "temporarily unavailable, try again")
	default:
		slog.Error("matching failed", "request_id", RequestID(r.Context()), "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
