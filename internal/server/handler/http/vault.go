package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/addictsagenda/agenda/internal/middleware"
	"github.com/addictsagenda/agenda/internal/service"
)

// maxValueSize bounds one field's payload. The largest real domain (a
// journal of years) stays far below this.
const maxValueSize = 1 << 20

// VaultService defines the interface for vault document operations
// required by the VaultHandler.
type VaultService interface {
	// GetValue returns one field of the user's document.
	GetValue(ctx context.Context, login, key string) (json.RawMessage, error)
	// GetDocument returns the user's full document.
	GetDocument(ctx context.Context, login string) (map[string]json.RawMessage, error)
	// PutValue merge-writes one field of the user's document.
	PutValue(ctx context.Context, login, key string, value json.RawMessage) error
	// DeleteDocument removes the user's entire document.
	DeleteDocument(ctx context.Context, login string) error
}

// VaultHandler handles HTTP requests for the per-user vault document.
type VaultHandler struct {
	VaultService VaultService
}

// GetValue handles GET /api/vault/{key}.
// Absent fields respond 404; the client resolves that to the domain
// default. Keys outside the registry respond 400.
func (h *VaultHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetUserIDFromContext(r.Context())
	key := chi.URLParam(r, "key")

	value, err := h.VaultService.GetValue(r.Context(), login, key)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownKey):
			http.Error(w, "unknown key", http.StatusBadRequest)
		case errors.Is(err, service.ErrFieldAbsent):
			http.Error(w, "not found", http.StatusNotFound)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(value)
}

// PutValue handles PUT /api/vault/{key}.
// The body is the field's raw JSON value; it is merged into the user's
// document without touching sibling fields.
func (h *VaultHandler) PutValue(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetUserIDFromContext(r.Context())
	key := chi.URLParam(r, "key")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxValueSize))
	if err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.VaultService.PutValue(r.Context(), login, key, body); err != nil {
		if errors.Is(err, service.ErrUnknownKey) {
			http.Error(w, "unknown key", http.StatusBadRequest)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDocument handles GET /api/vault, returning the full document for
// export. A user with no data gets an empty object.
func (h *VaultHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetUserIDFromContext(r.Context())

	doc, err := h.VaultService.GetDocument(r.Context(), login)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(doc)
}

// DeleteDocument handles DELETE /api/vault, the account data wipe.
func (h *VaultHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	login := middleware.GetUserIDFromContext(r.Context())

	if err := h.VaultService.DeleteDocument(r.Context(), login); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
