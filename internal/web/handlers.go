package web

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alignlab/entalign/internal/corpus"
	"github.com/alignlab/entalign/internal/errors"
	"github.com/alignlab/entalign/internal/match"
	"github.com/alignlab/entalign/internal/ops"
)

// identityHeader carries the acting user, set by the upstream auth layer.
const identityHeader = "X-Annotator-Id"

// Handlers contains HTTP route handlers for the alignment API.
type Handlers struct {
	db      *sql.DB
	store   *corpus.Store
	engine  *match.Engine
	version string
}

// identity extracts the acting user from the request headers.
func identity(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(identityHeader))
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": h.version,
		"texts":   h.store.Len(),
	})
}

// HandleTexts handles GET /texts — list corpus texts with the user's
// annotation progress.
func (h *Handlers) HandleTexts(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Status(r.Context(), h.db, h.store, ops.StatusInput{User: identity(r)})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleTextDetail handles GET /texts/{text_id} — one text with its body
// and per-category progress.
func (h *Handlers) HandleTextDetail(w http.ResponseWriter, r *http.Request) {
	textID := r.PathValue("text_id")

	result, err := ops.Categories(r.Context(), h.db, h.store, ops.CategoriesInput{
		User:   identity(r),
		TextID: textID,
	})
	if err != nil {
		renderError(w, err)
		return
	}

	record := h.store.Get(textID)
	renderJSON(w, http.StatusOK, map[string]any{
		"text_id":    result.TextID,
		"text":       record.Text,
		"categories": result.Categories,
		"done":       result.Done,
	})
}

// HandleCategories handles GET /texts/{text_id}/categories.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Categories(r.Context(), h.db, h.store, ops.CategoriesInput{
		User:   identity(r),
		TextID: r.PathValue("text_id"),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// alignRequest is the POST /align body.
type alignRequest struct {
	TextID   string `json:"text_id"`
	Category string `json:"category"`
	Strategy string `json:"strategy,omitempty"`
}

// HandleAlign handles POST /align — run the matcher, persist nothing.
func (h *Handlers) HandleAlign(w http.ResponseWriter, r *http.Request) {
	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	result, err := ops.Align(r.Context(), h.store, h.engine, ops.AlignInput{
		User:     identity(r),
		TextID:   req.TextID,
		Category: req.Category,
		Strategy: match.Strategy(req.Strategy),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// submitRequest is the POST /annotations body.
type submitRequest struct {
	TextID     string              `json:"text_id"`
	Text       string              `json:"text,omitempty"`
	Entities   map[string][]string `json:"entities"`
	Matched    map[string][]string `json:"matched,omitempty"`
	Unmatched  map[string][]string `json:"unmatched,omitempty"`
	Undetected map[string][]string `json:"undetected,omitempty"`
}

// HandleSubmit handles POST /annotations — persist reviewed annotations.
func (h *Handlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, errors.NewInvalidRequest("invalid JSON body"))
		return
	}

	result, err := ops.Submit(r.Context(), h.db, h.store, ops.SubmitInput{
		User:       identity(r),
		TextID:     req.TextID,
		Text:       req.Text,
		Entities:   req.Entities,
		Matched:    req.Matched,
		Unmatched:  req.Unmatched,
		Undetected: req.Undetected,
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusCreated, result)
}

// HandleList handles GET /annotations — the user's records, newest first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db, ops.ListInput{User: identity(r)})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleDelete handles DELETE /annotations/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{
		User: identity(r),
		ID:   r.PathValue("id"),
	})
	if err != nil {
		renderError(w, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}
