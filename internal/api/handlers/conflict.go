package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/soliloquy-hq/credo/internal/api/middleware"
	"github.com/soliloquy-hq/credo/internal/service"
)

type ConflictHandler struct {
	svc *service.ConflictService
}

func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{svc: svc}
}

type detectRequest struct {
	CardID string `json:"card_id"`
}

func (r detectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CardID, validation.Required, is.UUID),
	)
}

// Detect runs conflict detection for one card synchronously and returns
// only the conflicts this call created.
func (h *ConflictHandler) Detect(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	var req detectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card_id")
		return
	}

	created, err := h.svc.DetectConflicts(r.Context(), cardID, ownerID)
	if err != nil {
		if errors.Is(err, service.ErrCardNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "conflict detection failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conflicts": created, "count": len(created)})
}

func (h *ConflictHandler) ListUnresolved(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	conflicts, err := h.svc.GetUnresolvedConflicts(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conflicts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conflicts": conflicts, "count": len(conflicts)})
}

func (h *ConflictHandler) CountUnresolved(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	count, err := h.svc.GetUnresolvedConflictCount(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count conflicts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// ListByCard lists edges touching one card, regardless of which side of
// the canonical pair the card sits on.
func (h *ConflictHandler) ListByCard(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	conflicts, err := h.svc.GetConflictsByCard(r.Context(), cardID, ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conflicts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conflicts": conflicts, "count": len(conflicts)})
}

func (h *ConflictHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conflict id")
		return
	}

	if err := h.svc.AcknowledgeConflict(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, service.ErrConflictNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to acknowledge conflict")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "acknowledged"})
}
