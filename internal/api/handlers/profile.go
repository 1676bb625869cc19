package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/soliloquy-hq/credo/internal/api/middleware"
	"github.com/soliloquy-hq/credo/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
}

func NewProfileHandler(svc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// Rebuild re-derives the owner's cognitive profiles from their active
// cards. Existing profiles whose topics survive are updated in place;
// the rest are deactivated.
func (h *ProfileHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	profiles, err := h.svc.RebuildProfiles(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "profile rebuild failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles, "count": len(profiles)})
}

func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	profiles, err := h.svc.ListProfiles(r.Context(), ownerID, includeInactive)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list profiles")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles, "count": len(profiles)})
}

// Detect compares one card against the owner's active profiles and
// returns only the conflicts this call created.
func (h *ProfileHandler) Detect(w http.ResponseWriter, r *http.Request) {
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

	created, err := h.svc.DetectConflicts(r.Context(), ownerID, cardID)
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

func (h *ProfileHandler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	conflicts, err := h.svc.ListConflicts(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list conflicts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"conflicts": conflicts, "count": len(conflicts)})
}

func (h *ProfileHandler) AcknowledgeConflict(w http.ResponseWriter, r *http.Request) {
	h.setConflictFlag(w, r, h.svc.AcknowledgeConflict, "acknowledged")
}

func (h *ProfileHandler) DismissConflict(w http.ResponseWriter, r *http.Request) {
	h.setConflictFlag(w, r, h.svc.DismissConflict, "dismissed")
}

func (h *ProfileHandler) setConflictFlag(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, conflictID, ownerID uuid.UUID) error, status string) {
	ownerID := middleware.OwnerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conflict id")
		return
	}

	if err := apply(r.Context(), id, ownerID); err != nil {
		if errors.Is(err, service.ErrConflictNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update conflict")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
