package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soliloquy-hq/credo/internal/api/middleware"
	"github.com/soliloquy-hq/credo/internal/domain"
	"github.com/soliloquy-hq/credo/internal/service"
	"github.com/soliloquy-hq/credo/internal/store"
)

// detectTimeout bounds the background detection pass kicked off after a
// card is created. Generous because each admitted candidate costs one
// collaborator round trip.
const detectTimeout = 2 * time.Minute

type CardHandler struct {
	cards       domain.CardStore
	conflictSvc *service.ConflictService
	profileSvc  *service.ProfileService
	logger      *zap.Logger
}

func NewCardHandler(cards domain.CardStore, conflictSvc *service.ConflictService, profileSvc *service.ProfileService, logger *zap.Logger) *CardHandler {
	return &CardHandler{cards: cards, conflictSvc: conflictSvc, profileSvc: profileSvc, logger: logger}
}

type createCardRequest struct {
	Title            string `json:"title"`
	ViewpointSummary string `json:"viewpoint_summary"`
	Keywords         string `json:"keywords,omitempty"`
	TopicHint        string `json:"topic_hint,omitempty"`
}

func (r createCardRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.ViewpointSummary, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.Keywords, validation.Length(0, 1000)),
		validation.Field(&r.TopicHint, validation.Length(0, 200)),
	)
}

func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	card := &domain.Card{
		OwnerID:          ownerID,
		Title:            req.Title,
		ViewpointSummary: req.ViewpointSummary,
		Keywords:         req.Keywords,
		TopicHint:        req.TopicHint,
	}
	if err := h.cards.Create(r.Context(), card); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create card")
		return
	}

	// Conflict detection runs after the response; creation never waits
	// on the opinion collaborator.
	go h.detectInBackground(card.ID, ownerID)

	writeJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) detectInBackground(cardID, ownerID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), detectTimeout)
	defer cancel()

	if _, err := h.conflictSvc.DetectConflicts(ctx, cardID, ownerID); err != nil {
		h.logger.Warn("background card conflict detection failed",
			zap.String("card_id", cardID.String()),
			zap.Error(err))
	}
	if _, err := h.profileSvc.DetectConflicts(ctx, ownerID, cardID); err != nil {
		h.logger.Warn("background profile conflict detection failed",
			zap.String("card_id", cardID.String()),
			zap.Error(err))
	}
}

func (h *CardHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	card, err := h.cards.GetByID(r.Context(), id, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get card")
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	cards, err := h.cards.ListActiveByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards, "count": len(cards)})
}
