package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soliloquy-hq/credo/internal/domain"
	"github.com/soliloquy-hq/credo/internal/store"
)

var (
	ErrCardNotFound     = errors.New("card not found")
	ErrConflictNotFound = errors.New("conflict not found")
)

// ConflictService runs pairwise card-versus-card conflict detection and
// owns the CardConflict edge lifecycle. The service holds no mutable
// state; concurrent detections coordinate only through the storage
// layer's canonical-pair uniqueness constraint.
type ConflictService struct {
	cards      domain.CardStore
	conflicts  domain.CardConflictStore
	selector   *CandidateSelector
	classifier *Classifier
	logger     *zap.Logger
}

func NewConflictService(
	cards domain.CardStore,
	conflicts domain.CardConflictStore,
	selector *CandidateSelector,
	classifier *Classifier,
	logger *zap.Logger,
) *ConflictService {
	return &ConflictService{
		cards:      cards,
		conflicts:  conflicts,
		selector:   selector,
		classifier: classifier,
		logger:     logger,
	}
}

// DetectConflicts finds new conflicts between the focal card and its
// topically related peers. Only conflicts created by this call are
// returned; pairs with an existing edge are skipped before
// classification, and a pair lost to a racing writer is silently
// treated as already recorded.
func (s *ConflictService) DetectConflicts(ctx context.Context, cardID uuid.UUID, ownerID uuid.UUID) ([]domain.CardConflict, error) {
	focal, err := s.cards.GetByID(ctx, cardID, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	candidates, err := s.selector.PeerCards(ctx, focal, true)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("peer candidates admitted by topic gate",
		zap.String("card_id", focal.ID.String()),
		zap.Int("count", len(candidates)),
		zap.Any("candidate_ids", cardIDs(candidates)))

	var created []domain.CardConflict
	for _, cand := range candidates {
		verdict := s.classifier.Classify(ctx, focal.ViewpointSummary, cand.Card.ViewpointSummary, domain.CompareCardVsCard)
		if !verdict.HasConflict {
			continue
		}

		low, high := domain.CanonicalPair(focal.ID, cand.Card.ID)
		conflict := domain.CardConflict{
			OwnerID:         ownerID,
			CardIDLow:       low,
			CardIDHigh:      high,
			Type:            domain.CardConflictType(verdict.ConflictType),
			Topic:           verdict.Topic,
			SimilarityScore: float32(cand.Similarity),
			ConflictScore:   verdict.ConflictScore,
			Description:     verdict.Description,
			AIAnalysis:      verdict.Rationale,
		}

		inserted, err := s.conflicts.InsertIfAbsent(ctx, &conflict)
		if err != nil {
			s.logger.Warn("failed to persist card conflict",
				zap.String("card_id_low", low.String()),
				zap.String("card_id_high", high.String()),
				zap.Error(err))
			continue
		}
		if !inserted {
			// Another writer recorded this pair first.
			continue
		}
		created = append(created, conflict)
	}

	return created, nil
}

func (s *ConflictService) GetUnresolvedConflicts(ctx context.Context, ownerID uuid.UUID) ([]domain.CardConflict, error) {
	return s.conflicts.ListUnresolvedByOwner(ctx, ownerID)
}

func (s *ConflictService) GetConflictsByCard(ctx context.Context, cardID uuid.UUID, ownerID uuid.UUID) ([]domain.CardConflict, error) {
	return s.conflicts.ListByCard(ctx, cardID, ownerID)
}

// HasConflictBetween checks canonical-pair existence regardless of the
// order the ids are given in.
func (s *ConflictService) HasConflictBetween(ctx context.Context, idA, idB uuid.UUID, ownerID uuid.UUID) (bool, error) {
	low, high := domain.CanonicalPair(idA, idB)
	return s.conflicts.Exists(ctx, ownerID, low, high)
}

// AcknowledgeConflict marks a conflict resolved. Returns
// ErrConflictNotFound when the id does not exist or belongs to another
// owner.
func (s *ConflictService) AcknowledgeConflict(ctx context.Context, conflictID uuid.UUID, ownerID uuid.UUID) error {
	err := s.conflicts.Acknowledge(ctx, conflictID, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrConflictNotFound
	}
	return err
}

func (s *ConflictService) GetUnresolvedConflictCount(ctx context.Context, ownerID uuid.UUID) (int, error) {
	return s.conflicts.CountUnresolvedByOwner(ctx, ownerID)
}
