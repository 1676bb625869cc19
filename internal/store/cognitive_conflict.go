package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soliloquy-hq/credo/internal/domain"
)

type CognitiveConflictStore struct {
	db *pgxpool.Pool
}

func NewCognitiveConflictStore(db *pgxpool.Pool) *CognitiveConflictStore {
	return &CognitiveConflictStore{db: db}
}

// InsertIfAbsent persists the card-versus-profile edge unless the
// (owner, card, profile) triple already has one. A losing race on the
// uniqueness constraint is reported as (false, nil).
func (s *CognitiveConflictStore) InsertIfAbsent(ctx context.Context, c *domain.CognitiveConflict) (bool, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO cognitive_conflicts (owner_id, card_id, profile_id, topic, user_belief, card_viewpoint,
		                                  conflict_type, conflict_score, description, ai_analysis)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (owner_id, card_id, profile_id) DO NOTHING
		 RETURNING id, acknowledged, dismissed, created_at`,
		c.OwnerID, c.CardID, c.ProfileID, c.Topic, c.UserBelief, c.CardViewpoint,
		c.Type, c.ConflictScore, c.Description, c.AIAnalysis,
	).Scan(&c.ID, &c.Acknowledged, &c.Dismissed, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CognitiveConflictStore) Exists(ctx context.Context, ownerID, cardID, profileID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM cognitive_conflicts
		   WHERE owner_id = $1 AND card_id = $2 AND profile_id = $3
		 )`,
		ownerID, cardID, profileID,
	).Scan(&exists)
	return exists, err
}

func (s *CognitiveConflictStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CognitiveConflict, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, card_id, profile_id, topic, user_belief, card_viewpoint,
		        conflict_type, conflict_score, description, ai_analysis, acknowledged, dismissed, created_at
		 FROM cognitive_conflicts WHERE owner_id = $1
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conflicts []domain.CognitiveConflict
	for rows.Next() {
		var c domain.CognitiveConflict
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.CardID, &c.ProfileID, &c.Topic, &c.UserBelief, &c.CardViewpoint,
			&c.Type, &c.ConflictScore, &c.Description, &c.AIAnalysis, &c.Acknowledged, &c.Dismissed, &c.CreatedAt); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

// Acknowledge is idempotent: re-acknowledging an acknowledged conflict
// is a no-op, not an error.
func (s *CognitiveConflictStore) Acknowledge(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	return s.setFlag(ctx, "acknowledged", id, ownerID)
}

// Dismiss is idempotent, and independent of Acknowledge.
func (s *CognitiveConflictStore) Dismiss(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	return s.setFlag(ctx, "dismissed", id, ownerID)
}

func (s *CognitiveConflictStore) setFlag(ctx context.Context, column string, id uuid.UUID, ownerID uuid.UUID) error {
	// column is one of two trusted literals, never caller input.
	tag, err := s.db.Exec(ctx,
		`UPDATE cognitive_conflicts SET `+column+` = TRUE WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
