package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soliloquy-hq/credo/internal/domain"
)

type CardConflictStore struct {
	db *pgxpool.Pool
}

func NewCardConflictStore(db *pgxpool.Pool) *CardConflictStore {
	return &CardConflictStore{db: db}
}

const cardConflictColumns = `id, owner_id, card_id_low, card_id_high, conflict_type, topic,
	 similarity_score, conflict_score, description, ai_analysis, acknowledged, created_at, acknowledged_at`

// InsertIfAbsent persists the edge unless a row for the canonical pair
// already exists. A losing race on the uniqueness constraint is reported
// as (false, nil): someone else already recorded this pair.
func (s *CardConflictStore) InsertIfAbsent(ctx context.Context, c *domain.CardConflict) (bool, error) {
	err := s.db.QueryRow(ctx,
		`INSERT INTO card_conflicts (owner_id, card_id_low, card_id_high, conflict_type, topic,
		                             similarity_score, conflict_score, description, ai_analysis)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (owner_id, card_id_low, card_id_high) DO NOTHING
		 RETURNING id, acknowledged, created_at`,
		c.OwnerID, c.CardIDLow, c.CardIDHigh, c.Type, c.Topic,
		c.SimilarityScore, c.ConflictScore, c.Description, c.AIAnalysis,
	).Scan(&c.ID, &c.Acknowledged, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *CardConflictStore) Exists(ctx context.Context, ownerID, cardIDLow, cardIDHigh uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM card_conflicts
		   WHERE owner_id = $1 AND card_id_low = $2 AND card_id_high = $3
		 )`,
		ownerID, cardIDLow, cardIDHigh,
	).Scan(&exists)
	return exists, err
}

func (s *CardConflictStore) GetByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*domain.CardConflict, error) {
	c := &domain.CardConflict{}
	err := s.db.QueryRow(ctx,
		`SELECT `+cardConflictColumns+`
		 FROM card_conflicts WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.CardIDLow, &c.CardIDHigh, &c.Type, &c.Topic,
		&c.SimilarityScore, &c.ConflictScore, &c.Description, &c.AIAnalysis, &c.Acknowledged, &c.CreatedAt, &c.AcknowledgedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CardConflictStore) ListUnresolvedByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CardConflict, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+cardConflictColumns+`
		 FROM card_conflicts WHERE owner_id = $1 AND NOT acknowledged
		 ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCardConflicts(rows)
}

func (s *CardConflictStore) ListByCard(ctx context.Context, cardID uuid.UUID, ownerID uuid.UUID) ([]domain.CardConflict, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+cardConflictColumns+`
		 FROM card_conflicts
		 WHERE owner_id = $1 AND (card_id_low = $2 OR card_id_high = $2)
		 ORDER BY created_at DESC`,
		ownerID, cardID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCardConflicts(rows)
}

func (s *CardConflictStore) CountUnresolvedByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM card_conflicts WHERE owner_id = $1 AND NOT acknowledged`,
		ownerID,
	).Scan(&count)
	return count, err
}

// Acknowledge marks the conflict resolved. Re-acknowledging keeps the
// original acknowledged_at.
func (s *CardConflictStore) Acknowledge(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE card_conflicts
		 SET acknowledged = TRUE, acknowledged_at = COALESCE(acknowledged_at, NOW())
		 WHERE id = $1 AND owner_id = $2`,
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

func scanCardConflicts(rows pgx.Rows) ([]domain.CardConflict, error) {
	var conflicts []domain.CardConflict
	for rows.Next() {
		var c domain.CardConflict
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.CardIDLow, &c.CardIDHigh, &c.Type, &c.Topic,
			&c.SimilarityScore, &c.ConflictScore, &c.Description, &c.AIAnalysis, &c.Acknowledged, &c.CreatedAt, &c.AcknowledgedAt); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}
