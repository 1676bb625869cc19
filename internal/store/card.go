package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soliloquy-hq/credo/internal/domain"
)

type CardStore struct {
	db *pgxpool.Pool
}

func NewCardStore(db *pgxpool.Pool) *CardStore {
	return &CardStore{db: db}
}

func (s *CardStore) Create(ctx context.Context, c *domain.Card) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO cards (owner_id, title, viewpoint_summary, keywords, topic_hint, active)
		 VALUES ($1, $2, $3, $4, $5, TRUE)
		 RETURNING id, active, created_at, updated_at`,
		c.OwnerID, c.Title, c.ViewpointSummary, c.Keywords, c.TopicHint,
	).Scan(&c.ID, &c.Active, &c.CreatedAt, &c.UpdatedAt)
}

func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*domain.Card, error) {
	c := &domain.Card{}
	err := s.db.QueryRow(ctx,
		`SELECT id, owner_id, title, viewpoint_summary, keywords, topic_hint, active, created_at, updated_at
		 FROM cards WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Title, &c.ViewpointSummary, &c.Keywords, &c.TopicHint, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *CardStore) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, title, viewpoint_summary, keywords, topic_hint, active, created_at, updated_at
		 FROM cards WHERE owner_id = $1 AND active
		 ORDER BY created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var c domain.Card
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Title, &c.ViewpointSummary, &c.Keywords, &c.TopicHint, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
