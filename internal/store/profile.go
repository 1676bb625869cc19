package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soliloquy-hq/credo/internal/domain"
)

type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

// UpsertByTopic creates or refreshes the owner's profile for a topic.
// A refreshed profile is reactivated; its id is stable across rebuilds.
func (s *ProfileStore) UpsertByTopic(ctx context.Context, p *domain.UserCognitiveProfile) error {
	return s.db.QueryRow(ctx,
		`INSERT INTO user_cognitive_profiles (owner_id, topic, belief_statement, contributing_card_ids, is_active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 ON CONFLICT (owner_id, topic) DO UPDATE
		 SET belief_statement = EXCLUDED.belief_statement,
		     contributing_card_ids = EXCLUDED.contributing_card_ids,
		     is_active = TRUE,
		     updated_at = NOW()
		 RETURNING id, is_active, created_at, updated_at`,
		p.OwnerID, p.Topic, p.BeliefStatement, p.ContributingCardIDs,
	).Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

func (s *ProfileStore) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.UserCognitiveProfile, error) {
	return s.list(ctx,
		`SELECT id, owner_id, topic, belief_statement, contributing_card_ids, is_active, created_at, updated_at
		 FROM user_cognitive_profiles WHERE owner_id = $1 AND is_active
		 ORDER BY topic ASC`,
		ownerID,
	)
}

func (s *ProfileStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeInactive bool) ([]domain.UserCognitiveProfile, error) {
	if !includeInactive {
		return s.ListActiveByOwner(ctx, ownerID)
	}
	return s.list(ctx,
		`SELECT id, owner_id, topic, belief_statement, contributing_card_ids, is_active, created_at, updated_at
		 FROM user_cognitive_profiles WHERE owner_id = $1
		 ORDER BY is_active DESC, topic ASC`,
		ownerID,
	)
}

// DeactivateExcept deactivates every active profile of the owner whose
// topic is not in keepTopics. Deactivated profiles are retained for
// audit and excluded from new detection.
func (s *ProfileStore) DeactivateExcept(ctx context.Context, ownerID uuid.UUID, keepTopics []string) (int64, error) {
	if keepTopics == nil {
		keepTopics = []string{}
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE user_cognitive_profiles
		 SET is_active = FALSE, updated_at = NOW()
		 WHERE owner_id = $1 AND is_active AND NOT (topic = ANY($2))`,
		ownerID, keepTopics,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *ProfileStore) list(ctx context.Context, query string, args ...any) ([]domain.UserCognitiveProfile, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.UserCognitiveProfile
	for rows.Next() {
		var p domain.UserCognitiveProfile
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Topic, &p.BeliefStatement, &p.ContributingCardIDs, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
