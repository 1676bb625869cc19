package domain

import (
	"context"

	"github.com/google/uuid"
)

type CardStore interface {
	Create(ctx context.Context, c *Card) error
	GetByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*Card, error)
	ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]Card, error)
}

// CardConflictStore persists card-versus-card edges. The storage layer
// enforces one row per (owner_id, card_id_low, card_id_high) as a hard
// constraint; InsertIfAbsent reports whether this call created the row.
type CardConflictStore interface {
	InsertIfAbsent(ctx context.Context, c *CardConflict) (bool, error)
	Exists(ctx context.Context, ownerID, cardIDLow, cardIDHigh uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) (*CardConflict, error)
	ListUnresolvedByOwner(ctx context.Context, ownerID uuid.UUID) ([]CardConflict, error)
	ListByCard(ctx context.Context, cardID uuid.UUID, ownerID uuid.UUID) ([]CardConflict, error)
	CountUnresolvedByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	Acknowledge(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
}

type ProfileStore interface {
	UpsertByTopic(ctx context.Context, p *UserCognitiveProfile) error
	ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]UserCognitiveProfile, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, includeInactive bool) ([]UserCognitiveProfile, error)
	DeactivateExcept(ctx context.Context, ownerID uuid.UUID, keepTopics []string) (int64, error)
}

// CognitiveConflictStore persists card-versus-profile edges, unique per
// (owner_id, card_id, profile_id) triple.
type CognitiveConflictStore interface {
	InsertIfAbsent(ctx context.Context, c *CognitiveConflict) (bool, error)
	Exists(ctx context.Context, ownerID, cardID, profileID uuid.UUID) (bool, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]CognitiveConflict, error)
	Acknowledge(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	Dismiss(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
}

// ComparisonKind tags which flavor of comparison the opinion collaborator
// is asked to judge.
type ComparisonKind string

const (
	CompareCardVsCard    ComparisonKind = "card-vs-card"
	CompareCardVsProfile ComparisonKind = "card-vs-profile"
)

// OpinionVerdict is the opinion-analysis collaborator's judgment on a
// pair of text spans.
type OpinionVerdict struct {
	HasConflict   bool    `json:"has_conflict"`
	ConflictType  string  `json:"conflict_type"`
	ConflictScore float32 `json:"conflict_score"`
	Topic         string  `json:"topic"`
	Description   string  `json:"description"`
	Rationale     string  `json:"rationale"`
}

// OpinionClient is the external opinion-analysis collaborator, usually
// backed by an LLM provider. Compare judges whether two viewpoints
// conflict; Synthesize condenses several statements into one belief.
type OpinionClient interface {
	Compare(ctx context.Context, textA, textB string, kind ComparisonKind) (*OpinionVerdict, error)
	Synthesize(ctx context.Context, topic string, statements []string) (string, error)
}
