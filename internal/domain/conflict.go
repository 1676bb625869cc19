package domain

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// CardConflictType classifies a card-versus-card conflict edge.
type CardConflictType string

const (
	CardConflictContradictory        CardConflictType = "contradictory"
	CardConflictComplementary        CardConflictType = "complementary"
	CardConflictDifferentPerspective CardConflictType = "different_perspective"
	CardConflictTopicOverlap         CardConflictType = "topic_overlap"
)

func ValidCardConflictType(t string) bool {
	switch CardConflictType(t) {
	case CardConflictContradictory, CardConflictComplementary,
		CardConflictDifferentPerspective, CardConflictTopicOverlap:
		return true
	}
	return false
}

// CardConflict is an edge between two cards of the same owner. The pair
// is stored canonically ordered (CardIDLow < CardIDHigh) so an unordered
// pair maps to exactly one row regardless of detection direction.
type CardConflict struct {
	ID              uuid.UUID        `json:"id"`
	OwnerID         uuid.UUID        `json:"owner_id"`
	CardIDLow       uuid.UUID        `json:"card_id_low"`
	CardIDHigh      uuid.UUID        `json:"card_id_high"`
	Type            CardConflictType `json:"conflict_type"`
	Topic           string           `json:"topic,omitempty"`
	SimilarityScore float32          `json:"similarity_score"`
	ConflictScore   float32          `json:"conflict_score"`
	Description     string           `json:"description,omitempty"`
	AIAnalysis      string           `json:"ai_analysis,omitempty"`
	Acknowledged    bool             `json:"acknowledged"`
	CreatedAt       time.Time        `json:"created_at"`
	AcknowledgedAt  *time.Time       `json:"acknowledged_at,omitempty"`
}

// CanonicalPair orders an unordered card-id pair as (low, high).
func CanonicalPair(a, b uuid.UUID) (low, high uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}

// CognitiveConflictType classifies a card-versus-profile conflict edge.
type CognitiveConflictType string

const (
	CognitiveConflictContradictory        CognitiveConflictType = "contradictory"
	CognitiveConflictChallenging          CognitiveConflictType = "challenging"
	CognitiveConflictDifferentPerspective CognitiveConflictType = "different_perspective"
	CognitiveConflictExtending            CognitiveConflictType = "extending"
)

func ValidCognitiveConflictType(t string) bool {
	switch CognitiveConflictType(t) {
	case CognitiveConflictContradictory, CognitiveConflictChallenging,
		CognitiveConflictDifferentPerspective, CognitiveConflictExtending:
		return true
	}
	return false
}

// CognitiveConflict is an edge between a card and a cognitive profile.
// UserBelief and CardViewpoint are snapshots taken at detection time so
// the record stays explainable after either side changes.
type CognitiveConflict struct {
	ID            uuid.UUID             `json:"id"`
	OwnerID       uuid.UUID             `json:"owner_id"`
	CardID        uuid.UUID             `json:"card_id"`
	ProfileID     uuid.UUID             `json:"profile_id"`
	Topic         string                `json:"topic,omitempty"`
	UserBelief    string                `json:"user_belief"`
	CardViewpoint string                `json:"card_viewpoint"`
	Type          CognitiveConflictType `json:"conflict_type"`
	ConflictScore float32               `json:"conflict_score"`
	Description   string                `json:"description,omitempty"`
	AIAnalysis    string                `json:"ai_analysis,omitempty"`
	Acknowledged  bool                  `json:"acknowledged"`
	Dismissed     bool                  `json:"dismissed"`
	CreatedAt     time.Time             `json:"created_at"`
}
