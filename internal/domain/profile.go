package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserCognitiveProfile is an aggregated belief, one per topic per owner.
// Superseded profiles are deactivated, never deleted, so past conflict
// records keep a referent.
type UserCognitiveProfile struct {
	ID                  uuid.UUID   `json:"id"`
	OwnerID             uuid.UUID   `json:"owner_id"`
	Topic               string      `json:"topic"`
	BeliefStatement     string      `json:"belief_statement"`
	ContributingCardIDs []uuid.UUID `json:"contributing_card_ids"`
	IsActive            bool        `json:"is_active"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}
