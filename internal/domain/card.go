package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card is a user-owned, short belief-bearing text unit. The conflict
// engine reads cards; identity fields are owned by the card-management
// layer.
type Card struct {
	ID               uuid.UUID `json:"id"`
	OwnerID          uuid.UUID `json:"owner_id"`
	Title            string    `json:"title"`
	ViewpointSummary string    `json:"viewpoint_summary"`
	Keywords         string    `json:"keywords,omitempty"`
	TopicHint        string    `json:"topic_hint,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// KeywordList splits the comma-delimited keyword field into trimmed,
// lower-cased entries. Empty entries are dropped.
func (c *Card) KeywordList() []string {
	if c.Keywords == "" {
		return nil
	}
	raw := strings.FieldsFunc(c.Keywords, func(r rune) bool {
		return r == ',' || r == '，'
	})
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}
