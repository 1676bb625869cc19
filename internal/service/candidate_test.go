package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/soliloquy-hq/credo/internal/domain"
)

func newTestSelector(cards *mockCardStore, conflicts *mockCardConflictStore, profiles *mockProfileStore, cog *mockCognitiveConflictStore, threshold float64, max int) *CandidateSelector {
	return NewCandidateSelector(cards, profiles, conflicts, cog, threshold, max, testLogger())
}

func TestCandidateSelector_PeerCards_GateAndSelf(t *testing.T) {
	cards := newMockCardStore()
	selector := newTestSelector(cards, newMockCardConflictStore(), newMockProfileStore(), newMockCognitiveConflictStore(), 0.2, 50)
	ownerID := uuid.New()
	ctx := context.Background()

	focal := &domain.Card{OwnerID: ownerID, ViewpointSummary: "remote work increases productivity"}
	related := &domain.Card{OwnerID: ownerID, ViewpointSummary: "remote work harms team cohesion"}
	unrelated := &domain.Card{OwnerID: ownerID, ViewpointSummary: "量子计算机的原理"}
	for _, c := range []*domain.Card{focal, related, unrelated} {
		_ = cards.Create(ctx, c)
	}

	got, err := selector.PeerCards(ctx, focal, false)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, related.ID, got[0].Card.ID)
	assert.Greater(t, got[0].Similarity, 0.2)
}

func TestCandidateSelector_PeerCards_KeywordOverlapBreaksTies(t *testing.T) {
	cards := newMockCardStore()
	selector := newTestSelector(cards, newMockCardConflictStore(), newMockProfileStore(), newMockCognitiveConflictStore(), 0.2, 50)
	ownerID := uuid.New()
	ctx := context.Background()

	focal := &domain.Card{OwnerID: ownerID, ViewpointSummary: "alpha beta", Keywords: "k1,k2"}
	// Equal summary similarity to the focal card; only keywords differ.
	tagged := &domain.Card{OwnerID: ownerID, ViewpointSummary: "alpha eta", Keywords: "k1,k2"}
	untagged := &domain.Card{OwnerID: ownerID, ViewpointSummary: "alpha zeta", Keywords: "x,y"}
	for _, c := range []*domain.Card{focal, untagged, tagged} {
		_ = cards.Create(ctx, c)
	}

	got, err := selector.PeerCards(ctx, focal, false)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, tagged.ID, got[0].Card.ID, "keyword-tagged match should rank first")
}

func TestCandidateSelector_PeerCards_Cap(t *testing.T) {
	cards := newMockCardStore()
	selector := newTestSelector(cards, newMockCardConflictStore(), newMockProfileStore(), newMockCognitiveConflictStore(), 0.2, 2)
	ownerID := uuid.New()
	ctx := context.Background()

	focal := &domain.Card{OwnerID: ownerID, ViewpointSummary: "remote work increases productivity"}
	_ = cards.Create(ctx, focal)
	for i := 0; i < 5; i++ {
		c := &domain.Card{OwnerID: ownerID, ViewpointSummary: "remote work harms team cohesion"}
		_ = cards.Create(ctx, c)
	}

	got, err := selector.PeerCards(ctx, focal, false)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCandidateSelector_Defaults(t *testing.T) {
	selector := newTestSelector(newMockCardStore(), newMockCardConflictStore(), newMockProfileStore(), newMockCognitiveConflictStore(), 0, 0)
	assert.Equal(t, DefaultGateThreshold, selector.GateThreshold())
	assert.Equal(t, DefaultMaxCandidates, selector.maxCandidates)
}

func TestCandidateSelector_ActiveProfiles_Gate(t *testing.T) {
	cards := newMockCardStore()
	profiles := newMockProfileStore()
	selector := newTestSelector(cards, newMockCardConflictStore(), profiles, newMockCognitiveConflictStore(), 0.2, 50)
	ownerID := uuid.New()
	ctx := context.Background()

	card := &domain.Card{OwnerID: ownerID, ViewpointSummary: "remote work increases productivity"}
	_ = cards.Create(ctx, card)

	related := &domain.UserCognitiveProfile{OwnerID: ownerID, Topic: "remote work", BeliefStatement: "remote work harms team cohesion"}
	offTopic := &domain.UserCognitiveProfile{OwnerID: ownerID, Topic: "diet", BeliefStatement: "减糖饮食有益健康"}
	_ = profiles.UpsertByTopic(ctx, related)
	_ = profiles.UpsertByTopic(ctx, offTopic)

	got, err := selector.ActiveProfiles(ctx, card, false)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, related.ID, got[0].Profile.ID)
}
