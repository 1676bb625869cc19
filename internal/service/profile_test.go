package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soliloquy-hq/credo/internal/domain"
	"github.com/soliloquy-hq/credo/internal/opinion"
	"github.com/soliloquy-hq/credo/internal/store"
)

// mockProfileStore implements domain.ProfileStore keyed by (owner, topic).
type mockProfileStore struct {
	profiles map[uuid.UUID]*domain.UserCognitiveProfile
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[uuid.UUID]*domain.UserCognitiveProfile)}
}

func (m *mockProfileStore) UpsertByTopic(ctx context.Context, p *domain.UserCognitiveProfile) error {
	for _, existing := range m.profiles {
		if existing.OwnerID == p.OwnerID && existing.Topic == p.Topic {
			existing.BeliefStatement = p.BeliefStatement
			existing.ContributingCardIDs = p.ContributingCardIDs
			existing.IsActive = true
			existing.UpdatedAt = time.Now()
			*p = *existing
			return nil
		}
	}
	p.ID = uuid.New()
	p.IsActive = true
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	m.profiles[p.ID] = &stored
	return nil
}

func (m *mockProfileStore) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.UserCognitiveProfile, error) {
	var out []domain.UserCognitiveProfile
	for _, p := range m.profiles {
		if p.OwnerID == ownerID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProfileStore) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeInactive bool) ([]domain.UserCognitiveProfile, error) {
	if !includeInactive {
		return m.ListActiveByOwner(ctx, ownerID)
	}
	var out []domain.UserCognitiveProfile
	for _, p := range m.profiles {
		if p.OwnerID == ownerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProfileStore) DeactivateExcept(ctx context.Context, ownerID uuid.UUID, keepTopics []string) (int64, error) {
	keep := make(map[string]bool, len(keepTopics))
	for _, t := range keepTopics {
		keep[t] = true
	}
	var n int64
	for _, p := range m.profiles {
		if p.OwnerID == ownerID && p.IsActive && !keep[p.Topic] {
			p.IsActive = false
			n++
		}
	}
	return n, nil
}

// mockCognitiveConflictStore implements domain.CognitiveConflictStore
// with the (owner, card, profile) uniqueness the real table enforces.
type mockCognitiveConflictStore struct {
	conflicts map[uuid.UUID]*domain.CognitiveConflict
}

func newMockCognitiveConflictStore() *mockCognitiveConflictStore {
	return &mockCognitiveConflictStore{conflicts: make(map[uuid.UUID]*domain.CognitiveConflict)}
}

func (m *mockCognitiveConflictStore) InsertIfAbsent(ctx context.Context, c *domain.CognitiveConflict) (bool, error) {
	for _, existing := range m.conflicts {
		if existing.OwnerID == c.OwnerID && existing.CardID == c.CardID && existing.ProfileID == c.ProfileID {
			return false, nil
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	stored := *c
	m.conflicts[c.ID] = &stored
	return true, nil
}

func (m *mockCognitiveConflictStore) Exists(ctx context.Context, ownerID, cardID, profileID uuid.UUID) (bool, error) {
	for _, c := range m.conflicts {
		if c.OwnerID == ownerID && c.CardID == cardID && c.ProfileID == profileID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCognitiveConflictStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.CognitiveConflict, error) {
	var out []domain.CognitiveConflict
	for _, c := range m.conflicts {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCognitiveConflictStore) Acknowledge(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	c, ok := m.conflicts[id]
	if !ok || c.OwnerID != ownerID {
		return store.ErrNotFound
	}
	c.Acknowledged = true
	return nil
}

func (m *mockCognitiveConflictStore) Dismiss(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	c, ok := m.conflicts[id]
	if !ok || c.OwnerID != ownerID {
		return store.ErrNotFound
	}
	c.Dismissed = true
	return nil
}

type profileFixture struct {
	svc      *ProfileService
	cards    *mockCardStore
	profiles *mockProfileStore
	cog      *mockCognitiveConflictStore
	client   *opinion.MockClient
	ownerID  uuid.UUID
}

func setupProfileTest() *profileFixture {
	cards := newMockCardStore()
	conflicts := newMockCardConflictStore()
	profiles := newMockProfileStore()
	cog := newMockCognitiveConflictStore()
	client := opinion.NewMockClient()
	logger := testLogger()

	selector := NewCandidateSelector(cards, profiles, conflicts, cog, 0.2, 50, logger)
	classifier := NewClassifier(client, logger)
	svc := NewProfileService(cards, profiles, cog, selector, classifier, client, logger)

	return &profileFixture{
		svc:      svc,
		cards:    cards,
		profiles: profiles,
		cog:      cog,
		client:   client,
		ownerID:  uuid.New(),
	}
}

func (f *profileFixture) addCard(title, summary string) *domain.Card {
	c := &domain.Card{
		OwnerID:          f.ownerID,
		Title:            title,
		ViewpointSummary: summary,
	}
	_ = f.cards.Create(context.Background(), c)
	return c
}

func TestProfileService_RebuildProfiles_TransitiveClustering(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	// A relates to B, B relates to C, A alone would not relate to C;
	// all three must land in one cluster. D is unrelated to everything.
	a := f.addCard("A", "alpha beta gamma")
	b := f.addCard("B", "gamma delta epsilon")
	c := f.addCard("C", "epsilon zeta eta")
	d := f.addCard("D", "unrelated solitary musings")

	f.client.SynthesizeResponse = "Synthesized belief"

	profiles, err := f.svc.RebuildProfiles(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}

	byCount := make(map[int]*domain.UserCognitiveProfile)
	for i := range profiles {
		byCount[len(profiles[i].ContributingCardIDs)] = &profiles[i]
	}
	big, ok := byCount[3]
	if !ok {
		t.Fatalf("expected a 3-card cluster, got %v", byCount)
	}
	wantIDs := map[uuid.UUID]bool{a.ID: true, b.ID: true, c.ID: true}
	for _, id := range big.ContributingCardIDs {
		if !wantIDs[id] {
			t.Fatalf("unexpected card %s in cluster", id)
		}
	}
	small, ok := byCount[1]
	if !ok || small.ContributingCardIDs[0] != d.ID {
		t.Fatal("expected a singleton cluster for the unrelated card")
	}

	for _, p := range profiles {
		if p.Topic == "" {
			t.Fatal("expected non-empty topic")
		}
		if p.BeliefStatement != "Synthesized belief" {
			t.Fatalf("expected synthesized belief, got %q", p.BeliefStatement)
		}
		if !p.IsActive {
			t.Fatal("expected rebuilt profile active")
		}
	}
}

func TestProfileService_RebuildProfiles_DistinctTopics(t *testing.T) {
	f := setupProfileTest()

	f.addCard("A", "alpha beta gamma")
	f.addCard("B", "delta epsilon zeta")

	profiles, err := f.svc.RebuildProfiles(context.Background(), f.ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Topic == profiles[1].Topic {
		t.Fatalf("expected distinct topics, both %q", profiles[0].Topic)
	}
}

func TestProfileService_RebuildProfiles_DeactivatesStale(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	// Pre-existing profile on a topic no current card supports.
	stale := &domain.UserCognitiveProfile{
		OwnerID:         f.ownerID,
		Topic:           "obsolete-topic",
		BeliefStatement: "an old belief",
	}
	_ = f.profiles.UpsertByTopic(ctx, stale)

	f.addCard("A", "alpha beta gamma")

	if _, err := f.svc.RebuildProfiles(ctx, f.ownerID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	all, _ := f.profiles.ListByOwner(ctx, f.ownerID, true)
	var found *domain.UserCognitiveProfile
	for i := range all {
		if all[i].Topic == "obsolete-topic" {
			found = &all[i]
		}
	}
	if found == nil {
		t.Fatal("expected stale profile retained")
	}
	if found.IsActive {
		t.Fatal("expected stale profile deactivated")
	}
}

func TestProfileService_RebuildProfiles_NoCards(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	old := &domain.UserCognitiveProfile{OwnerID: f.ownerID, Topic: "anything", BeliefStatement: "belief"}
	_ = f.profiles.UpsertByTopic(ctx, old)

	profiles, err := f.svc.RebuildProfiles(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected no profiles, got %d", len(profiles))
	}

	active, _ := f.profiles.ListActiveByOwner(ctx, f.ownerID)
	if len(active) != 0 {
		t.Fatalf("expected all profiles deactivated, got %d active", len(active))
	}
}

func TestProfileService_RebuildProfiles_SynthesisFallback(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	f.addCard("A", "alpha beta gamma")
	f.addCard("B", "gamma delta epsilon")

	f.client.SynthesizeError = errors.New("provider down")

	profiles, err := f.svc.RebuildProfiles(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("expected synthesis failure to be non-fatal, got %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	// Medoid fallback picks one of the cluster's own summaries.
	got := profiles[0].BeliefStatement
	if got != "alpha beta gamma" && got != "gamma delta epsilon" {
		t.Fatalf("expected a member summary as fallback belief, got %q", got)
	}
}

func TestProfileService_DetectConflicts(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	card := f.addCard("challenger", "remote work increases productivity")

	profile := &domain.UserCognitiveProfile{
		OwnerID:         f.ownerID,
		Topic:           "remote work",
		BeliefStatement: "remote work harms team cohesion",
	}
	_ = f.profiles.UpsertByTopic(ctx, profile)

	f.client.CompareResponse = &domain.OpinionVerdict{
		HasConflict:   true,
		ConflictType:  string(domain.CognitiveConflictChallenging),
		ConflictScore: 0.9,
		Description:   "Card challenges the standing belief",
	}

	created, err := f.svc.DetectConflicts(ctx, f.ownerID, card.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(created))
	}

	conflict := created[0]
	if conflict.CardID != card.ID || conflict.ProfileID != profile.ID {
		t.Fatal("expected conflict to link card and profile")
	}
	if conflict.Type != domain.CognitiveConflictChallenging {
		t.Fatalf("expected challenging, got %s", conflict.Type)
	}
	// Snapshots survive later edits to either side.
	if conflict.UserBelief != "remote work harms team cohesion" {
		t.Fatalf("expected belief snapshot, got %q", conflict.UserBelief)
	}
	if conflict.CardViewpoint != "remote work increases productivity" {
		t.Fatalf("expected viewpoint snapshot, got %q", conflict.CardViewpoint)
	}

	// Re-detection skips the known triple without consulting the
	// collaborator again.
	f.client.CompareCalls = nil
	again, err := f.svc.DetectConflicts(ctx, f.ownerID, card.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no new conflicts, got %d", len(again))
	}
	if len(f.client.CompareCalls) != 0 {
		t.Fatalf("expected no classification calls, got %d", len(f.client.CompareCalls))
	}
}

func TestProfileService_DetectConflicts_InactiveProfileIgnored(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	card := f.addCard("challenger", "remote work increases productivity")

	profile := &domain.UserCognitiveProfile{
		OwnerID:         f.ownerID,
		Topic:           "remote work",
		BeliefStatement: "remote work harms team cohesion",
	}
	_ = f.profiles.UpsertByTopic(ctx, profile)
	_, _ = f.profiles.DeactivateExcept(ctx, f.ownerID, nil)

	f.client.CompareResponse = &domain.OpinionVerdict{HasConflict: true, ConflictType: string(domain.CognitiveConflictChallenging)}

	created, err := f.svc.DetectConflicts(ctx, f.ownerID, card.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(created) != 0 {
		t.Fatalf("expected inactive profiles excluded, got %d conflicts", len(created))
	}
}

func TestProfileService_AcknowledgeAndDismiss(t *testing.T) {
	f := setupProfileTest()
	ctx := context.Background()

	card := f.addCard("challenger", "remote work increases productivity")
	profile := &domain.UserCognitiveProfile{
		OwnerID:         f.ownerID,
		Topic:           "remote work",
		BeliefStatement: "remote work harms team cohesion",
	}
	_ = f.profiles.UpsertByTopic(ctx, profile)
	f.client.CompareResponse = &domain.OpinionVerdict{HasConflict: true, ConflictType: string(domain.CognitiveConflictContradictory)}

	created, err := f.svc.DetectConflicts(ctx, f.ownerID, card.ID)
	if err != nil || len(created) != 1 {
		t.Fatalf("setup failed: %v, %d conflicts", err, len(created))
	}
	id := created[0].ID

	if err := f.svc.AcknowledgeConflict(ctx, id, f.ownerID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := f.svc.AcknowledgeConflict(ctx, id, f.ownerID); err != nil {
		t.Fatalf("expected idempotent acknowledge, got %v", err)
	}
	if err := f.svc.DismissConflict(ctx, id, f.ownerID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	list, _ := f.svc.ListConflicts(ctx, f.ownerID)
	if len(list) != 1 {
		t.Fatalf("expected conflict retained, got %d", len(list))
	}
	if !list[0].Acknowledged || !list[0].Dismissed {
		t.Fatal("expected both flags set")
	}

	if err := f.svc.AcknowledgeConflict(ctx, uuid.New(), f.ownerID); !errors.Is(err, ErrConflictNotFound) {
		t.Fatalf("expected ErrConflictNotFound, got %v", err)
	}
	if err := f.svc.DismissConflict(ctx, id, uuid.New()); !errors.Is(err, ErrConflictNotFound) {
		t.Fatalf("expected ErrConflictNotFound for wrong owner, got %v", err)
	}
}
