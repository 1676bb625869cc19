package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/soliloquy-hq/credo/internal/domain"
	"github.com/soliloquy-hq/credo/internal/store"
	"github.com/soliloquy-hq/credo/internal/textsim"
)

// synthesisConcurrency bounds parallel belief-synthesis calls during a
// rebuild; each call is network-bound.
const synthesisConcurrency = 4

// topicKeywordDepth is how many ranked keywords a cluster offers before
// falling back to a numbered topic label.
const topicKeywordDepth = 5

// ProfileService maintains per-topic cognitive profiles and runs
// card-versus-profile conflict detection against them.
type ProfileService struct {
	cards        domain.CardStore
	profiles     domain.ProfileStore
	cogConflicts domain.CognitiveConflictStore
	selector     *CandidateSelector
	classifier   *Classifier
	opinion      domain.OpinionClient
	logger       *zap.Logger
}

func NewProfileService(
	cards domain.CardStore,
	profiles domain.ProfileStore,
	cogConflicts domain.CognitiveConflictStore,
	selector *CandidateSelector,
	classifier *Classifier,
	opinion domain.OpinionClient,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		cards:        cards,
		profiles:     profiles,
		cogConflicts: cogConflicts,
		selector:     selector,
		classifier:   classifier,
		opinion:      opinion,
		logger:       logger,
	}
}

// RebuildProfiles clusters the owner's active cards by topic relatedness
// and synthesizes one profile per cluster. Relatedness is transitively
// closed: cards A–B and B–C related puts A, B, C in one cluster even if
// A–C alone would not pass the gate. Profiles for topics no longer
// represented are deactivated, not deleted.
func (s *ProfileService) RebuildProfiles(ctx context.Context, ownerID uuid.UUID) ([]domain.UserCognitiveProfile, error) {
	cards, err := s.cards.ListActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		if _, err := s.profiles.DeactivateExcept(ctx, ownerID, nil); err != nil {
			return nil, err
		}
		return nil, nil
	}

	clusters := s.clusterByTopic(cards)
	topics := s.assignTopics(clusters)

	// Synthesize beliefs concurrently; each cluster independently.
	beliefs := make([]string, len(clusters))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(synthesisConcurrency)
	for i := range clusters {
		g.Go(func() error {
			belief := s.synthesizeBelief(gctx, topics[i], clusters[i])
			mu.Lock()
			beliefs[i] = belief
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rebuilt := make([]domain.UserCognitiveProfile, 0, len(clusters))
	for i, cluster := range clusters {
		ids := make([]uuid.UUID, len(cluster))
		for j, c := range cluster {
			ids[j] = c.ID
		}
		profile := domain.UserCognitiveProfile{
			OwnerID:             ownerID,
			Topic:               topics[i],
			BeliefStatement:     beliefs[i],
			ContributingCardIDs: ids,
		}
		if err := s.profiles.UpsertByTopic(ctx, &profile); err != nil {
			return nil, fmt.Errorf("upsert profile for topic %q: %w", topics[i], err)
		}
		rebuilt = append(rebuilt, profile)
	}

	deactivated, err := s.profiles.DeactivateExcept(ctx, ownerID, topics)
	if err != nil {
		return nil, err
	}
	if deactivated > 0 {
		s.logger.Info("deactivated superseded profiles",
			zap.String("owner_id", ownerID.String()),
			zap.Int64("count", deactivated))
	}
	return rebuilt, nil
}

// DetectConflicts compares a card against the owner's active profiles
// that pass the topic gate, persisting new non-duplicate edges with
// belief and viewpoint snapshots. Only edges created by this call are
// returned.
func (s *ProfileService) DetectConflicts(ctx context.Context, ownerID uuid.UUID, cardID uuid.UUID) ([]domain.CognitiveConflict, error) {
	card, err := s.cards.GetByID(ctx, cardID, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	candidates, err := s.selector.ActiveProfiles(ctx, card, true)
	if err != nil {
		return nil, err
	}

	var created []domain.CognitiveConflict
	for _, cand := range candidates {
		verdict := s.classifier.Classify(ctx, cand.Profile.BeliefStatement, card.ViewpointSummary, domain.CompareCardVsProfile)
		if !verdict.HasConflict {
			continue
		}

		conflict := domain.CognitiveConflict{
			OwnerID:       ownerID,
			CardID:        card.ID,
			ProfileID:     cand.Profile.ID,
			Topic:         cand.Profile.Topic,
			UserBelief:    cand.Profile.BeliefStatement,
			CardViewpoint: card.ViewpointSummary,
			Type:          domain.CognitiveConflictType(verdict.ConflictType),
			ConflictScore: verdict.ConflictScore,
			Description:   verdict.Description,
			AIAnalysis:    verdict.Rationale,
		}

		inserted, err := s.cogConflicts.InsertIfAbsent(ctx, &conflict)
		if err != nil {
			s.logger.Warn("failed to persist cognitive conflict",
				zap.String("card_id", card.ID.String()),
				zap.String("profile_id", cand.Profile.ID.String()),
				zap.Error(err))
			continue
		}
		if !inserted {
			continue
		}
		created = append(created, conflict)
	}
	return created, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, ownerID uuid.UUID, includeInactive bool) ([]domain.UserCognitiveProfile, error) {
	return s.profiles.ListByOwner(ctx, ownerID, includeInactive)
}

func (s *ProfileService) ListConflicts(ctx context.Context, ownerID uuid.UUID) ([]domain.CognitiveConflict, error) {
	return s.cogConflicts.ListByOwner(ctx, ownerID)
}

// AcknowledgeConflict is idempotent. Returns ErrConflictNotFound when
// the id does not exist or belongs to another owner.
func (s *ProfileService) AcknowledgeConflict(ctx context.Context, conflictID uuid.UUID, ownerID uuid.UUID) error {
	err := s.cogConflicts.Acknowledge(ctx, conflictID, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrConflictNotFound
	}
	return err
}

// DismissConflict is idempotent and independent of acknowledgement.
func (s *ProfileService) DismissConflict(ctx context.Context, conflictID uuid.UUID, ownerID uuid.UUID) error {
	err := s.cogConflicts.Dismiss(ctx, conflictID, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrConflictNotFound
	}
	return err
}

// clusterByTopic groups cards with a disjoint-set over card ids, keeping
// rebuild cost predictable on large corpora. Pairwise relatedness uses
// the same gate threshold as candidate selection.
func (s *ProfileService) clusterByTopic(cards []domain.Card) [][]domain.Card {
	dsu := newDisjointSet()
	for _, c := range cards {
		dsu.add(c.ID)
	}
	threshold := s.selector.GateThreshold()
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			if textsim.TopicRelated(cards[i].ViewpointSummary, cards[j].ViewpointSummary, threshold) {
				dsu.union(cards[i].ID, cards[j].ID)
			}
		}
	}

	byRoot := make(map[uuid.UUID][]domain.Card)
	var roots []uuid.UUID
	for _, c := range cards {
		root := dsu.find(c.ID)
		if _, seen := byRoot[root]; !seen {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], c)
	}

	clusters := make([][]domain.Card, 0, len(roots))
	for _, root := range roots {
		clusters = append(clusters, byRoot[root])
	}
	return clusters
}

// assignTopics derives a deterministic topic label per cluster from the
// top term-frequency keyword of the cluster's combined summaries. Label
// collisions fall through the cluster's ranked keywords, then to a
// numbered suffix.
func (s *ProfileService) assignTopics(clusters [][]domain.Card) []string {
	used := make(map[string]bool, len(clusters))
	topics := make([]string, len(clusters))
	for i, cluster := range clusters {
		var sb strings.Builder
		for _, c := range cluster {
			sb.WriteString(c.ViewpointSummary)
			sb.WriteString(" ")
			sb.WriteString(strings.Join(c.KeywordList(), " "))
			sb.WriteString(" ")
		}

		topic := ""
		for _, kw := range textsim.ExtractKeywords(sb.String(), topicKeywordDepth) {
			if !used[kw] {
				topic = kw
				break
			}
		}
		if topic == "" {
			topic = fmt.Sprintf("topic-%d", i+1)
		}
		used[topic] = true
		topics[i] = topic
	}
	return topics
}

// synthesizeBelief asks the opinion collaborator for a single belief
// statement. On failure the cluster's medoid summary (highest mean
// similarity to the rest) stands in, so a collaborator outage never
// fails a rebuild.
func (s *ProfileService) synthesizeBelief(ctx context.Context, topic string, cluster []domain.Card) string {
	statements := make([]string, len(cluster))
	for i, c := range cluster {
		statements[i] = c.ViewpointSummary
	}

	if s.opinion != nil {
		belief, err := s.opinion.Synthesize(ctx, topic, statements)
		if err == nil && strings.TrimSpace(belief) != "" {
			return strings.TrimSpace(belief)
		}
		if err != nil {
			s.logger.Warn("belief synthesis failed, using medoid summary",
				zap.String("topic", topic),
				zap.Error(err))
		}
	}
	return medoid(statements)
}

// medoid picks the statement most similar on average to the others.
func medoid(statements []string) string {
	if len(statements) == 1 {
		return statements[0]
	}
	m := textsim.Matrix(statements)
	best, bestScore := 0, -1.0
	for i, row := range m {
		var sum float64
		for j, v := range row {
			if i != j {
				sum += v
			}
		}
		if sum > bestScore {
			best, bestScore = i, sum
		}
	}
	return statements[best]
}

// disjointSet is a union-find keyed by card id with path compression and
// union by rank.
type disjointSet struct {
	parent map[uuid.UUID]uuid.UUID
	rank   map[uuid.UUID]int
}

func newDisjointSet() *disjointSet {
	return &disjointSet{
		parent: make(map[uuid.UUID]uuid.UUID),
		rank:   make(map[uuid.UUID]int),
	}
}

func (d *disjointSet) add(id uuid.UUID) {
	if _, ok := d.parent[id]; !ok {
		d.parent[id] = id
	}
}

func (d *disjointSet) find(id uuid.UUID) uuid.UUID {
	root := id
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[id] != root {
		d.parent[id], id = root, d.parent[id]
	}
	return root
}

func (d *disjointSet) union(a, b uuid.UUID) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.rank[ra] < d.rank[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	if d.rank[ra] == d.rank[rb] {
		d.rank[ra]++
	}
}
