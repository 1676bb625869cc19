package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/soliloquy-hq/credo/internal/domain"
	"github.com/soliloquy-hq/credo/internal/textsim"
)

const (
	// DefaultGateThreshold is the topic-relatedness gate applied before
	// any classification call. Tuned empirically; override via config.
	DefaultGateThreshold = 0.2
	// DefaultMaxCandidates caps the comparison set per detection, since
	// each admitted candidate costs one network-bound classification.
	DefaultMaxCandidates = 50

	// Ranking weights for ordering admitted candidates under the cap.
	// Admission itself is decided by the cosine gate alone.
	cosineRankWeight  = 0.7
	jaccardRankWeight = 0.3
)

// CardCandidate is a peer card admitted by the topic gate, with the gate
// score that admitted it.
type CardCandidate struct {
	Card       domain.Card
	Similarity float64
}

// ProfileCandidate is an active profile admitted by the topic gate.
type ProfileCandidate struct {
	Profile    domain.UserCognitiveProfile
	Similarity float64
}

// CandidateSelector enumerates comparison candidates for a focal card
// and prunes them with the cheap lexical gate so expensive classification
// runs only on roughly-topical matches.
type CandidateSelector struct {
	cards         domain.CardStore
	profiles      domain.ProfileStore
	conflicts     domain.CardConflictStore
	cogConflicts  domain.CognitiveConflictStore
	gateThreshold float64
	maxCandidates int
	logger        *zap.Logger
}

func NewCandidateSelector(
	cards domain.CardStore,
	profiles domain.ProfileStore,
	conflicts domain.CardConflictStore,
	cogConflicts domain.CognitiveConflictStore,
	gateThreshold float64,
	maxCandidates int,
	logger *zap.Logger,
) *CandidateSelector {
	if gateThreshold <= 0 {
		gateThreshold = DefaultGateThreshold
	}
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	return &CandidateSelector{
		cards:         cards,
		profiles:      profiles,
		conflicts:     conflicts,
		cogConflicts:  cogConflicts,
		gateThreshold: gateThreshold,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

// GateThreshold exposes the configured gate for callers that cluster by
// the same relatedness predicate.
func (s *CandidateSelector) GateThreshold() float64 {
	return s.gateThreshold
}

// PeerCards returns the focal card's topically related peers, most
// related first, capped at the configured maximum. With skipKnown set,
// pairs that already have a persisted conflict are filtered out before
// the gate, so known pairs never reach classification.
func (s *CandidateSelector) PeerCards(ctx context.Context, focal *domain.Card, skipKnown bool) ([]CardCandidate, error) {
	peers, err := s.cards.ListActiveByOwner(ctx, focal.OwnerID)
	if err != nil {
		return nil, err
	}

	var candidates []CardCandidate
	for _, peer := range peers {
		if peer.ID == focal.ID {
			continue
		}
		if skipKnown {
			low, high := domain.CanonicalPair(focal.ID, peer.ID)
			known, err := s.conflicts.Exists(ctx, focal.OwnerID, low, high)
			if err != nil {
				return nil, err
			}
			if known {
				continue
			}
		}
		sim := textsim.Cosine(focal.ViewpointSummary, peer.ViewpointSummary)
		if sim < s.gateThreshold {
			continue
		}
		candidates = append(candidates, CardCandidate{Card: peer, Similarity: sim})
	}

	s.rankCards(focal, candidates)
	if len(candidates) > s.maxCandidates {
		s.logger.Debug("candidate set capped",
			zap.String("card_id", focal.ID.String()),
			zap.Int("admitted", len(candidates)),
			zap.Int("cap", s.maxCandidates))
		candidates = candidates[:s.maxCandidates]
	}
	return candidates, nil
}

// ActiveProfiles returns the owner's active profiles whose belief passes
// the topic gate against the card. With skipKnown set, profiles already
// linked to the card by a persisted conflict are filtered out.
func (s *CandidateSelector) ActiveProfiles(ctx context.Context, focal *domain.Card, skipKnown bool) ([]ProfileCandidate, error) {
	profiles, err := s.profiles.ListActiveByOwner(ctx, focal.OwnerID)
	if err != nil {
		return nil, err
	}

	var candidates []ProfileCandidate
	for _, p := range profiles {
		if skipKnown {
			known, err := s.cogConflicts.Exists(ctx, focal.OwnerID, focal.ID, p.ID)
			if err != nil {
				return nil, err
			}
			if known {
				continue
			}
		}
		sim := textsim.Cosine(focal.ViewpointSummary, p.BeliefStatement)
		if sim < s.gateThreshold {
			continue
		}
		candidates = append(candidates, ProfileCandidate{Profile: p, Similarity: sim})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Similarity > candidates[j].Similarity
	})
	if len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}
	return candidates, nil
}

// rankCards orders admitted peers by a blend of summary cosine and
// keyword Jaccard, so keyword-tagged matches win ties for the cap.
func (s *CandidateSelector) rankCards(focal *domain.Card, candidates []CardCandidate) {
	rank := func(c CardCandidate) float64 {
		return cosineRankWeight*c.Similarity +
			jaccardRankWeight*textsim.Jaccard(focal.Keywords, c.Card.Keywords)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return rank(candidates[i]) > rank(candidates[j])
	})
}

// cardIDs is a debugging helper for trace logs.
func cardIDs(candidates []CardCandidate) []uuid.UUID {
	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Card.ID
	}
	return ids
}
