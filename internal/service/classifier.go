package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/soliloquy-hq/credo/internal/domain"
)

// Classifier wraps the opinion-analysis collaborator and normalizes its
// verdicts into the internal conflict taxonomy. Collaborator failures
// are fail-open: a missed conflict is preferable to blocking the card
// flow or fabricating data, so errors and timeouts become "no conflict"
// with a logged warning. No inline retry; retries belong to the
// collaborator's own policy.
type Classifier struct {
	client domain.OpinionClient
	logger *zap.Logger
}

func NewClassifier(client domain.OpinionClient, logger *zap.Logger) *Classifier {
	return &Classifier{client: client, logger: logger}
}

// noConflict is the fail-open verdict.
var noConflict = &domain.OpinionVerdict{HasConflict: false}

// Classify judges textA against textB. The returned verdict is always
// non-nil with ConflictScore clamped to [0,1] and ConflictType valid for
// the comparison kind.
func (c *Classifier) Classify(ctx context.Context, textA, textB string, kind domain.ComparisonKind) *domain.OpinionVerdict {
	if c.client == nil {
		return noConflict
	}

	verdict, err := c.client.Compare(ctx, textA, textB, kind)
	if err != nil {
		c.logger.Warn("opinion analysis failed, treating pair as no conflict",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return noConflict
	}
	if verdict == nil {
		return noConflict
	}

	normalized := *verdict
	if normalized.ConflictScore < 0 {
		normalized.ConflictScore = 0
	}
	if normalized.ConflictScore > 1 {
		normalized.ConflictScore = 1
	}
	normalized.ConflictType = c.normalizeType(normalized.ConflictType, kind)
	return &normalized
}

func (c *Classifier) normalizeType(t string, kind domain.ComparisonKind) string {
	if kind == domain.CompareCardVsProfile {
		if domain.ValidCognitiveConflictType(t) {
			return t
		}
		return string(domain.CognitiveConflictDifferentPerspective)
	}
	if domain.ValidCardConflictType(t) {
		return t
	}
	return string(domain.CardConflictTopicOverlap)
}
