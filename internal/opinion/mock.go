package opinion

import (
	"context"

	"github.com/soliloquy-hq/credo/internal/domain"
)

// MockClient is a configurable opinion client for testing. Set the
// response fields to control what each method returns.
type MockClient struct {
	CompareResponse    *domain.OpinionVerdict
	CompareError       error
	SynthesizeResponse string
	SynthesizeError    error

	// CompareFunc, if set, overrides CompareResponse per call.
	CompareFunc func(textA, textB string, kind domain.ComparisonKind) (*domain.OpinionVerdict, error)

	// Call tracking for assertions
	CompareCalls []CompareCall
	SynthCalls   []SynthCall
}

type CompareCall struct {
	TextA, TextB string
	Kind         domain.ComparisonKind
}

type SynthCall struct {
	Topic      string
	Statements []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		CompareResponse: &domain.OpinionVerdict{
			HasConflict:  false,
			ConflictType: string(domain.CardConflictTopicOverlap),
		},
		SynthesizeResponse: "Mock belief statement",
	}
}

func (c *MockClient) Compare(ctx context.Context, textA, textB string, kind domain.ComparisonKind) (*domain.OpinionVerdict, error) {
	c.CompareCalls = append(c.CompareCalls, CompareCall{TextA: textA, TextB: textB, Kind: kind})
	if c.CompareFunc != nil {
		return c.CompareFunc(textA, textB, kind)
	}
	if c.CompareError != nil {
		return nil, c.CompareError
	}
	return c.CompareResponse, nil
}

func (c *MockClient) Synthesize(ctx context.Context, topic string, statements []string) (string, error) {
	c.SynthCalls = append(c.SynthCalls, SynthCall{Topic: topic, Statements: statements})
	if c.SynthesizeError != nil {
		return "", c.SynthesizeError
	}
	return c.SynthesizeResponse, nil
}

// Reset clears recorded calls and restores default responses.
func (c *MockClient) Reset() {
	c.CompareResponse = &domain.OpinionVerdict{
		HasConflict:  false,
		ConflictType: string(domain.CardConflictTopicOverlap),
	}
	c.CompareError = nil
	c.CompareFunc = nil
	c.SynthesizeResponse = "Mock belief statement"
	c.SynthesizeError = nil
	c.CompareCalls = nil
	c.SynthCalls = nil
}
