// Package opinion wraps the external opinion-analysis providers behind
// domain.OpinionClient. The control flow of the conflict engine is fully
// testable against the mock provider.
package opinion

import (
	"fmt"
	"net/http"
	"time"

	"github.com/soliloquy-hq/credo/internal/domain"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// NewClient creates an opinion client for the named provider. The timeout
// bounds each provider call so one slow classification cannot stall a
// whole candidate loop.
func NewClient(provider, apiKey string, timeout time.Duration) (domain.OpinionClient, error) {
	switch provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI provider")
		}
		return NewOpenAIClient(apiKey, timeout), nil

	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey, timeout), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown opinion provider: %s (valid options: openai, anthropic, mock)", provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
