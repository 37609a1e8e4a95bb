// File path: internal/llm/llm.go
package llm

import (
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nicodishanthj/semmatch/internal/common"
	"github.com/nicodishanthj/semmatch/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

var (
	initGuard common.OnceGuard
	provider  Provider
)

// EnsureInitialized performs the process-wide provider setup exactly
// once, no matter how many goroutines hit it on first use. Selection is
// driven by OPENAI_API_KEY; without a key the deterministic local
// provider is used.
func EnsureInitialized() error {
	return initGuard.Do(func() error {
		provider = buildProvider()
		return nil
	})
}

// NewProvider returns the shared provider, initializing it on first use.
func NewProvider() Provider {
	_ = EnsureInitialized()
	return provider
}

func buildProvider() Provider {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		logger.Warn("llm: OPENAI_API_KEY not set; falling back to local provider")
		return providers.NewLocalProvider()
	}
	config := openai.DefaultConfig(apiKey)
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("llm: configuring OpenAI client with custom endpoint", "endpoint", endpoint)
		config.BaseURL = endpoint
	}
	client := openai.NewClientWithConfig(config)
	logger.Info("llm: OpenAI provider selected")
	return providers.NewOpenAIProvider(client)
}
