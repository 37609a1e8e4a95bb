// File path: internal/llm/providers/provider.go
package providers

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

// Provider is the contract the engine needs from a model backend: batch
// embeddings for ingestion and single-shot chat for disambiguation.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Embed(ctx context.Context, input []string) ([][]float32, error)
	Name() string
}

const localEmbedDim = 64

// LocalProvider is a deterministic offline fallback. Embeddings hash
// character trigrams into a fixed-width vector, so near-identical texts
// land close together; chat replies echo the last message. Useful for
// tests and for running without credentials.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	last := messages[len(messages)-1].Content
	return "[local-stub] " + strings.TrimSpace(last), nil
}

func (l *LocalProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	vectors := make([][]float32, len(input))
	for i, text := range input {
		vectors[i] = hashEmbed(text)
	}
	return vectors, nil
}

func (l *LocalProvider) Name() string {
	return "local"
}

func hashEmbed(text string) []float32 {
	vec := make([]float32, localEmbedDim)
	runes := []rune(text)
	if len(runes) == 0 {
		return vec
	}
	for i := 0; i < len(runes); i++ {
		end := i + 3
		if end > len(runes) {
			end = len(runes)
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(string(runes[i:end])))
		vec[h.Sum32()%localEmbedDim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
