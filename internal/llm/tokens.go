// File path: internal/llm/tokens.go
package llm

import (
	"fmt"
	"strings"

	"github.com/nicodishanthj/semmatch/internal/common"
)

// Per-model message framing overhead in tokens: the fixed cost each chat
// message adds on top of its content, plus the priming cost of the reply.
// Used to budget the disambiguation prompt against the model's context
// window.
type ModelOverhead struct {
	PerMessage int
	PerReply   int
}

var modelOverheads = map[string]ModelOverhead{
	"gpt-3.5-turbo":     {PerMessage: 4, PerReply: 3},
	"gpt-3.5-turbo-16k": {PerMessage: 4, PerReply: 3},
	"gpt-4":             {PerMessage: 3, PerReply: 3},
	"gpt-4-turbo":       {PerMessage: 3, PerReply: 3},
	"gpt-4o":            {PerMessage: 3, PerReply: 3},
	"gpt-4o-mini":       {PerMessage: 3, PerReply: 3},
}

// OverheadForModel resolves the framing constants for a model
// identifier. Unknown models are a configuration error; there is no
// silent fallback, so a typo in OPENAI_CHAT_MODEL surfaces at startup.
func OverheadForModel(model string) (ModelOverhead, error) {
	key := strings.ToLower(strings.TrimSpace(model))
	if overhead, ok := modelOverheads[key]; ok {
		return overhead, nil
	}
	// Versioned releases (gpt-4o-2024-08-06 and the like) inherit the
	// base model's framing.
	for base, overhead := range modelOverheads {
		if strings.HasPrefix(key, base+"-") {
			return overhead, nil
		}
	}
	return ModelOverhead{}, fmt.Errorf("llm: unknown model %q: %w", model, common.ErrConfiguration)
}

// EstimateTokens approximates the token count of a text. A crude
// rune-quarter heuristic, good enough for budgeting; exact accounting
// belongs to the provider.
func EstimateTokens(text string) int {
	runes := 0
	for range text {
		runes++
	}
	if runes == 0 {
		return 0
	}
	return runes/4 + 1
}

// MessageBudget estimates the token cost of a message sequence for the
// given model.
func MessageBudget(model string, messages []Message) (int, error) {
	overhead, err := OverheadForModel(model)
	if err != nil {
		return 0, err
	}
	total := overhead.PerReply
	for _, msg := range messages {
		total += overhead.PerMessage + EstimateTokens(msg.Content)
	}
	return total, nil
}
