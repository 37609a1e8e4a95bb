// File path: internal/matcher/resolver.go
package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nicodishanthj/semmatch/internal/common"
	"github.com/nicodishanthj/semmatch/internal/record"
	"github.com/nicodishanthj/semmatch/internal/rerank"
	"github.com/nicodishanthj/semmatch/internal/vector"
)

// candidate is one deduplicated similarity hit with its full record.
type candidate struct {
	id     string
	score  float32
	record record.Record
}

// resolution captures the terminal state of one Find call so Explain can
// report on it afterwards.
type resolution struct {
	prompt      string
	rawReply    string
	record      record.Record
	explanation string
}

type replyPayload struct {
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
}

// resolve walks the candidate-narrowing protocol: per-field filtered
// search, widened retry when every field comes back empty, dedup by
// record id, then generative disambiguation when more than one candidate
// survives.
func (e *Engine) resolve(ctx context.Context, query record.Record) (*resolution, error) {
	logger := common.Logger()

	candidates, err := e.searchCandidates(ctx, query, true)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.Debug("matcher: filtered search empty, widening")
		candidates, err = e.searchCandidates(ctx, query, false)
		if err != nil {
			return nil, err
		}
	}
	if len(candidates) == 0 {
		return &resolution{explanation: "no similar record found"}, nil
	}
	if len(candidates) == 1 {
		only := candidates[0]
		return &resolution{
			record:      only.record,
			explanation: fmt.Sprintf("single candidate %s cleared the score threshold", only.id),
		}, nil
	}

	prompt := e.renderPrompt(query, candidates)
	if e.cfg.ChatModel != "" {
		if budget, err := e.promptBudget(prompt); err == nil {
			logger.Debug("matcher: disambiguation prompt budget", "tokens", budget, "model", e.cfg.ChatModel)
		}
	}
	reply, err := e.provider.Chat(ctx, e.chatMessages(prompt))
	if err != nil {
		return nil, fmt.Errorf("matcher: disambiguation call: %w: %v", common.ErrProvider, err)
	}

	parsed, err := parseReply(reply)
	if err != nil {
		logger.Warn("matcher: discarding unparseable reply", "error", err)
		return &resolution{
			prompt:      prompt,
			rawReply:    reply,
			explanation: "model reply could not be parsed; treating as no match",
		}, nil
	}

	res := &resolution{prompt: prompt, rawReply: reply, explanation: parsed.Explanation}
	answer := strings.TrimSpace(parsed.Answer)
	if strings.EqualFold(answer, "NONE") {
		if res.explanation == "" {
			res.explanation = "model declined to pick a candidate"
		}
		return res, nil
	}
	for _, cand := range candidates {
		if cand.id == answer {
			res.record = cand.record
			return res, nil
		}
	}
	logger.Warn("matcher: model answered with unknown candidate id", "answer", answer)
	res.record = nil
	res.explanation = fmt.Sprintf("model answer %q matched no candidate", answer)
	return res, nil
}

// searchCandidates runs one similarity search per query field and merges
// the hits, deduplicated by record id, keeping the best score per
// record. With filtered=true each search is constrained to documents of
// the same field name.
func (e *Engine) searchCandidates(ctx context.Context, query record.Record, filtered bool) ([]candidate, error) {
	logger := common.Logger()
	byID := make(map[string]candidate)

	for _, field := range sortedFields(query) {
		text := strings.TrimSpace(query[field])
		if text == "" {
			continue
		}
		queryVec, err := e.embedText(ctx, text)
		if err != nil {
			return nil, err
		}
		req := vector.Query{
			Limit:          e.cfg.SearchLimit,
			ScoreThreshold: float32(e.cfg.ScoreThreshold),
		}
		if filtered {
			req.Filter = map[string]string{attrField: field}
		}
		results, err := e.index.Search(ctx, queryVec, req)
		if err != nil {
			return nil, fmt.Errorf("matcher: similarity search for field %q: %w", field, err)
		}
		results, err = e.diversify(ctx, queryVec, results)
		if err != nil {
			return nil, err
		}
		for _, hit := range results {
			recordID := hit.Attributes[attrRecordID]
			if recordID == "" {
				continue
			}
			if existing, ok := byID[recordID]; ok && existing.score >= hit.Score {
				continue
			}
			rec, ok, err := e.catalog.Get(ctx, recordID)
			if err != nil {
				return nil, fmt.Errorf("matcher: load candidate %s: %w", recordID, err)
			}
			if !ok {
				logger.Warn("matcher: candidate missing from catalog", "record_id", recordID)
				continue
			}
			byID[recordID] = candidate{id: recordID, score: hit.Score, record: rec}
		}
	}

	candidates := make([]candidate, 0, len(byID))
	for _, cand := range byID {
		candidates = append(candidates, cand)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
	return candidates, nil
}

// diversify re-orders one field's hits by maximal marginal relevance so
// near-duplicate documents do not crowd out distinct candidates.
func (e *Engine) diversify(ctx context.Context, queryVec []float32, results []vector.SearchResult) ([]vector.SearchResult, error) {
	if e.cfg.DisableMMR || len(results) < 2 {
		return results, nil
	}
	vectors := make([][]float32, len(results))
	for i, hit := range results {
		vec, err := e.embedText(ctx, hit.Content)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	order := rerank.Select(queryVec, vectors, *e.cfg.Lambda, e.cfg.SearchLimit)
	reordered := make([]vector.SearchResult, 0, len(order))
	for _, idx := range order {
		reordered = append(reordered, results[idx])
	}
	return reordered, nil
}

func (e *Engine) renderPrompt(query record.Record, candidates []candidate) string {
	var lines []string
	for _, cand := range candidates {
		lines = append(lines, cand.id+": "+encodeRecord(cand.record))
	}
	return e.matchTemplate.Format(map[string]string{
		"candidates": strings.Join(lines, "\n"),
		"query":      encodeRecord(query),
	})
}

func encodeRecord(rec record.Record) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Sprintf("%v", rec)
	}
	return string(data)
}

// parseReply extracts the structured answer from the model's reply.
// Fenced code blocks and surrounding prose are tolerated; anything
// without a complete JSON object is a format error.
func parseReply(reply string) (replyPayload, error) {
	trimmed := strings.TrimSpace(reply)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return replyPayload{}, fmt.Errorf("matcher: no JSON object in reply: %w", common.ErrReplyFormat)
	}
	var payload replyPayload
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return replyPayload{}, fmt.Errorf("matcher: decode reply: %v: %w", err, common.ErrReplyFormat)
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return replyPayload{}, fmt.Errorf("matcher: reply missing answer field: %w", common.ErrReplyFormat)
	}
	return payload, nil
}

func sortedFields(rec record.Record) []string {
	fields := make([]string, 0, len(rec))
	for field := range rec {
		if field == idField {
			continue
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
