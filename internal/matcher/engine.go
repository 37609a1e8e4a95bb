// File path: internal/matcher/engine.go
package matcher

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nicodishanthj/semmatch/internal/common"
	"github.com/nicodishanthj/semmatch/internal/embedding"
	"github.com/nicodishanthj/semmatch/internal/llm"
	"github.com/nicodishanthj/semmatch/internal/record"
	"github.com/nicodishanthj/semmatch/internal/textsplit"
	"github.com/nicodishanthj/semmatch/internal/vector"
)

const (
	idField      = "id"
	attrRecordID = "record_id"
	attrField    = "field"
)

// Document is one ingested field of a record: the unit stored in the
// vector index, with one aggregated vector per document.
type Document struct {
	ID       string
	RecordID string
	Field    string
	Content  string
	Chunks   int
}

// ProgressFunc reports ingestion progress. Stage names the phase, done
// and total count records within the current batch.
type ProgressFunc func(stage string, done, total int)

// Engine composes the retrieval pipeline behind the public
// add/find/explain surface. It is safe for concurrent use; the embedding
// cache and the last-resolution slot are the only shared mutable state.
type Engine struct {
	cfg             Config
	provider        llm.Provider
	index           vector.Index
	catalog         record.Catalog
	splitter        *textsplit.Splitter
	cache           *embedding.VectorCache
	matchTemplate   PromptTemplate
	explainTemplate PromptTemplate
	progress        ProgressFunc

	mu   sync.Mutex
	last *resolution
}

// EngineOption customizes an Engine beyond its Config.
type EngineOption func(*Engine)

// WithMatchTemplate overrides the disambiguation prompt.
func WithMatchTemplate(tmpl PromptTemplate) EngineOption {
	return func(e *Engine) {
		if tmpl != nil {
			e.matchTemplate = tmpl
		}
	}
}

// WithExplainTemplate overrides the lazy rationale prompt.
func WithExplainTemplate(tmpl PromptTemplate) EngineOption {
	return func(e *Engine) {
		if tmpl != nil {
			e.explainTemplate = tmpl
		}
	}
}

// WithProgress installs a progress callback invoked during ingestion.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *Engine) {
		e.progress = fn
	}
}

// NewEngine validates the configuration and wires the pipeline. The
// chat model, when configured, must be present in the token-overhead
// table; an unknown model fails construction.
func NewEngine(cfg Config, provider llm.Provider, index vector.Index, catalog record.Catalog, opts ...EngineOption) (*Engine, error) {
	cfg.applyDefaults()
	if provider == nil {
		return nil, fmt.Errorf("matcher: provider required: %w", common.ErrConfiguration)
	}
	if index == nil {
		return nil, fmt.Errorf("matcher: vector index required: %w", common.ErrConfiguration)
	}
	if catalog == nil {
		return nil, fmt.Errorf("matcher: record catalog required: %w", common.ErrConfiguration)
	}
	if cfg.ChatModel != "" {
		if _, err := llm.OverheadForModel(cfg.ChatModel); err != nil {
			return nil, err
		}
	}

	splitter, err := textsplit.New(
		textsplit.WithChunkSize(cfg.ChunkSize),
		textsplit.WithChunkOverlap(*cfg.ChunkOverlap),
		textsplit.WithSeparator(cfg.Separator),
	)
	if err != nil {
		return nil, err
	}

	cache := embedding.NewDisabledCache()
	if !cfg.DisableCache {
		cache, err = embedding.NewVectorCache(cfg.CacheSize)
		if err != nil {
			return nil, err
		}
	}

	engine := &Engine{
		cfg:             cfg,
		provider:        provider,
		index:           index,
		catalog:         catalog,
		splitter:        splitter,
		cache:           cache,
		matchTemplate:   DefaultMatchTemplate,
		explainTemplate: DefaultExplainTemplate,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}
	common.Logger().Info("matcher: engine ready",
		"provider", provider.Name(),
		"chunk_size", cfg.ChunkSize,
		"search_limit", cfg.SearchLimit,
		"mmr", !cfg.DisableMMR,
		"cache", !cfg.DisableCache)
	return engine, nil
}

// AddRecord ingests one record: each field becomes a document whose text
// is chunked, embedded per chunk, aggregated into one vector, and
// upserted with record-id and field attributes. Re-adding a record id
// replaces every document of the prior version.
func (e *Engine) AddRecord(ctx context.Context, rec record.Record) ([]Document, error) {
	if len(rec) == 0 {
		return nil, fmt.Errorf("matcher: record has no fields: %w", common.ErrEmptyInput)
	}
	recordID := strings.TrimSpace(rec[idField])
	if recordID == "" {
		recordID = uuid.NewString()
	}

	if err := e.removeExisting(ctx, recordID); err != nil {
		return nil, err
	}

	var docs []vector.Doc
	var vectors [][]float32
	var out []Document
	for _, field := range sortedFields(rec) {
		text := strings.TrimSpace(rec[field])
		if text == "" {
			continue
		}
		e.report("chunk", 0, 1)
		chunks := e.splitter.Split(text)
		if len(chunks) == 0 {
			continue
		}
		e.report("embed", 0, len(chunks))
		chunkVecs := make([][]float32, len(chunks))
		weights := make([]int, len(chunks))
		for i, chunk := range chunks {
			vec, err := e.embedText(ctx, chunk)
			if err != nil {
				return nil, err
			}
			chunkVecs[i] = vec
			weights[i] = textsplit.RuneLength(chunk)
			e.report("embed", i+1, len(chunks))
		}
		docVec, err := embedding.Aggregate(chunkVecs, weights)
		if err != nil {
			return nil, fmt.Errorf("matcher: aggregate field %q: %w", field, err)
		}

		docID := recordID + ":" + field
		docs = append(docs, vector.Doc{
			ID:      docID,
			Content: text,
			Attributes: map[string]string{
				attrRecordID: recordID,
				attrField:    field,
			},
		})
		vectors = append(vectors, docVec)
		out = append(out, Document{
			ID:       docID,
			RecordID: recordID,
			Field:    field,
			Content:  text,
			Chunks:   len(chunks),
		})
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("matcher: record %s has no non-empty fields: %w", recordID, common.ErrEmptyInput)
	}

	e.report("upsert", 0, 1)
	if err := e.index.Upsert(ctx, docs, vectors); err != nil {
		return nil, fmt.Errorf("matcher: upsert record %s: %w", recordID, err)
	}
	if err := e.catalog.Put(ctx, recordID, rec); err != nil {
		return nil, fmt.Errorf("matcher: store record %s: %w", recordID, err)
	}
	e.report("upsert", 1, 1)
	common.Logger().Debug("matcher: record ingested", "record_id", recordID, "documents", len(out))
	return out, nil
}

// AddRecords ingests a batch, reporting per-record progress.
func (e *Engine) AddRecords(ctx context.Context, records []record.Record) ([]Document, error) {
	var out []Document
	for i, rec := range records {
		docs, err := e.AddRecord(ctx, rec)
		if err != nil {
			return out, fmt.Errorf("matcher: ingest record %d: %w", i, err)
		}
		out = append(out, docs...)
		e.report("ingest", i+1, len(records))
	}
	return out, nil
}

// Find resolves the query record to the most similar stored record, or
// nil when nothing matches. "No match" and "ambiguous reply" are results
// here, not errors; only configuration, provider, and storage failures
// surface as errors.
func (e *Engine) Find(ctx context.Context, query record.Record) (record.Record, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("matcher: query has no fields: %w", common.ErrEmptyInput)
	}
	res, err := e.resolve(ctx, query)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.last = res
	e.mu.Unlock()
	return res.record, nil
}

// Explain reports the rationale of the most recent Find. When the
// resolution already carries an explanation it is returned verbatim;
// otherwise one additional generative call derives a rationale from the
// captured prompt and reply, computed at most once per resolution.
func (e *Engine) Explain(ctx context.Context) (string, error) {
	e.mu.Lock()
	res := e.last
	e.mu.Unlock()
	if res == nil {
		return "", fmt.Errorf("matcher: explain before find: %w", common.ErrNoResolution)
	}
	if res.explanation != "" {
		return res.explanation, nil
	}

	prompt := e.explainTemplate.Format(map[string]string{
		"prompt": res.prompt,
		"reply":  res.rawReply,
	})
	reply, err := e.provider.Chat(ctx, e.chatMessages(prompt))
	if err != nil {
		return "", fmt.Errorf("matcher: explanation call: %w: %v", common.ErrProvider, err)
	}
	explanation := strings.TrimSpace(reply)
	if explanation == "" {
		explanation = "no explanation available"
	}
	e.mu.Lock()
	if e.last == res {
		res.explanation = explanation
	}
	e.mu.Unlock()
	return explanation, nil
}

// embedText returns the embedding for one text, memoized by content
// fingerprint.
func (e *Engine) embedText(ctx context.Context, text string) ([]float32, error) {
	return e.cache.GetOrCompute(embedding.Fingerprint(text), func() ([]float32, error) {
		vecs, err := e.provider.Embed(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("matcher: embed text: %w: %v", common.ErrProvider, err)
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("matcher: provider returned %d vectors for one text: %w",
				len(vecs), common.ErrProvider)
		}
		return vecs[0], nil
	})
}

// removeExisting deletes the documents of a previously ingested record
// so re-ingestion is replace-only.
func (e *Engine) removeExisting(ctx context.Context, recordID string) error {
	prior, ok, err := e.catalog.Get(ctx, recordID)
	if err != nil {
		return fmt.Errorf("matcher: check prior record %s: %w", recordID, err)
	}
	if !ok {
		return nil
	}
	var ids []string
	for _, field := range sortedFields(prior) {
		ids = append(ids, recordID+":"+field)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := e.index.Delete(ctx, ids); err != nil {
		return fmt.Errorf("matcher: delete prior documents of %s: %w", recordID, err)
	}
	return nil
}

func (e *Engine) chatMessages(prompt string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: "You are a precise record-matching assistant."},
		{Role: "user", Content: prompt},
	}
}

func (e *Engine) promptBudget(prompt string) (int, error) {
	return llm.MessageBudget(e.cfg.ChatModel, e.chatMessages(prompt))
}

func (e *Engine) report(stage string, done, total int) {
	if e.progress != nil {
		e.progress(stage, done, total)
	}
}
