// File path: internal/matcher/config_test.go
package matcher

import (
	"strings"
	"testing"

	"github.com/nicodishanthj/semmatch/internal/embedding"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()
	if cfg.ChunkSize != 500 || cfg.ChunkOverlap == nil || *cfg.ChunkOverlap != 50 {
		t.Fatalf("unexpected chunk defaults: %+v", cfg)
	}
	if cfg.SearchLimit != 5 || cfg.Lambda == nil || *cfg.Lambda != 0.5 {
		t.Fatalf("unexpected search defaults: %+v", cfg)
	}
	if cfg.CacheSize != embedding.DefaultCacheSize {
		t.Fatalf("cache size must default to the shared constant: %+v", cfg)
	}
	if cfg.DisableMMR || cfg.DisableCache {
		t.Fatalf("zero value must keep MMR and cache enabled: %+v", cfg)
	}
}

func TestConfigHonorsExplicitZero(t *testing.T) {
	overlap := 0
	lambda := 0.0
	cfg := Config{}.Merge(Config{ChunkOverlap: &overlap, Lambda: &lambda})
	cfg.applyDefaults()
	if cfg.ChunkOverlap == nil || *cfg.ChunkOverlap != 0 {
		t.Fatalf("explicit zero overlap lost: %+v", cfg)
	}
	if cfg.Lambda == nil || *cfg.Lambda != 0 {
		t.Fatalf("explicit zero lambda lost: %+v", cfg)
	}
}

func TestConfigMergeKeepsBaseOnZeroOverride(t *testing.T) {
	base := Config{ChunkSize: 200, SearchLimit: 3, ChatModel: "gpt-4o"}
	merged := base.Merge(Config{ChunkSize: 300, DisableMMR: true})
	if merged.ChunkSize != 300 {
		t.Fatalf("override lost: %+v", merged)
	}
	if merged.SearchLimit != 3 || merged.ChatModel != "gpt-4o" {
		t.Fatalf("base values lost: %+v", merged)
	}
	if !merged.DisableMMR {
		t.Fatalf("bool override lost: %+v", merged)
	}
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("MATCHER_CHUNK_SIZE", "128")
	t.Setenv("MATCHER_SCORE_THRESHOLD", "0.25")
	t.Setenv("MATCHER_DISABLE_CACHE", "true")
	t.Setenv("MATCHER_LAMBDA", "0")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChunkSize != 128 {
		t.Fatalf("env chunk size not applied: %+v", cfg)
	}
	if cfg.ScoreThreshold != 0.25 {
		t.Fatalf("env threshold not applied: %+v", cfg)
	}
	if !cfg.DisableCache {
		t.Fatalf("env cache toggle not applied: %+v", cfg)
	}
	if cfg.Lambda == nil || *cfg.Lambda != 0 {
		t.Fatalf("env zero lambda not applied: %+v", cfg)
	}
}

func TestTemplateFormat(t *testing.T) {
	tmpl := NewTemplate("query {query} against {candidates}; missing {nope}")
	out := tmpl.Format(map[string]string{"query": "Q", "candidates": "C"})
	if out != "query Q against C; missing {nope}" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestDefaultMatchTemplateCarriesTieRule(t *testing.T) {
	out := DefaultMatchTemplate.Format(map[string]string{"candidates": "x", "query": "y"})
	if !strings.Contains(out, "answer NONE") {
		t.Fatalf("tie-break instruction missing from prompt:\n%s", out)
	}
	if !strings.Contains(out, `"answer"`) {
		t.Fatalf("reply schema missing from prompt:\n%s", out)
	}
}
