// File path: internal/matcher/config.go
package matcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nicodishanthj/semmatch/internal/embedding"
)

// Config tunes the retrieval pipeline. Zero values fall back to the
// defaults in applyDefaults; DisableMMR and DisableCache exist so that
// the zero-value config keeps both features on. ChunkOverlap and Lambda
// are pointers because zero is a valid setting for both (no overlap,
// pure diversity), distinct from "not configured".
type Config struct {
	ChunkSize      int      `json:"chunk_size"`
	ChunkOverlap   *int     `json:"chunk_overlap"`
	Separator      string   `json:"separator"`
	SearchLimit    int      `json:"search_limit"`
	ScoreThreshold float64  `json:"score_threshold"`
	Lambda         *float64 `json:"lambda"`
	CacheSize      int      `json:"cache_size"`
	ChatModel      string   `json:"chat_model"`
	DisableMMR     bool     `json:"disable_mmr"`
	DisableCache   bool     `json:"disable_cache"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if override.ChunkSize > 0 {
		result.ChunkSize = override.ChunkSize
	}
	if override.ChunkOverlap != nil {
		result.ChunkOverlap = override.ChunkOverlap
	}
	if override.Separator != "" {
		result.Separator = override.Separator
	}
	if override.SearchLimit > 0 {
		result.SearchLimit = override.SearchLimit
	}
	if override.ScoreThreshold > 0 {
		result.ScoreThreshold = override.ScoreThreshold
	}
	if override.Lambda != nil {
		result.Lambda = override.Lambda
	}
	if override.CacheSize > 0 {
		result.CacheSize = override.CacheSize
	}
	if strings.TrimSpace(override.ChatModel) != "" {
		result.ChatModel = strings.TrimSpace(override.ChatModel)
	}
	if override.DisableMMR {
		result.DisableMMR = true
	}
	if override.DisableCache {
		result.DisableCache = true
	}
	return result
}

// LoadConfig resolves the engine configuration from an optional JSON
// file pointed at by MATCHER_CONFIG_FILE, overlaid with MATCHER_*
// environment variables.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("MATCHER_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	cfg = cfg.Merge(loadConfigEnv())
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 500
	}
	if c.ChunkOverlap == nil {
		overlap := 50
		c.ChunkOverlap = &overlap
	}
	if c.Separator == "" {
		c.Separator = "\n\n"
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 5
	}
	if c.Lambda == nil {
		lambda := 0.5
		c.Lambda = &lambda
	}
	if c.CacheSize <= 0 {
		c.CacheSize = embedding.DefaultCacheSize
	}
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read matcher config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse matcher config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() Config {
	cfg := Config{}
	if v := strings.TrimSpace(os.Getenv("MATCHER_CHUNK_SIZE")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.ChunkSize = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_CHUNK_OVERLAP")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			cfg.ChunkOverlap = &parsed
		}
	}
	if v := os.Getenv("MATCHER_SEPARATOR"); v != "" {
		cfg.Separator = v
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_SEARCH_LIMIT")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.SearchLimit = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_SCORE_THRESHOLD")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ScoreThreshold = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_LAMBDA")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 {
			cfg.Lambda = &parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_CACHE_SIZE")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.CacheSize = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_CHAT_MODEL")); v != "" {
		cfg.ChatModel = v
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_DISABLE_MMR")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.DisableMMR = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("MATCHER_DISABLE_CACHE")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			cfg.DisableCache = parsed
		}
	}
	return cfg
}
