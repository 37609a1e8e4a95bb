// File path: cmd/semmatch/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nicodishanthj/semmatch/internal/api"
	"github.com/nicodishanthj/semmatch/internal/common"
	"github.com/nicodishanthj/semmatch/internal/llm"
	"github.com/nicodishanthj/semmatch/internal/matcher"
	"github.com/nicodishanthj/semmatch/internal/record"
	recsqlite "github.com/nicodishanthj/semmatch/internal/record/sqlite"
	"github.com/nicodishanthj/semmatch/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("semmatch: .env file not loaded", "error", err)
	} else {
		logger.Info("semmatch: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite record catalog (empty for in-memory)")
	memoryIndex := flag.Bool("memory-index", false, "use the in-process vector index instead of ChromaDB")
	flag.Parse()

	logger.Info("semmatch: startup initiated", "addr", *addr, "catalog", *catalogPath)

	if err := llm.EnsureInitialized(); err != nil {
		logger.Error("semmatch: provider initialization failed", "error", err)
		fmt.Println("provider error:", err)
		os.Exit(1)
	}
	provider := llm.NewProvider()
	logger.Info("semmatch: llm provider ready", "provider", provider.Name())

	index := buildIndex(ctx, *memoryIndex)
	catalog, closeCatalog, err := buildCatalog(*catalogPath)
	if err != nil {
		logger.Error("semmatch: catalog initialization failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer closeCatalog()

	cfg, err := matcher.LoadConfig()
	if err != nil {
		logger.Error("semmatch: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	engine, err := matcher.NewEngine(cfg, provider, index, catalog,
		matcher.WithProgress(func(stage string, done, total int) {
			logger.Debug("semmatch: ingest progress", "stage", stage, "done", done, "total", total)
		}))
	if err != nil {
		logger.Error("semmatch: engine construction failed", "error", err)
		fmt.Println("engine error:", err)
		os.Exit(1)
	}

	server, err := api.NewServer(engine)
	if err != nil {
		logger.Error("semmatch: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("semmatch: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("semmatch: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("semmatch: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

// buildIndex prefers ChromaDB and falls back to the in-process index
// when the service is unreachable or explicitly disabled.
func buildIndex(ctx context.Context, forceMemory bool) vector.Index {
	logger := common.Logger()
	if forceMemory {
		logger.Info("semmatch: using in-process vector index")
		return vector.NewMemoryIndex()
	}
	client, err := vector.NewFromEnv(ctx)
	if err != nil {
		logger.Warn("semmatch: chromadb unavailable, using in-process index", "error", err)
		return vector.NewMemoryIndex()
	}
	if !client.Available() {
		logger.Warn("semmatch: chromadb unreachable, using in-process index")
		return vector.NewMemoryIndex()
	}
	logger.Info("semmatch: chromadb index ready")
	return client
}

func buildCatalog(path string) (record.Catalog, func(), error) {
	logger := common.Logger()
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		logger.Info("semmatch: using in-memory record catalog")
		return record.NewMemoryCatalog(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create catalog directory: %w", err)
	}
	store, err := recsqlite.Open(trimmed)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("semmatch: sqlite record catalog ready", "path", trimmed)
	return store, func() { _ = store.Close() }, nil
}

func defaultCatalogPath() string {
	return filepath.Join("data", "records.db")
}
