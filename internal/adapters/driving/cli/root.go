// Package cli implements the acervo command line interface.
package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/acervo-ai/acervo-cli/internal/adapters/driven/embedding/ollama"
	"github.com/acervo-ai/acervo-cli/internal/adapters/driven/embedding/openai"
	genollama "github.com/acervo-ai/acervo-cli/internal/adapters/driven/generation/ollama"
	"github.com/acervo-ai/acervo-cli/internal/adapters/driven/vectorstore"
	"github.com/acervo-ai/acervo-cli/internal/chunker"
	"github.com/acervo-ai/acervo-cli/internal/config"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driven"
	"github.com/acervo-ai/acervo-cli/internal/core/ports/driving"
	"github.com/acervo-ai/acervo-cli/internal/core/services"
	"github.com/acervo-ai/acervo-cli/internal/extractors"
	"github.com/acervo-ai/acervo-cli/internal/extractors/docx"
	"github.com/acervo-ai/acervo-cli/internal/extractors/pdf"
	"github.com/acervo-ai/acervo-cli/internal/extractors/plaintext"
	"github.com/acervo-ai/acervo-cli/internal/logger"
)

var (
	verbose    bool
	configPath string
)

// Package-level services, wired lazily on first use so commands like
// version and help never touch the store or providers.
var (
	wireOnce sync.Once
	wireErr  error

	appConfig        *config.Config
	ingestionService driving.IngestionService
	retrievalService driving.RetrievalService
	askService       driving.AskService
	storeAdmin       driving.StoreAdmin
)

var rootCmd = &cobra.Command{
	Use:   "acervo",
	Short: "Local document knowledge base with semantic retrieval",
	Long: `Acervo ingests documents into a local vector store and answers
questions about them using semantic retrieval, with optional LLM
answer synthesis through Ollama.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.acervo/config.toml)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// ensureServices wires the full service graph once. Commands that need
// live services call it from their RunE.
func ensureServices() error {
	wireOnce.Do(func() { wireErr = wire() })
	return wireErr
}

func wire() error {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	appConfig = cfg

	dataDir, err := cfg.DataDir()
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	store, backend, err := vectorstore.Open(vectorstore.Options{
		DataDir:    dataDir,
		Collection: cfg.Store.Collection,
		Dimension:  cfg.Store.Dimension,
	})
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	if backend == driven.BackendFallback {
		logger.Warn("Running on the fallback vector store")
	}

	registry := extractors.NewRegistry()
	registry.Register(plaintext.New())
	registry.Register(pdf.New())
	registry.Register(docx.New())

	splitter := chunker.New(
		chunker.WithMaxLength(cfg.Chunking.MaxLength),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	)

	ingestion := services.NewIngestionService(registry, embedder, store, splitter)
	ingestion.SetMaxWorkers(cfg.Ingestion.MaxWorkers)
	ingestion.SetLanguage(cfg.Ingestion.Language)
	ingestionService = ingestion

	retrieval := services.NewRetrievalService(embedder, store)
	retrieval.SetThreshold(cfg.Retrieval.SimilarityThreshold)
	retrievalService = retrieval

	var generator driven.GenerationService
	if cfg.Generation.Enabled {
		generator = genollama.NewLLMService(genollama.LLMConfig{
			BaseURL: cfg.Generation.BaseURL,
			Model:   cfg.Generation.Model,
		})
	}
	agent := services.NewAgentService(retrieval, generator)
	agent.SetTopK(cfg.Retrieval.TopK)
	askService = agent

	storeAdmin = services.NewAdminService(store, backend)
	return nil
}

func buildEmbedder(cfg *config.Config) (driven.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Store.Dimension,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Store.Dimension,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}
