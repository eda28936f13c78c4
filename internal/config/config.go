// Package config loads the application configuration from a TOML file,
// filling in defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the configuration file inside the data directory.
const FileName = "config.toml"

// Config is the full application configuration.
type Config struct {
	Chunking   Chunking   `toml:"chunking"`
	Store      Store      `toml:"store"`
	Embedding  Embedding  `toml:"embedding"`
	Generation Generation `toml:"generation"`
	Retrieval  Retrieval  `toml:"retrieval"`
	Ingestion  Ingestion  `toml:"ingestion"`
}

// Chunking controls the text splitter.
type Chunking struct {
	// MaxLength is the chunk size in characters.
	MaxLength int `toml:"max_length"`

	// Overlap is the number of characters shared between consecutive
	// chunks.
	Overlap int `toml:"overlap"`
}

// Store controls the vector store.
type Store struct {
	// DataDir holds the database and fallback index files.
	// Empty means ~/.acervo.
	DataDir string `toml:"data_dir"`

	// Collection namespaces entries in the primary backend.
	Collection string `toml:"collection"`

	// Dimension is the embedding vector length. It must match the
	// embedding model's output.
	Dimension int `toml:"dimension"`
}

// Embedding selects and configures the embedding provider.
type Embedding struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's API endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the embedding model name.
	Model string `toml:"model"`

	// APIKey authenticates against hosted providers. The
	// ACERVO_OPENAI_API_KEY environment variable takes precedence.
	APIKey string `toml:"api_key"`
}

// Generation configures the optional answer synthesis model.
type Generation struct {
	// Enabled turns LLM answer synthesis on. When off, answers are
	// templated from retrieved text.
	Enabled bool `toml:"enabled"`

	// BaseURL overrides the Ollama endpoint.
	BaseURL string `toml:"base_url"`

	// Model is the generation model name.
	Model string `toml:"model"`
}

// Retrieval controls the query path.
type Retrieval struct {
	// TopK is the number of chunks fetched per query.
	TopK int `toml:"top_k"`

	// SimilarityThreshold filters low-scoring results.
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Ingestion controls the write path.
type Ingestion struct {
	// MaxWorkers bounds concurrent document processing.
	MaxWorkers int `toml:"max_workers"`

	// Language is recorded in chunk metadata.
	Language string `toml:"language"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Chunking: Chunking{
			MaxLength: 1000,
			Overlap:   200,
		},
		Store: Store{
			Collection: "documents",
			Dimension:  384,
		},
		Embedding: Embedding{
			Provider: "ollama",
			Model:    "all-minilm",
		},
		Generation: Generation{
			Enabled: true,
			Model:   "llama3.2",
		},
		Retrieval: Retrieval{
			TopK:                5,
			SimilarityThreshold: 0.15,
		},
		Ingestion: Ingestion{
			MaxWorkers: 4,
			Language:   "en",
		},
	}
}

// DataDir resolves the effective data directory, creating it if needed.
func (c *Config) DataDir() (string, error) {
	dir := c.Store.DataDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".acervo")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dir, nil
}

// Load reads the configuration from path. A missing file yields the
// defaults; a malformed file is an error. Values absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv("ACERVO_OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}

	return cfg, nil
}

// DefaultPath returns the conventional config file location,
// ~/.acervo/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".acervo", FileName), nil
}

// Save writes the configuration to path with restricted permissions.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
