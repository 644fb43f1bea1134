package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/auxo-ai/knowbase-go/pkg/embedder"
	openaiembed "github.com/auxo-ai/knowbase-go/pkg/embedder/openai"
	openaillm "github.com/auxo-ai/knowbase-go/pkg/llm/openai"
)

// Config contains the complete configuration for a knowledge module.
//
// Example:
//
//	config := &knowledge.Config{
//	    Embedder: knowledge.EmbedderConfig{
//	        APIKey:     "sk-...",
//	        Model:      "text-embedding-3-small",
//	        Dimensions: 1536,
//	    },
//	    Reasoner: &knowledge.ReasonerConfig{
//	        APIKey: "sk-...",
//	        Model:  "gpt-4o-mini",
//	    },
//	}
//	kb, err := knowledge.NewFromConfig(config)
type Config struct {
	// Embedder contains embedding provider configuration.
	Embedder EmbedderConfig `json:"embedder"`

	// Reasoner contains reasoning provider configuration (optional).
	// When nil, the verification operations return optimistic results.
	Reasoner *ReasonerConfig `json:"reasoner,omitempty"`

	// CollectionName overrides the default vector collection name.
	CollectionName string `json:"collection_name,omitempty"`

	// EmbeddingCacheSize is the maximum number of cached embeddings.
	// Zero disables the cache.
	EmbeddingCacheSize int64 `json:"embedding_cache_size,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
type EmbedderConfig struct {
	// APIKey is the API key for the embedding provider.
	APIKey string `json:"api_key"`

	// Model is the embedding model name (e.g., "text-embedding-3-small").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional).
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the dimension of the embedding vectors.
	Dimensions int `json:"dimensions,omitempty"`
}

// ReasonerConfig contains configuration for the reasoning provider used by
// the verification operations.
type ReasonerConfig struct {
	// APIKey is the API key for the reasoning provider.
	APIKey string `json:"api_key"`

	// Model is the model name (e.g., "gpt-4o-mini").
	Model string `json:"model"`

	// BaseURL is the base URL for the API (optional).
	BaseURL string `json:"base_url,omitempty"`
}

// Validate checks the configuration for required fields.
func (c *Config) Validate() error {
	if c.Embedder.APIKey == "" {
		return NewError("Config.Validate", fmt.Errorf("%w: embedder API key is required", ErrInvalidConfig))
	}
	if c.Reasoner != nil && c.Reasoner.APIKey == "" {
		return NewError("Config.Validate", fmt.Errorf("%w: reasoner API key is required", ErrInvalidConfig))
	}
	if c.EmbeddingCacheSize < 0 {
		return NewError("Config.Validate", fmt.Errorf("%w: negative embedding cache size", ErrInvalidConfig))
	}
	return nil
}

// LoadConfigFromEnv loads configuration from environment variables,
// reading a .env file first when one can be found.
//
// Recognized variables:
//
//	EMBEDDING_API_KEY, EMBEDDING_MODEL, EMBEDDING_BASE_URL, EMBEDDING_MODEL_DIMS
//	LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//	KNOWLEDGE_COLLECTION, EMBEDDING_CACHE_SIZE
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	dims, _ := strconv.Atoi(getEnvOrDefault("EMBEDDING_MODEL_DIMS", "0"))
	cacheSize, _ := strconv.ParseInt(getEnvOrDefault("EMBEDDING_CACHE_SIZE", "0"), 10, 64)

	config := &Config{
		Embedder: EmbedderConfig{
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),
			BaseURL:    os.Getenv("EMBEDDING_BASE_URL"),
			Dimensions: dims,
		},
		CollectionName:     getEnvOrDefault("KNOWLEDGE_COLLECTION", DefaultCollectionName),
		EmbeddingCacheSize: cacheSize,
	}

	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		config.Reasoner = &ReasonerConfig{
			APIKey:  apiKey,
			Model:   getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			BaseURL: os.Getenv("LLM_BASE_URL"),
		}
	}

	return config, nil
}

// NewFromConfig creates a fully wired knowledge module from a validated
// configuration: an OpenAI-compatible embedder (optionally wrapped in an
// in-process cache) and, when configured, an OpenAI-compatible reasoner.
func NewFromConfig(config *Config, opts ...Option) (*Module, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openaiembed.NewClient(&openaiembed.Config{
		APIKey:     config.Embedder.APIKey,
		Model:      config.Embedder.Model,
		BaseURL:    config.Embedder.BaseURL,
		Dimensions: config.Embedder.Dimensions,
	})
	if err != nil {
		return nil, NewError("NewFromConfig", err)
	}
	var provider embedder.Provider = client
	if config.EmbeddingCacheSize > 0 {
		cached, err := embedder.NewCached(provider, &embedder.CacheConfig{
			MaxEntries: config.EmbeddingCacheSize,
		})
		if err != nil {
			return nil, NewError("NewFromConfig", err)
		}
		provider = cached
	}

	if config.Reasoner != nil {
		reasoner, err := openaillm.NewClient(&openaillm.Config{
			APIKey:  config.Reasoner.APIKey,
			Model:   config.Reasoner.Model,
			BaseURL: config.Reasoner.BaseURL,
		})
		if err != nil {
			return nil, NewError("NewFromConfig", err)
		}
		opts = append(opts, WithReasoner(reasoner))
	}
	if config.CollectionName != "" {
		opts = append(opts, WithCollectionName(config.CollectionName))
	}

	return New(provider, opts...)
}

// FindEnvFile searches for a .env file in the current directory and up to
// five parent directories.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
