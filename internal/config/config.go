package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IndexConfig describes the vector index binding: which backend serves it,
// the index name, and the embedding model the index is created with.
type IndexConfig struct {
	Backend          string  `yaml:"backend"` // "chromem", "postgres" or "remote"
	Name             string  `yaml:"name"`
	Cloud            string  `yaml:"cloud"`
	Region           string  `yaml:"region"`
	EmbeddingModel   string  `yaml:"embedding_model"`
	TextField        string  `yaml:"text_field"`
	BaseURL          string  `yaml:"base_url"`
	APIKey           string  `yaml:"api_key"`
	Path             string  `yaml:"path"`
	InMemory         bool    `yaml:"in_memory"`
	PollIntervalSecs int     `yaml:"poll_interval_secs"`
	ReadyTimeoutSecs int     `yaml:"ready_timeout_secs"`
	BackoffFactor    float64 `yaml:"backoff_factor"`
}

// RAGConfig holds the tunable retrieval policy.
type RAGConfig struct {
	ChunkSize          int     `yaml:"chunk_size"`
	ChunkOverlap       int     `yaml:"chunk_overlap"`
	BatchSize          int     `yaml:"batch_size"`
	TopK               int     `yaml:"top_k"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
}

// LLMConfig configures one language-model endpoint. The same shape is used
// for the chat model and the embedding model.
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai" or "ollama"
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Key         string `yaml:"key"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

type Config struct {
	Index    IndexConfig    `yaml:"index"`
	RAG      RAGConfig      `yaml:"rag"`
	LLM      LLMConfig      `yaml:"llm"`
	EmbedLLM LLMConfig      `yaml:"embed_llm"`
	Database DatabaseConfig `yaml:"database"`
}

// MissingFieldError reports a required configuration value that is absent.
// Construction-time configuration errors are fatal: the process must not
// reach a usable state without the credentials its backend needs.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required config field: %s", e.Field)
}

const apiKeyEnv = "VECTOR_INDEX_API_KEY"

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every tunable at its default value.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Index.Backend == "" {
		cfg.Index.Backend = "chromem"
	}
	if cfg.Index.Name == "" {
		cfg.Index.Name = "assistant"
	}
	if cfg.Index.Cloud == "" {
		cfg.Index.Cloud = "aws"
	}
	if cfg.Index.Region == "" {
		cfg.Index.Region = "us-east-1"
	}
	if cfg.Index.EmbeddingModel == "" {
		cfg.Index.EmbeddingModel = "nomic-embed-text"
	}
	if cfg.Index.TextField == "" {
		cfg.Index.TextField = "chunk_text"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./chromemdb"
	}
	if cfg.Index.PollIntervalSecs == 0 {
		cfg.Index.PollIntervalSecs = 1
	}
	if cfg.Index.ReadyTimeoutSecs == 0 {
		cfg.Index.ReadyTimeoutSecs = 120
	}
	if cfg.Index.BackoffFactor == 0 {
		cfg.Index.BackoffFactor = 1.0
	}
	if cfg.Index.APIKey == "" {
		cfg.Index.APIKey = os.Getenv(apiKeyEnv)
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.BatchSize == 0 {
		cfg.RAG.BatchSize = 100
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 3
	}
	if cfg.RAG.RelevanceThreshold == 0 {
		cfg.RAG.RelevanceThreshold = 0.6
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "llama3.1"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 120
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = cfg.Index.EmbeddingModel
	}
	if cfg.EmbedLLM.TimeoutSecs == 0 {
		cfg.EmbedLLM.TimeoutSecs = 60
	}
}

// Validate checks that the selected backends have the credentials they need.
func (cfg *Config) Validate() error {
	switch cfg.Index.Backend {
	case "remote":
		if cfg.Index.BaseURL == "" {
			return &MissingFieldError{Field: "index.base_url"}
		}
		if cfg.Index.APIKey == "" {
			return &MissingFieldError{Field: "index.api_key"}
		}
	case "postgres":
		if cfg.Database.DSN == "" {
			return &MissingFieldError{Field: "database.dsn"}
		}
	}
	if cfg.LLM.Provider == "openai" && cfg.LLM.Key == "" {
		return &MissingFieldError{Field: "llm.key"}
	}
	if cfg.EmbedLLM.Provider == "openai" && cfg.EmbedLLM.Key == "" {
		return &MissingFieldError{Field: "embed_llm.key"}
	}
	return nil
}
