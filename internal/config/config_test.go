package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultValues(t *testing.T) {
	t.Setenv("VECTOR_INDEX_API_KEY", "")
	cfg := Default()

	if cfg.Index.Backend != "chromem" {
		t.Fatalf("unexpected default backend: %s", cfg.Index.Backend)
	}
	if cfg.Index.Name != "assistant" {
		t.Fatalf("unexpected default index name: %s", cfg.Index.Name)
	}
	if cfg.RAG.ChunkSize != 1000 || cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("unexpected chunking defaults: %d/%d", cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	}
	if cfg.RAG.BatchSize != 100 {
		t.Fatalf("unexpected batch size: %d", cfg.RAG.BatchSize)
	}
	if cfg.RAG.TopK != 3 {
		t.Fatalf("unexpected top_k: %d", cfg.RAG.TopK)
	}
	if cfg.RAG.RelevanceThreshold != 0.6 {
		t.Fatalf("unexpected relevance threshold: %v", cfg.RAG.RelevanceThreshold)
	}
	if cfg.Index.PollIntervalSecs != 1 || cfg.Index.ReadyTimeoutSecs != 120 {
		t.Fatalf("unexpected readiness defaults: %d/%d", cfg.Index.PollIntervalSecs, cfg.Index.ReadyTimeoutSecs)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3.1" {
		t.Fatalf("unexpected llm defaults: %s/%s", cfg.LLM.Provider, cfg.LLM.Model)
	}
	if cfg.EmbedLLM.Model != cfg.Index.EmbeddingModel {
		t.Fatalf("embed model should follow the index embedding model, got %s", cfg.EmbedLLM.Model)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	t.Setenv("VECTOR_INDEX_API_KEY", "")
	path := writeConfig(t, `
index:
  backend: chromem
  name: research
rag:
  chunk_size: 500
  top_k: 5
llm:
  provider: ollama
  model: mistral
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Index.Name != "research" {
		t.Fatalf("override lost: %s", cfg.Index.Name)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.TopK != 5 {
		t.Fatalf("rag overrides lost: %d/%d", cfg.RAG.ChunkSize, cfg.RAG.TopK)
	}
	if cfg.LLM.Model != "mistral" {
		t.Fatalf("llm override lost: %s", cfg.LLM.Model)
	}
	// Untouched fields still get defaults.
	if cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("default not applied alongside overrides: %d", cfg.RAG.ChunkOverlap)
	}
}

func TestRemoteBackendRequiresCredentials(t *testing.T) {
	t.Setenv("VECTOR_INDEX_API_KEY", "")
	path := writeConfig(t, `
index:
  backend: remote
  base_url: https://indexes.example.com
`)

	_, err := LoadConfig(path)
	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if mfe.Field != "index.api_key" {
		t.Fatalf("unexpected missing field: %s", mfe.Field)
	}
}

func TestAPIKeyFallsBackToEnvironment(t *testing.T) {
	t.Setenv("VECTOR_INDEX_API_KEY", "env-secret")
	path := writeConfig(t, `
index:
  backend: remote
  base_url: https://indexes.example.com
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Index.APIKey != "env-secret" {
		t.Fatalf("expected api key from environment, got %q", cfg.Index.APIKey)
	}
}

func TestPostgresBackendRequiresDSN(t *testing.T) {
	path := writeConfig(t, `
index:
  backend: postgres
`)

	_, err := LoadConfig(path)
	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if mfe.Field != "database.dsn" {
		t.Fatalf("unexpected missing field: %s", mfe.Field)
	}
}

func TestOpenAIProviderRequiresKey(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: openai
  model: gpt-4o-mini
`)

	_, err := LoadConfig(path)
	var mfe *MissingFieldError
	if !errors.As(err, &mfe) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if mfe.Field != "llm.key" {
		t.Fatalf("unexpected missing field: %s", mfe.Field)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
