package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PINECONE_API_KEY", "pc-test")
	t.Setenv("PINECONE_INDEX_HOST", "https://rag-test.svc.pinecone.io")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"address":":9090"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Fatalf("file value not applied, got %q", cfg.Server.Address)
	}
	if cfg.Vector.Backend != "pinecone" || cfg.Vector.Index != "rag" || cfg.Vector.Namespace != "ns1" || cfg.Vector.TopK != 3 {
		t.Fatalf("vector defaults not applied: %+v", cfg.Vector)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("env override not applied, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Vector.Pinecone.APIKey != "pc-test" || cfg.Vector.Pinecone.Host != "https://rag-test.svc.pinecone.io" {
		t.Fatalf("pinecone env overrides not applied: %+v", cfg.Vector.Pinecone)
	}
	if cfg.OpenAI.CompletionModel != "gpt-4o-mini" {
		t.Fatalf("model default not applied, got %q", cfg.OpenAI.CompletionModel)
	}
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"vector":{"backend":"weaviate"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "localhost", Port: "5432", User: "u", Password: "p", DBName: "profadvisor"}
	want := "postgres://u:p@localhost:5432/profadvisor?sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	p.URL = "postgres://other"
	if got := p.DSN(); got != "postgres://other" {
		t.Fatalf("url must take precedence, got %q", got)
	}
}
