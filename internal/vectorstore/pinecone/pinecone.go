// Package pinecone is a minimal REST client for a single Pinecone index.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"profadvisor/internal/vectorstore"
)

// Config holds the connection settings for one index.
type Config struct {
	// Host is the index host URL, e.g. https://rag-xxxx.svc.us-east-1.pinecone.io.
	Host    string
	APIKey  string
	Timeout time.Duration
}

// Store talks to the Pinecone data-plane API for a single index. Namespacing
// is passed per call; similarity ranking and upsert atomicity are whatever
// the service provides.
type Store struct {
	host   string
	apiKey string
	client *http.Client
}

// New builds a Store. The caller is responsible for supplying a host that
// points at an index whose dimension matches the embedding model.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, errors.New("pinecone index host is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("pinecone api key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Store{
		host:   strings.TrimRight(cfg.Host, "/"),
		apiKey: cfg.APIKey,
		client: &http.Client{Timeout: timeout},
	}, nil
}

type upsertRequest struct {
	Vectors   []vectorstore.Record `json:"vectors"`
	Namespace string               `json:"namespace,omitempty"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

// Upsert inserts or replaces the records by id within the namespace.
func (s *Store) Upsert(ctx context.Context, namespace string, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	var resp upsertResponse
	if err := s.postJSON(ctx, "/vectors/upsert", upsertRequest{Vectors: records, Namespace: namespace}, &resp); err != nil {
		return err
	}
	if resp.UpsertedCount != len(records) {
		return fmt.Errorf("upserted %d of %d vectors", resp.UpsertedCount, len(records))
	}
	return nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []vectorstore.Match `json:"matches"`
}

// Query returns up to topK matches in the order Pinecone ranks them.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]vectorstore.Match, error) {
	if len(vector) == 0 {
		return nil, errors.New("query vector must not be empty")
	}
	if topK <= 0 {
		topK = 3
	}
	var resp queryResponse
	req := queryRequest{Vector: vector, TopK: topK, Namespace: namespace, IncludeMetadata: true}
	if err := s.postJSON(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}
	return resp.Matches, nil
}

func (s *Store) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pinecone POST %s: %s", path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
