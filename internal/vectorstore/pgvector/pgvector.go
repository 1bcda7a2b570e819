// Package pgvector backs the vector store with Postgres + pgvector, as an
// alternative to the hosted Pinecone index.
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"

	"profadvisor/internal/vectorstore"
)

// DefaultDimensions is the vector(n) column width created by the migrations.
// It matches the 1536-dimensional output of the default embedding model.
const DefaultDimensions = 1536

// Store implements vectorstore.Store on a review_embeddings table, using
// cosine distance ordering. Score is reported as 1 - distance.
type Store struct {
	DB *sql.DB
}

// New opens a connection pool against the DSN and verifies connectivity.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Upsert writes the batch in one transaction; on conflict of (id, namespace)
// the embedding and metadata are replaced.
func (s *Store) Upsert(ctx context.Context, namespace string, records []vectorstore.Record) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO review_embeddings (id, namespace, embedding, metadata, created_at)
VALUES ($1,$2,$3::vector,$4,NOW())
ON CONFLICT (id, namespace) DO UPDATE SET
  embedding = EXCLUDED.embedding,
  metadata = EXCLUDED.metadata,
  created_at = NOW();
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.ID == "" {
			err = fmt.Errorf("record id required")
			return err
		}
		var literal string
		literal, err = encodeVectorLiteral(rec.Values)
		if err != nil {
			return err
		}
		var metaBytes []byte
		metaBytes, err = json.Marshal(rec.Metadata)
		if err != nil {
			err = fmt.Errorf("marshal metadata: %w", err)
			return err
		}
		if _, err = stmt.ExecContext(ctx, rec.ID, namespace, literal, metaBytes); err != nil {
			return err
		}
	}
	return nil
}

// Query returns the closest records within the namespace, ordered by cosine
// distance ascending.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]vectorstore.Match, error) {
	if len(vector) == 0 {
		return nil, errors.New("query vector must not be empty")
	}
	if topK <= 0 {
		topK = 3
	}
	literal, err := encodeVectorLiteral(vector)
	if err != nil {
		return nil, err
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, metadata, embedding <=> $1::vector AS distance
FROM review_embeddings
WHERE namespace = $2
ORDER BY embedding <=> $1::vector
LIMIT $3
`, literal, namespace, topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []vectorstore.Match
	for rows.Next() {
		var (
			m         vectorstore.Match
			distance  float64
			metaBytes []byte
		)
		if err := rows.Scan(&m.ID, &metaBytes, &distance); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(metaBytes, &m.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for %s: %w", m.ID, err)
		}
		m.Score = 1 - distance
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// encodeVectorLiteral renders a float32 slice as a pgvector input literal.
func encodeVectorLiteral(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", errors.New("embedding vector required")
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}
