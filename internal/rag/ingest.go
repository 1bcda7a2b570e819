package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"profadvisor/internal/vectorstore"
)

// IDMode selects how record ids are derived from a review's professor name.
type IDMode int

const (
	// IDStable keys records by the professor name alone, so re-ingesting the
	// same professor replaces the previous record.
	IDStable IDMode = iota
	// IDRandomSuffix appends a random token to the professor name, so
	// multiple reviews of the same professor accumulate as separate records.
	IDRandomSuffix
)

// Ingestor embeds structured reviews and upserts them into the vector index
// as a single batch.
type Ingestor struct {
	embedder  Embedder
	store     vectorstore.Store
	namespace string
	mode      IDMode
	logger    *log.Logger
}

// NewIngestor builds an ingestion pipeline writing to the given namespace.
func NewIngestor(embedder Embedder, store vectorstore.Store, namespace string, mode IDMode, logger *log.Logger) *Ingestor {
	if logger == nil {
		logger = log.New(log.Writer(), "[INGEST] ", log.LstdFlags)
	}
	return &Ingestor{
		embedder:  embedder,
		store:     store,
		namespace: namespace,
		mode:      mode,
		logger:    logger,
	}
}

// Ingest embeds each review's text and upserts the whole batch at once. An
// empty input is a no-op returning 0. Any embedding or store failure aborts
// the entire batch; partial success is never reported.
func (ing *Ingestor) Ingest(ctx context.Context, reviews []Review) (int, error) {
	if len(reviews) == 0 {
		return 0, nil
	}

	texts := make([]string, len(reviews))
	for i, r := range reviews {
		// Record ids are derived from the professor name; a blank name would
		// produce an empty (or suffix-only) id, which the backends disagree
		// on. Reject it before spending an embedding call.
		if strings.TrimSpace(r.Professor) == "" {
			return 0, IngestionError{Err: fmt.Errorf("review %d has no professor name", i)}
		}
		texts[i] = r.Review
	}
	vectors, err := ing.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, IngestionError{Err: EmbeddingError{Err: err}}
	}
	if len(vectors) != len(reviews) {
		return 0, IngestionError{Err: fmt.Errorf("expected %d vectors, got %d", len(reviews), len(vectors))}
	}

	records := make([]vectorstore.Record, len(reviews))
	for i, r := range reviews {
		records[i] = vectorstore.Record{
			ID:     ing.recordID(r),
			Values: vectors[i],
			Metadata: vectorstore.Metadata{
				Subject:   r.Subject,
				Stars:     r.Stars,
				Review:    r.Review,
				Sentiment: r.Sentiment,
			},
		}
	}

	if err := ing.store.Upsert(ctx, ing.namespace, records); err != nil {
		return 0, IngestionError{Err: VectorStoreError{Op: "upsert", Err: err}}
	}
	ing.logger.Printf("upserted %d review(s) into namespace %q", len(records), ing.namespace)
	return len(records), nil
}

func (ing *Ingestor) recordID(r Review) string {
	name := strings.TrimSpace(r.Professor)
	if ing.mode == IDRandomSuffix {
		return name + "-" + uuid.NewString()[:8]
	}
	return name
}
