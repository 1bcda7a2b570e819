package rag

import (
	"errors"
	"fmt"
)

// ErrEmptyConversation is returned when a query carries no usable user turn.
var ErrEmptyConversation = errors.New("conversation must contain at least one non-empty turn")

// EmbeddingError wraps a failed embedding-provider call.
type EmbeddingError struct {
	Err error
}

func (e EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }
func (e EmbeddingError) Unwrap() error { return e.Err }

// VectorStoreError wraps a failed vector-index query or upsert.
type VectorStoreError struct {
	Op  string // "query" or "upsert"
	Err error
}

func (e VectorStoreError) Error() string { return fmt.Sprintf("vector store %s failed: %v", e.Op, e.Err) }
func (e VectorStoreError) Unwrap() error { return e.Err }

// CompletionError wraps a failed chat-completion call, before or mid-stream.
type CompletionError struct {
	Err error
}

func (e CompletionError) Error() string { return fmt.Sprintf("completion failed: %v", e.Err) }
func (e CompletionError) Unwrap() error { return e.Err }

// ExtractionError indicates that structured review data could not be obtained
// from a model response or a scraped page.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "extraction failed: " + e.Reason
}

func (e ExtractionError) Unwrap() error { return e.Err }

// IngestionError wraps an embedding or store failure during ingestion. When it
// is returned, nothing from the batch has been upserted by this layer.
type IngestionError struct {
	Err error
}

func (e IngestionError) Error() string { return fmt.Sprintf("ingestion failed: %v", e.Err) }
func (e IngestionError) Unwrap() error { return e.Err }
