package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"profadvisor/internal/vectorstore"
)

// DefaultTopK is the number of reviews retrieved per query.
const DefaultTopK = 3

const systemPrompt = `You are an intelligent assistant designed to help students find professors based on their queries using the Retrieval-Augmented Generation (RAG) method. Your task is to provide the top 3 professors who best match the student's criteria or interests.

Query Processing:
Understand the student's query and extract key information such as the subject, course level, teaching style, or any specific attributes they are looking for in a professor.

Information Retrieval:
Use the retrieved data about professors appended to the student's message, drawn from a database of professor reviews, ratings, and profiles.

Response Generation:
Based on the retrieved information, generate a concise and informative response listing the top 3 professors who are the best match for the query.
Provide key details for each professor, such as their name, department, notable attributes, and a brief summary of why they are highly rated or recommended.

Response Format:
Professor 1: [Name], [Department], [Key Attributes/Reviews], [Reason for Recommendation]
Professor 2: [Name], [Department], [Key Attributes/Reviews], [Reason for Recommendation]
Professor 3: [Name], [Department], [Key Attributes/Reviews], [Reason for Recommendation]

If the query is unclear or too broad, ask follow-up questions to better understand the student's needs before providing recommendations.`

// Querier answers a conversation by embedding its latest user turn, retrieving
// the nearest reviews from the vector index and streaming a completion built
// from the augmented conversation.
type Querier struct {
	embedder  Embedder
	store     vectorstore.Store
	completer Completer
	namespace string
	topK      int
	logger    *log.Logger
}

// NewQuerier builds a query pipeline over the given clients. The namespace
// must match the one used for ingestion or retrieval silently returns nothing.
func NewQuerier(embedder Embedder, store vectorstore.Store, completer Completer, namespace string, topK int, logger *log.Logger) *Querier {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[QUERY] ", log.LstdFlags)
	}
	return &Querier{
		embedder:  embedder,
		store:     store,
		completer: completer,
		namespace: namespace,
		topK:      topK,
		logger:    logger,
	}
}

// Answer runs the retrieval-augmented pipeline for the conversation and
// returns the completion stream. Only the last turn's content is embedded;
// prior turns are forwarded to the model unmodified. Any failure before the
// stream starts is returned here; mid-stream failures surface on Recv.
func (q *Querier) Answer(ctx context.Context, turns []Turn) (Stream, error) {
	if len(turns) == 0 {
		return nil, ErrEmptyConversation
	}
	last := turns[len(turns)-1]
	if strings.TrimSpace(last.Content) == "" {
		return nil, ErrEmptyConversation
	}

	vectors, err := q.embedder.Embed(ctx, []string{last.Content})
	if err != nil {
		return nil, EmbeddingError{Err: err}
	}
	if len(vectors) == 0 {
		return nil, EmbeddingError{Err: fmt.Errorf("provider returned no vectors")}
	}

	matches, err := q.store.Query(ctx, q.namespace, vectors[0], q.topK)
	if err != nil {
		return nil, VectorStoreError{Op: "query", Err: err}
	}
	q.logger.Printf("retrieved %d match(es) for query", len(matches))

	augmented := make([]Turn, 0, len(turns))
	augmented = append(augmented, turns[:len(turns)-1]...)
	augmented = append(augmented, Turn{Role: last.Role, Content: last.Content + retrievalContext(matches)})

	stream, err := q.completer.CompleteStream(ctx, systemPrompt, augmented)
	if err != nil {
		return nil, CompletionError{Err: err}
	}
	return stream, nil
}

// retrievalContext formats the matches in store order. The block is appended
// to the last user turn, never substituted for it.
func retrievalContext(matches []vectorstore.Match) string {
	var b strings.Builder
	b.WriteString("\n\nReturned results from vector db (done automatically):")
	for _, m := range matches {
		fmt.Fprintf(&b, "\nProfessor: %s\nSubject: %s\nStars: %v\nReview: %s\n",
			m.ID, m.Metadata.Subject, m.Metadata.Stars, m.Metadata.Review)
	}
	return b.String()
}
