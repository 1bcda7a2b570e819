package rag

import "context"

// Conversation roles, matching the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation. A conversation is an ordered
// slice of turns; the pipeline only ever appends to it.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Review is a structured professor review, produced either by the LLM
// extractor from free-form chat text or by the page scraper.
type Review struct {
	Professor string  `json:"professor"`
	Subject   string  `json:"subject"`
	Stars     float64 `json:"stars"`
	Review    string  `json:"review"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// Stream delivers completion text incrementally, in generation order.
// Recv returns io.EOF after the final chunk; any other error means the stream
// terminated abnormally and the partial output must not be treated as a
// complete answer. Streams are not restartable.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Embedder converts texts into fixed-dimension vectors. The vector dimension
// is fixed by the configured embedding model and must match the target index.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates chat completions, buffered or streamed.
type Completer interface {
	Complete(ctx context.Context, system string, turns []Turn) (string, error)
	CompleteStream(ctx context.Context, system string, turns []Turn) (Stream, error)
}
