package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"profadvisor/internal/rag"
)

const (
	// DefaultCompletionModel answers queries and runs structured extraction.
	DefaultCompletionModel = "gpt-4o-mini"
	// DefaultEmbeddingModel produces 1536-dimensional vectors.
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

// Config holds the OpenAI client settings.
type Config struct {
	APIKey          string
	CompletionModel string
	EmbeddingModel  string
	Temperature     float64
	MaxTokens       int
}

// Client wraps the OpenAI API for embeddings plus buffered and streamed chat
// completions. It implements rag.Embedder and rag.Completer.
type Client struct {
	api             *openai.Client
	completionModel string
	embeddingModel  openai.EmbeddingModel
	temperature     float32
	maxTokens       int
	logger          *log.Logger
}

// New builds an OpenAI-backed client. The API key is required; model names
// fall back to the defaults above.
func New(cfg Config, logger *log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.CompletionModel == "" {
		cfg.CompletionModel = DefaultCompletionModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[OPENAI] ", log.LstdFlags)
	}
	return &Client{
		api:             openai.NewClient(cfg.APIKey),
		completionModel: cfg.CompletionModel,
		embeddingModel:  openai.EmbeddingModel(cfg.EmbeddingModel),
		temperature:     float32(cfg.Temperature),
		maxTokens:       cfg.MaxTokens,
		logger:          logger,
	}, nil
}

// Embed returns one vector per input text, in input order. An empty input
// returns nil, nil.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

// Complete returns the full answer synchronously.
func (c *Client) Complete(ctx context.Context, system string, turns []rag.Turn) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Messages:    buildMessages(system, turns),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStream starts a streamed completion bound to ctx, so the upstream
// call is canceled when the caller goes away.
func (c *Client) CompleteStream(ctx context.Context, system string, turns []rag.Turn) (rag.Stream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.completionModel,
		Messages:    buildMessages(system, turns),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat completion stream: %w", err)
	}
	return &chatStream{inner: stream}, nil
}

func buildMessages(system string, turns []rag.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	for _, t := range turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return msgs
}

// chatStream adapts the SDK stream to rag.Stream, skipping empty deltas.
type chatStream struct {
	inner *openai.ChatCompletionStream
}

func (s *chatStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", rag.CompletionError{Err: err}
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *chatStream) Close() error {
	return s.inner.Close()
}
