package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"profadvisor/internal/rag"
)

// Answerer runs the retrieval-augmented query pipeline.
type Answerer interface {
	Answer(ctx context.Context, turns []rag.Turn) (rag.Stream, error)
}

// ChatExtractor pulls structured reviews out of free-form chat text.
type ChatExtractor interface {
	FromChat(ctx context.Context, text string) ([]rag.Review, error)
}

// Ingestor embeds and upserts extracted reviews.
type Ingestor interface {
	Ingest(ctx context.Context, reviews []rag.Review) (int, error)
}

// ChatHandler serves POST /api/chat: the conversation comes in as a JSON
// array of turns, the answer goes out as a raw streamed text body.
type ChatHandler struct {
	Answerer  Answerer
	Extractor ChatExtractor
	Ingestor  Ingestor
	Logger    *log.Logger
}

func (h *ChatHandler) logger() *log.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return log.Default()
}

func (h *ChatHandler) Handle(c echo.Context) error {
	var turns []rag.Turn
	if err := c.Bind(&turns); err != nil {
		chatRequests.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "request body must be a JSON array of messages")
	}
	if len(turns) == 0 {
		chatRequests.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "conversation must not be empty")
	}

	ctx := c.Request().Context()

	// Opportunistic ingestion: if the latest user message contains a review,
	// store it. Failures here never block the answer.
	h.ingestFromChat(ctx, turns)

	stream, err := h.Answerer.Answer(ctx, turns)
	if err != nil {
		chatRequests.WithLabelValues("error").Inc()
		return toHTTPError(err)
	}
	defer stream.Close()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
	resp.WriteHeader(http.StatusOK)

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Headers are already out; abort the connection so the client
			// sees a truncated body instead of a clean end.
			h.logger().Printf("chat stream aborted: %v", err)
			chatRequests.WithLabelValues("stream_error").Inc()
			panic(http.ErrAbortHandler)
		}
		if _, err := resp.Write([]byte(chunk)); err != nil {
			chatRequests.WithLabelValues("client_gone").Inc()
			return nil
		}
		resp.Flush()
		streamChunks.Inc()
	}
	chatRequests.WithLabelValues("ok").Inc()
	return nil
}

func (h *ChatHandler) ingestFromChat(ctx context.Context, turns []rag.Turn) {
	last := turns[len(turns)-1]
	if last.Role != rag.RoleUser {
		return
	}
	reviews, err := h.Extractor.FromChat(ctx, last.Content)
	if err != nil {
		h.logger().Printf("chat extraction skipped: %v", err)
		ingestFailures.WithLabelValues("chat").Inc()
		return
	}
	if len(reviews) == 0 {
		return
	}
	count, err := h.Ingestor.Ingest(ctx, reviews)
	if err != nil {
		h.logger().Printf("chat ingestion failed: %v", err)
		ingestFailures.WithLabelValues("chat").Inc()
		return
	}
	reviewsIngested.WithLabelValues("chat").Add(float64(count))
}

// toHTTPError maps pipeline failures onto status codes: caller mistakes are
// 400s, upstream provider and store failures are 502s.
func toHTTPError(err error) error {
	if errors.Is(err, rag.ErrEmptyConversation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var (
		embErr   rag.EmbeddingError
		storeErr rag.VectorStoreError
		compErr  rag.CompletionError
	)
	if errors.As(err, &embErr) || errors.As(err, &storeErr) || errors.As(err, &compErr) {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return err
}
