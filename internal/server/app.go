package server

import (
	"context"
	"fmt"
	"log"

	"profadvisor/config"
	"profadvisor/internal/extract"
	"profadvisor/internal/provider"
	"profadvisor/internal/rag"
	"profadvisor/internal/scraper"
	"profadvisor/internal/vectorstore"
	"profadvisor/internal/vectorstore/pgvector"
	"profadvisor/internal/vectorstore/pinecone"
)

// App wires the provider, vector store and pipelines together. The same
// instance backs the HTTP handlers and the CLI ingest command.
type App struct {
	Querier      *rag.Querier
	Extractor    *extract.Extractor
	Scraper      *scraper.Scraper
	chatIngestor *rag.Ingestor
	linkIngestor *rag.Ingestor
	logger       *log.Logger
}

// NewApp builds the dependency graph from config. The chat path uses stable
// record ids so repeated mentions of the same professor replace the previous
// vector; the link path appends a random suffix so every scraped review
// becomes its own record.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := log.New(log.Writer(), "[APP] ", log.LstdFlags)

	client, err := provider.New(provider.Config{
		APIKey:          cfg.OpenAI.APIKey,
		CompletionModel: cfg.OpenAI.CompletionModel,
		EmbeddingModel:  cfg.OpenAI.EmbeddingModel,
		Temperature:     cfg.OpenAI.Temperature,
		MaxTokens:       cfg.OpenAI.MaxTokens,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("init provider: %w", err)
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	namespace := cfg.Vector.Namespace
	return &App{
		Querier:      rag.NewQuerier(client, store, client, namespace, cfg.Vector.TopK, nil),
		Extractor:    extract.New(client, nil),
		Scraper:      scraper.New(scraper.ChromeFetcher{Timeout: cfg.Scraper.Timeout, UserAgent: cfg.Scraper.UserAgent}, cfg.Scraper.MaxReviews, nil),
		chatIngestor: rag.NewIngestor(client, store, namespace, rag.IDStable, nil),
		linkIngestor: rag.NewIngestor(client, store, namespace, rag.IDRandomSuffix, nil),
		logger:       logger,
	}, nil
}

func newStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Vector.Backend {
	case "pinecone":
		return pinecone.New(pinecone.Config{
			Host:    cfg.Vector.Pinecone.Host,
			APIKey:  cfg.Vector.Pinecone.APIKey,
			Timeout: cfg.Vector.Pinecone.Timeout,
		})
	case "pgvector":
		dsn := cfg.Vector.Postgres.DSN()
		if err := pgvector.Migrate("file://migrations", dsn, "up", 0); err != nil {
			// Schema may already be managed externally; connection errors
			// surface on New below.
			log.Printf("[APP] migrations skipped: %v", err)
		}
		return pgvector.New(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
}

// IngestLink scrapes a professor page, enriches the reviews with sentiment
// and upserts them. Returns the number of reviews ingested.
func (a *App) IngestLink(ctx context.Context, link string) (int, error) {
	page, err := a.Scraper.Scrape(ctx, link)
	if err != nil {
		ingestFailures.WithLabelValues("link").Inc()
		return 0, err
	}
	reviews := a.Extractor.FromPage(ctx, page)
	count, err := a.linkIngestor.Ingest(ctx, reviews)
	if err != nil {
		ingestFailures.WithLabelValues("link").Inc()
		return 0, err
	}
	a.logger.Printf("ingested %d reviews for %s", count, page.Name)
	reviewsIngested.WithLabelValues("link").Add(float64(count))
	return count, nil
}
