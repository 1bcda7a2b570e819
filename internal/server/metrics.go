package server

import "github.com/prometheus/client_golang/prometheus"

var (
	chatRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profadvisor_chat_requests_total",
		Help: "Chat requests by outcome.",
	}, []string{"outcome"})

	streamChunks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "profadvisor_stream_chunks_total",
		Help: "Answer chunks written to clients.",
	})

	reviewsIngested = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profadvisor_reviews_ingested_total",
		Help: "Reviews upserted into the vector store by source.",
	}, []string{"source"})

	ingestFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "profadvisor_ingest_failures_total",
		Help: "Failed ingestion attempts by source.",
	}, []string{"source"})
)

func init() {
	prometheus.MustRegister(chatRequests, streamChunks, reviewsIngested, ingestFailures)
}
