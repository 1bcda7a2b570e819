package vectorstore

import "context"

// Metadata is the review payload stored alongside each vector.
type Metadata struct {
	Subject   string  `json:"subject"`
	Stars     float64 `json:"stars"`
	Review    string  `json:"review"`
	Sentiment string  `json:"sentiment,omitempty"`
}

// Record is a single (id, vector, metadata) entry persisted in the index.
type Record struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

// Match is one nearest-neighbor hit returned by a query, in store order.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// Store is a similarity index partitioned by namespace. Upsert replaces
// records sharing an id within the namespace; Query returns up to topK
// matches ordered by the store's own similarity ranking, which callers must
// not re-rank. Queries only ever see records upserted to the same namespace.
type Store interface {
	Upsert(ctx context.Context, namespace string, records []Record) error
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]Match, error)
}
