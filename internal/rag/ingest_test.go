package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIngestEmptyIsNoOp(t *testing.T) {
	emb := &embedderStub{}
	st := &storeStub{}
	ing := NewIngestor(emb, st, "ns1", IDStable, nil)

	count, err := ing.Ingest(context.Background(), nil)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
	if emb.gotTexts != nil || st.upserted != nil {
		t.Fatalf("no calls expected for empty input")
	}
}

func TestIngestSingleBatchUpsert(t *testing.T) {
	emb := &embedderStub{vectors: [][]float32{{0.1}, {0.2}}}
	st := &storeStub{}
	ing := NewIngestor(emb, st, "ns1", IDStable, nil)

	reviews := []Review{
		{Professor: "Martin King", Subject: "Economics", Stars: 4, Review: "clear lectures", Sentiment: "positive"},
		{Professor: "Ada Byron", Subject: "CS", Stars: 5, Review: "inspiring"},
	}
	count, err := ing.Ingest(context.Background(), reviews)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if st.gotNamespace != "ns1" {
		t.Fatalf("expected namespace ns1, got %q", st.gotNamespace)
	}
	if len(st.upserted) != 2 {
		t.Fatalf("expected one batch of 2 records, got %d", len(st.upserted))
	}
	rec := st.upserted[0]
	if rec.ID != "Martin King" {
		t.Fatalf("stable mode must key by professor name, got %q", rec.ID)
	}
	if rec.Metadata.Subject != "Economics" || rec.Metadata.Stars != 4 || rec.Metadata.Review != "clear lectures" || rec.Metadata.Sentiment != "positive" {
		t.Fatalf("unexpected metadata: %#v", rec.Metadata)
	}
	if len(rec.Values) != 1 || rec.Values[0] != 0.1 {
		t.Fatalf("vectors not paired with reviews in order: %#v", rec.Values)
	}
}

func TestIngestEmbeddingFailureAborts(t *testing.T) {
	emb := &embedderStub{err: errors.New("quota")}
	st := &storeStub{}
	ing := NewIngestor(emb, st, "ns1", IDStable, nil)

	_, err := ing.Ingest(context.Background(), []Review{{Professor: "X", Review: "r"}})
	var ingErr IngestionError
	if !errors.As(err, &ingErr) {
		t.Fatalf("expected IngestionError, got %v", err)
	}
	var embErr EmbeddingError
	if !errors.As(err, &embErr) {
		t.Fatalf("IngestionError must wrap EmbeddingError, got %v", err)
	}
	if st.upserted != nil {
		t.Fatalf("nothing may be upserted after an embedding failure")
	}
}

func TestIngestBlankProfessorNameAborts(t *testing.T) {
	for _, mode := range []IDMode{IDStable, IDRandomSuffix} {
		emb := &embedderStub{vectors: [][]float32{{0.1}, {0.2}}}
		st := &storeStub{}
		ing := NewIngestor(emb, st, "ns1", mode, nil)

		reviews := []Review{
			{Professor: "Ada Byron", Review: "fine"},
			{Professor: "   ", Review: "orphaned"},
		}
		_, err := ing.Ingest(context.Background(), reviews)
		var ingErr IngestionError
		if !errors.As(err, &ingErr) {
			t.Fatalf("mode %v: expected IngestionError for blank professor name, got %v", mode, err)
		}
		if emb.gotTexts != nil {
			t.Fatalf("mode %v: no embedding call expected for an invalid batch", mode)
		}
		if st.upserted != nil {
			t.Fatalf("mode %v: nothing may be upserted for an invalid batch", mode)
		}
	}
}

func TestIngestVectorCountMismatch(t *testing.T) {
	emb := &embedderStub{vectors: [][]float32{{0.1}}}
	ing := NewIngestor(emb, &storeStub{}, "ns1", IDStable, nil)

	reviews := []Review{
		{Professor: "A", Review: "one"},
		{Professor: "B", Review: "two"},
	}
	if _, err := ing.Ingest(context.Background(), reviews); err == nil {
		t.Fatalf("expected error on vector count mismatch")
	}
}

func TestIngestRandomSuffixIDs(t *testing.T) {
	emb := &embedderStub{vectors: [][]float32{{0.1}, {0.2}}}
	st := &storeStub{}
	ing := NewIngestor(emb, st, "ns1", IDRandomSuffix, nil)

	reviews := []Review{
		{Professor: "Jane Doe", Review: "first"},
		{Professor: "Jane Doe", Review: "second"},
	}
	if _, err := ing.Ingest(context.Background(), reviews); err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	a, b := st.upserted[0].ID, st.upserted[1].ID
	if !strings.HasPrefix(a, "Jane Doe-") || !strings.HasPrefix(b, "Jane Doe-") {
		t.Fatalf("suffix mode must keep the professor name prefix: %q %q", a, b)
	}
	if a == b {
		t.Fatalf("suffix mode must produce distinct ids, got %q twice", a)
	}
}
