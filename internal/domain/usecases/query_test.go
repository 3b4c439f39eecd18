package usecases

import (
	"context"
	"strings"
	"testing"

	"github.com/drassist/deepresearch-go/internal/adapters/docstore"
	"github.com/drassist/deepresearch-go/internal/adapters/embedding"
	"github.com/drassist/deepresearch-go/internal/adapters/summarizer"
	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
	"github.com/drassist/deepresearch-go/internal/domain/reasoning"
	"github.com/drassist/deepresearch-go/internal/domain/refine"
)

// testPipeline wires real adapters into the query pipeline.
type testPipeline struct {
	embedder *embedding.HashingEmbedder
	store    ports.DocumentStore
	refiner  *refine.Refiner
	counters *Counters
	queryUC  *QueryUseCase
	ingestUC *IngestUseCase
}

func newTestPipeline(t *testing.T) *testPipeline {
	t.Helper()
	embedder := embedding.NewHashingEmbedder(512)
	store := docstore.NewMemoryStore()
	counters := NewCounters()
	refiner := refine.NewRefiner()
	queryUC := NewQueryUseCase(
		embedder, store, summarizer.NewFrequencySummarizer(),
		reasoning.NewEngine(), refiner, counters, 5, 0, 5,
	)
	ingestUC := NewIngestUseCase(embedder, store, nil, counters)
	return &testPipeline{
		embedder: embedder,
		store:    store,
		refiner:  refiner,
		counters: counters,
		queryUC:  queryUC,
		ingestUC: ingestUC,
	}
}

func (p *testPipeline) mustIngest(t *testing.T, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if _, err := p.ingestUC.IngestText(context.Background(), text, nil); err != nil {
			t.Fatalf("ingest failed: %v", err)
		}
	}
}

func TestQuery_EmptyQueryRejected(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t, "Some document content here.")

	_, err := p.queryUC.Query(context.Background(), QueryRequest{Query: "   "})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestQuery_EmptyStoreRejected(t *testing.T) {
	p := newTestPipeline(t)

	_, err := p.queryUC.Query(context.Background(), QueryRequest{Query: "anything"})
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestQuery_CounterIncrementsOncePerCall(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t, "Solar panels convert sunlight into electricity.")

	p.queryUC.Query(context.Background(), QueryRequest{Query: ""})
	p.queryUC.Query(context.Background(), QueryRequest{Query: "solar energy"})

	queries, _, _ := p.counters.Snapshot()
	if queries != 2 {
		t.Errorf("expected 2 queries counted (failures included), got %d", queries)
	}
}

func TestQuery_AnswerReferencesRelevantDocument(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t,
		"Solar panels convert sunlight into electricity.",
		"Bread is baked from flour, water and yeast.",
	)

	result, err := p.queryUC.Query(context.Background(), QueryRequest{Query: "How does solar power work?"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if result.Answer == "" {
		t.Fatal("expected a non-empty answer")
	}
	if len(result.RetrievedDocuments) == 0 {
		t.Fatal("expected retrieved documents")
	}
	if !strings.Contains(result.RetrievedDocuments[0].Content, "Solar panels") {
		t.Errorf("expected the solar document ranked first, got %q", result.RetrievedDocuments[0].Content)
	}
	if !strings.Contains(result.Answer, "Solar panels convert sunlight into electricity.") {
		t.Errorf("answer should quote the top passage, got %q", result.Answer)
	}
	if result.ConfidenceScore <= 0 || result.ConfidenceScore > 1 {
		t.Errorf("confidence out of range: %f", result.ConfidenceScore)
	}
	if len(result.ReasoningSteps) == 0 {
		t.Error("expected reasoning steps")
	}
}

func TestQuery_RefinementRecordsMetadata(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t, "Solar panels convert sunlight into electricity.")

	result, err := p.queryUC.Query(context.Background(), QueryRequest{
		Query:            "solar",
		EnableRefinement: true,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if result.Metadata["refined_query"] == "" {
		t.Error("expected refined_query metadata for a vague query")
	}
	if result.Metadata["refinement_session"] == "" {
		t.Error("expected refinement_session metadata")
	}
	if p.refiner.ActiveSessions() != 1 {
		t.Errorf("expected 1 refinement session, got %d", p.refiner.ActiveSessions())
	}
}

func TestQuery_RefinementDisabled(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t, "Solar panels convert sunlight into electricity.")

	result, err := p.queryUC.Query(context.Background(), QueryRequest{Query: "solar"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if _, ok := result.Metadata["refined_query"]; ok {
		t.Error("refinement metadata should be absent when the flag is off")
	}
	if p.refiner.ActiveSessions() != 0 {
		t.Errorf("no session should be recorded, got %d", p.refiner.ActiveSessions())
	}
}

func TestQuery_SummarizationPath(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t,
		"Solar panels convert sunlight into electricity. Solar output depends on irradiance.",
		"Solar installations grew rapidly last decade. Storage smooths solar supply.",
	)

	result, err := p.queryUC.Query(context.Background(), QueryRequest{
		Query:               "How does solar power generation work?",
		EnableSummarization: true,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if !strings.Contains(result.Answer, "Condensed from") {
		t.Errorf("summarized answer should note the condensation, got %q", result.Answer)
	}
	if result.Metadata["summarized"] != "true" {
		t.Error("expected summarized metadata flag")
	}
}

func TestQuery_QueryEchoedInResult(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t, "Solar panels convert sunlight into electricity.")

	result, err := p.queryUC.Query(context.Background(), QueryRequest{
		Query:            "solar",
		EnableRefinement: true,
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	// The result carries the query the user asked, not the refined one.
	if result.Query != "solar" {
		t.Errorf("expected original query echoed, got %q", result.Query)
	}
}

func TestRetrieve_HonorsTopK(t *testing.T) {
	p := newTestPipeline(t)
	for i := 0; i < 8; i++ {
		p.mustIngest(t, "Solar energy document number with solar content.")
	}

	docs, err := p.queryUC.Retrieve(context.Background(), "solar energy")
	if err != nil {
		t.Fatalf("retrieve failed: %v", err)
	}
	if len(docs) > p.queryUC.TopK() {
		t.Errorf("retrieved %d documents, cap is %d", len(docs), p.queryUC.TopK())
	}
}
