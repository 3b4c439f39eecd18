package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
	"github.com/drassist/deepresearch-go/internal/domain/reasoning"
	"github.com/drassist/deepresearch-go/internal/domain/refine"
)

// QueryRequest carries a query and its feature flags.
type QueryRequest struct {
	Query               string `json:"query"`
	EnableRefinement    bool   `json:"enable_refinement"`
	EnableSummarization bool   `json:"enable_summarization"`
}

// QueryUseCase handles retrieval and answer synthesis.
type QueryUseCase struct {
	embedder     ports.EmbeddingService
	store        ports.DocumentStore
	summarizer   ports.Summarizer
	reasoner     *reasoning.Engine
	refiner      *refine.Refiner
	counters     *Counters
	topK         int
	minScore     float64
	maxSentences int
}

// NewQueryUseCase creates a QueryUseCase with injected dependencies.
func NewQueryUseCase(
	embedder ports.EmbeddingService,
	store ports.DocumentStore,
	summarizer ports.Summarizer,
	reasoner *reasoning.Engine,
	refiner *refine.Refiner,
	counters *Counters,
	topK int,
	minScore float64,
	maxSentences int,
) *QueryUseCase {
	if topK <= 0 {
		topK = 5
	}
	if maxSentences <= 0 {
		maxSentences = 5
	}
	return &QueryUseCase{
		embedder:     embedder,
		store:        store,
		summarizer:   summarizer,
		reasoner:     reasoner,
		refiner:      refiner,
		counters:     counters,
		topK:         topK,
		minScore:     minScore,
		maxSentences: maxSentences,
	}
}

// Query runs the full pipeline: validate, refine, retrieve, reason,
// synthesize. Increments the process-wide query counter exactly once
// per call, whether or not the query succeeds.
func (uc *QueryUseCase) Query(ctx context.Context, req QueryRequest) (*entities.QueryResult, error) {
	uc.counters.IncQueries()
	start := time.Now()

	if strings.TrimSpace(req.Query) == "" {
		return nil, apperrors.Validation("query is required")
	}

	count, err := uc.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if count == 0 {
		return nil, apperrors.NotFound("no documents in the knowledge base; ingest documents before querying")
	}

	metadata := map[string]string{"processing_mode": "reasoning"}

	searchQuery := req.Query
	if req.EnableRefinement {
		refined, session := uc.refiner.Refine(req.Query)
		if refined != req.Query {
			metadata["refined_query"] = refined
			metadata["refinement_session"] = session.ID
		}
		searchQuery = refined
	}

	docs, err := uc.Retrieve(ctx, searchQuery)
	if err != nil {
		return nil, err
	}

	trace := uc.reasoner.Execute(req.Query, docs)

	answer, err := uc.synthesizeAnswer(req.Query, docs, trace.Facts, req.EnableSummarization)
	if err != nil {
		return nil, apperrors.Processing(err, "synthesizing answer")
	}
	if req.EnableSummarization {
		metadata["summarized"] = "true"
	}

	result := &entities.QueryResult{
		Query:              req.Query,
		Answer:             answer,
		ConfidenceScore:    trace.Confidence,
		ReasoningSteps:     trace.Steps,
		RetrievedDocuments: docs,
		ExecutionTime:      time.Since(start).Seconds(),
		Metadata:           metadata,
		Timestamp:          time.Now(),
	}

	log.Printf("[INFO] Query answered with %d documents in %.3fs", len(docs), result.ExecutionTime)
	return result, nil
}

// Retrieve embeds the query and searches the store. Exposed for the
// deep-research usecase, which issues multiple retrievals per call.
func (uc *QueryUseCase) Retrieve(ctx context.Context, query string) ([]entities.RetrievedDocument, error) {
	embedding, err := uc.embedder.Embed(ctx, query)
	if err != nil {
		return nil, apperrors.Processing(err, "embedding query")
	}
	docs, err := uc.store.Search(ctx, embedding, uc.topK, uc.minScore)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	return docs, nil
}

// synthesizeAnswer builds the answer text from retrieved evidence.
// Without summarization the top passage is quoted; with it the answer
// is condensed across all retrieved passages.
func (uc *QueryUseCase) synthesizeAnswer(query string, docs []entities.RetrievedDocument, facts []string, summarize bool) (string, error) {
	if len(docs) == 0 {
		return "No relevant documents were found to answer this query.", nil
	}

	if summarize {
		var combined strings.Builder
		if len(facts) > 0 {
			combined.WriteString(strings.Join(facts, " "))
		} else {
			for _, doc := range docs {
				combined.WriteString(doc.Content)
				combined.WriteString(" ")
			}
		}
		summary, err := uc.summarizer.Summarize(combined.String(), uc.maxSentences)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s\n\n(Condensed from %d relevant documents.)", summary, len(docs)), nil
	}

	top := docs[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the most relevant document (similarity %.3f):\n\n", top.SimilarityScore)
	sb.WriteString(top.Content)
	if len(docs) > 1 {
		fmt.Fprintf(&sb, "\n\nFound %d relevant documents in total.", len(docs))
	}
	return sb.String(), nil
}

// TopK returns the configured retrieval cap.
func (uc *QueryUseCase) TopK() int { return uc.topK }
