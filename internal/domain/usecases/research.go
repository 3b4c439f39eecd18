package usecases

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
	"github.com/drassist/deepresearch-go/internal/domain/reasoning"
)

// maxLocalResults caps the merged evidence set of a deep-research pass.
const maxLocalResults = 10

// ResearchUseCase performs deep research: an explicitly user-triggered
// re-retrieval restricted to the local knowledge base. It expands the
// query into variants, merges the evidence, and builds an enhanced
// answer with its own reasoning trace. The original QueryResult is
// never mutated.
type ResearchUseCase struct {
	query      *QueryUseCase
	store      ports.DocumentStore
	summarizer ports.Summarizer
	reasoner   *reasoning.Engine
}

// NewResearchUseCase creates a ResearchUseCase.
func NewResearchUseCase(
	query *QueryUseCase,
	store ports.DocumentStore,
	summarizer ports.Summarizer,
	reasoner *reasoning.Engine,
) *ResearchUseCase {
	return &ResearchUseCase{
		query:      query,
		store:      store,
		summarizer: summarizer,
		reasoner:   reasoner,
	}
}

// Research runs the deep-research pass for a query. The prior result
// is read-only input; only its answer is used as context for the
// research summary.
func (uc *ResearchUseCase) Research(ctx context.Context, query string, original *entities.QueryResult) (*entities.DeepResearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.Validation("query is required")
	}

	count, err := uc.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if count == 0 {
		return nil, apperrors.NotFound("no documents in the knowledge base")
	}

	variants := uc.expandQuery(query)

	// Merge retrievals across variants, keeping the best score per document.
	best := make(map[string]entities.RetrievedDocument)
	for _, variant := range variants {
		docs, err := uc.query.Retrieve(ctx, variant)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			if existing, ok := best[doc.ID]; !ok || doc.SimilarityScore > existing.SimilarityScore {
				best[doc.ID] = doc
			}
		}
	}

	merged := make([]entities.RetrievedDocument, 0, len(best))
	for _, doc := range best {
		merged = append(merged, doc)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].SimilarityScore != merged[j].SimilarityScore {
			return merged[i].SimilarityScore > merged[j].SimilarityScore
		}
		return merged[i].ID < merged[j].ID
	})
	if len(merged) > maxLocalResults {
		merged = merged[:maxLocalResults]
	}

	trace := uc.reasoner.Execute(query, merged)

	enhanced, err := uc.enhancedAnswer(query, merged, trace.Facts)
	if err != nil {
		return nil, apperrors.Processing(err, "building enhanced answer")
	}

	summary := uc.researchSummary(query, merged, variants, original)

	log.Printf("[INFO] Deep research merged %d documents from %d query variants", len(merged), len(variants))

	return &entities.DeepResearchResult{
		Query:           query,
		LocalResults:    merged,
		EnhancedAnswer:  enhanced,
		ResearchSummary: summary,
		ReasoningSteps:  trace.Steps,
		Timestamp:       time.Now(),
	}, nil
}

// expandQuery produces deterministic variants of the query to widen
// local recall: the original, the bare key concepts, and angle-specific
// rephrasings.
func (uc *ResearchUseCase) expandQuery(query string) []string {
	trimmed := strings.TrimRight(strings.TrimSpace(query), "?!. ")
	variants := []string{trimmed}

	concepts := uc.reasoner.KeyConcepts(query)
	if len(concepts) > 0 {
		variants = append(variants, strings.Join(concepts, " "))
	}

	variants = append(variants,
		trimmed+" overview",
		trimmed+" examples",
		trimmed+" detailed analysis",
	)

	// Dedupe while preserving order.
	seen := make(map[string]struct{}, len(variants))
	out := variants[:0]
	for _, v := range variants {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// enhancedAnswer condenses the merged evidence into an answer that
// cites the breadth of local sources consulted.
func (uc *ResearchUseCase) enhancedAnswer(query string, docs []entities.RetrievedDocument, facts []string) (string, error) {
	if len(docs) == 0 {
		return "Deep research found no additional relevant material in the local knowledge base.", nil
	}

	source := strings.Join(facts, " ")
	if source == "" {
		var sb strings.Builder
		for _, doc := range docs {
			sb.WriteString(doc.Content)
			sb.WriteString(" ")
		}
		source = sb.String()
	}

	condensed, err := uc.summarizer.Summarize(source, 6)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on comprehensive analysis of %d local knowledge sources:\n\n", len(docs))
	sb.WriteString(condensed)
	sb.WriteString("\n\nThis deep research pass covers the full local knowledge base for the query without relying on external sources.")
	return sb.String(), nil
}

// researchSummary describes what the pass did and how it relates to
// the original answer.
func (uc *ResearchUseCase) researchSummary(query string, docs []entities.RetrievedDocument, variants []string, original *entities.QueryResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deep research for %q examined %d query variants and gathered %d local documents.", query, len(variants), len(docs))
	if len(docs) > 0 {
		fmt.Fprintf(&sb, " Top relevance %.3f.", docs[0].SimilarityScore)
	}
	if original != nil && original.Answer != "" {
		fmt.Fprintf(&sb, " The initial answer drew on %d documents; this pass broadens that evidence.", len(original.RetrievedDocuments))
	}
	return sb.String()
}
