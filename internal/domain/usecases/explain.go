package usecases

import (
	"fmt"
	"strings"

	"github.com/drassist/deepresearch-go/internal/domain/entities"
	"github.com/drassist/deepresearch-go/internal/domain/reasoning"
)

// ExplainUseCase reconstructs a human-readable explanation from a
// prior QueryResult. The result payload comes back from the client,
// so the explanation works from whatever the caller holds rather than
// server-side session state.
type ExplainUseCase struct {
	templates map[string]stepTemplate
}

type stepTemplate struct {
	purpose     string
	methodology string
}

// NewExplainUseCase creates an ExplainUseCase.
func NewExplainUseCase() *ExplainUseCase {
	return &ExplainUseCase{templates: explanationTemplates()}
}

// Explain builds the explanation for a prior result. A result with no
// retrieved documents explains gracefully: empty steps and confidence
// 0.0, not an error.
func (uc *ExplainUseCase) Explain(result *entities.QueryResult) *entities.Explanation {
	if result == nil {
		return &entities.Explanation{Steps: []entities.ReasoningStep{}}
	}

	if len(result.RetrievedDocuments) == 0 {
		return &entities.Explanation{
			OriginalQuery:    result.Query,
			FinalAnswer:      result.Answer,
			ConfidenceScore:  0.0,
			ReasoningSummary: "No documents were retrieved for this query, so no reasoning was performed.",
			Steps:            []entities.ReasoningStep{},
			DocumentCount:    0,
		}
	}

	steps := uc.normalizeSteps(result.ReasoningSteps)

	return &entities.Explanation{
		OriginalQuery:    result.Query,
		FinalAnswer:      result.Answer,
		ConfidenceScore:  clampConfidence(result.ConfidenceScore),
		ReasoningSummary: uc.summarize(result, steps),
		Steps:            steps,
		DocumentCount:    len(result.RetrievedDocuments),
	}
}

// normalizeSteps renumbers steps contiguously from 1 and fills missing
// purpose/description text from the per-type templates.
func (uc *ExplainUseCase) normalizeSteps(steps []entities.ReasoningStep) []entities.ReasoningStep {
	out := make([]entities.ReasoningStep, 0, len(steps))
	for _, step := range steps {
		tmpl, ok := uc.templates[step.StepType]
		if step.Purpose == "" && ok {
			step.Purpose = tmpl.purpose
		}
		if step.Description == "" && ok {
			step.Description = tmpl.methodology
		}
		step.StepNumber = len(out) + 1
		out = append(out, step)
	}
	return out
}

// summarize describes the reasoning trajectory in one paragraph.
func (uc *ExplainUseCase) summarize(result *entities.QueryResult, steps []entities.ReasoningStep) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The query was answered in %d reasoning steps over %d retrieved documents.",
		len(steps), len(result.RetrievedDocuments))

	var types []string
	for _, step := range steps {
		types = append(types, step.StepType)
	}
	if len(types) > 0 {
		fmt.Fprintf(&sb, " The trace proceeded through: %s.", strings.Join(types, ", "))
	}
	fmt.Fprintf(&sb, " Overall confidence in the answer is %.2f.", clampConfidence(result.ConfidenceScore))
	return sb.String()
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func explanationTemplates() map[string]stepTemplate {
	return map[string]stepTemplate{
		reasoning.StepQueryAnalysis: {
			purpose:     "Understand what information is being requested",
			methodology: "Classified the query type and extracted its key concepts",
		},
		reasoning.StepInformationRetrieval: {
			purpose:     "Gather evidence to ground the answer",
			methodology: "Searched the knowledge base and ranked documents by relevance",
		},
		reasoning.StepFactExtraction: {
			purpose:     "Isolate the passages that bear directly on the question",
			methodology: "Selected statements mentioning the query concepts from the evidence",
		},
		reasoning.StepLogicalDeduction: {
			purpose:     "Bridge individual statements into a coherent line of reasoning",
			methodology: "Connected extracted facts to derive intermediate conclusions",
		},
		reasoning.StepSynthesis: {
			purpose:     "Produce the final answer for the query",
			methodology: "Combined evidence from multiple sources into one answer",
		},
		reasoning.StepConclusion: {
			purpose:     "Produce the final answer for the query",
			methodology: "Formed a direct answer from the most relevant evidence",
		},
	}
}
