// Package entities contains core business entities.
// These are the enterprise business rules - pure domain objects with no external dependencies.
package entities

import "time"

// Document represents a unit of ingested text with a unique identifier.
// This is a core entity - no knowledge of storage or external systems.
type Document struct {
	ID        string            `json:"id"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Embedding []float32         `json:"-"`
	CreatedAt time.Time         `json:"created_at,omitempty"`
	UpdatedAt time.Time         `json:"updated_at,omitempty"`
}

// RetrievedDocument is a document reference returned by retrieval,
// carrying its relevance score for the query that produced it.
type RetrievedDocument struct {
	ID              string            `json:"id"`
	Content         string            `json:"content"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	SimilarityScore float64           `json:"similarity_score"`
}

// ReasoningStep is one labeled stage in an explanation trace.
// StepNumber values are contiguous starting at 1.
type ReasoningStep struct {
	StepNumber  int     `json:"step_number"`
	StepType    string  `json:"step_type"`
	Description string  `json:"description"`
	Purpose     string  `json:"purpose"`
	Outcome     string  `json:"outcome"`
	Confidence  float64 `json:"confidence,omitempty"`
}

// QueryResult is the outcome of one query execution.
type QueryResult struct {
	Query              string              `json:"query"`
	Answer             string              `json:"answer"`
	ConfidenceScore    float64             `json:"confidence_score"`
	ReasoningSteps     []ReasoningStep     `json:"reasoning_steps"`
	RetrievedDocuments []RetrievedDocument `json:"retrieved_documents"`
	ExecutionTime      float64             `json:"execution_time"`
	Metadata           map[string]string   `json:"metadata,omitempty"`
	Timestamp          time.Time           `json:"timestamp"`
}

// Explanation reconstructs how a QueryResult was produced.
type Explanation struct {
	OriginalQuery    string          `json:"original_query"`
	FinalAnswer      string          `json:"final_answer"`
	ConfidenceScore  float64         `json:"confidence_score"`
	ReasoningSummary string          `json:"reasoning_summary"`
	Steps            []ReasoningStep `json:"steps"`
	DocumentCount    int             `json:"document_count"`
}

// DeepResearchResult is the outcome of a deep-research pass restricted
// to the local knowledge base. It is additive to the original QueryResult.
type DeepResearchResult struct {
	Query           string              `json:"query"`
	LocalResults    []RetrievedDocument `json:"local_results"`
	EnhancedAnswer  string              `json:"enhanced_answer"`
	ResearchSummary string              `json:"research_summary"`
	ReasoningSteps  []ReasoningStep     `json:"reasoning_steps"`
	Timestamp       time.Time           `json:"timestamp"`
}

// ExportRecord describes one exported result file on disk.
type ExportRecord struct {
	Filename  string    `json:"filename"`
	Path      string    `json:"path"`
	Format    string    `json:"format"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
