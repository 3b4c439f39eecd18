package entities

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDocument_Creation(t *testing.T) {
	doc := Document{
		ID:        "doc-123",
		Content:   "Solar panels convert sunlight.",
		Metadata:  map[string]string{"source": "energy.md"},
		Embedding: []float32{0.1, 0.2, 0.3},
		CreatedAt: time.Now(),
	}

	if doc.ID != "doc-123" {
		t.Errorf("expected ID doc-123, got %s", doc.ID)
	}
	if len(doc.Embedding) != 3 {
		t.Errorf("expected 3 embedding dims, got %d", len(doc.Embedding))
	}
}

func TestDocument_EmbeddingNotSerialized(t *testing.T) {
	doc := Document{ID: "doc-1", Content: "text", Embedding: []float32{0.5}}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "0.5") || strings.Contains(string(data), "embedding") {
		t.Errorf("embedding leaked into JSON: %s", data)
	}
}

func TestQueryResult_JSONFieldNames(t *testing.T) {
	result := QueryResult{
		Query:           "How does solar power work?",
		Answer:          "Solar panels convert sunlight.",
		ConfidenceScore: 0.8,
		ReasoningSteps:  []ReasoningStep{{StepNumber: 1, StepType: "query_analysis"}},
		RetrievedDocuments: []RetrievedDocument{
			{ID: "d1", Content: "evidence", SimilarityScore: 0.8},
		},
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{
		`"answer"`, `"confidence_score"`, `"reasoning_steps"`,
		`"retrieved_documents"`, `"similarity_score"`, `"step_number"`,
	} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected field %s in JSON output", field)
		}
	}
}

func TestExplanation_Shape(t *testing.T) {
	exp := Explanation{
		OriginalQuery:   "q",
		FinalAnswer:     "a",
		ConfidenceScore: 0.7,
		Steps:           []ReasoningStep{},
		DocumentCount:   2,
	}

	data, err := json.Marshal(exp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	// Empty steps serialize as an array, never null.
	if !strings.Contains(string(data), `"steps":[]`) {
		t.Errorf("expected empty steps array, got %s", data)
	}
	if !strings.Contains(string(data), `"document_count":2`) {
		t.Errorf("expected document_count field, got %s", data)
	}
}

func TestDeepResearchResult_Shape(t *testing.T) {
	result := DeepResearchResult{
		Query:           "solar trends",
		LocalResults:    []RetrievedDocument{{ID: "d1", SimilarityScore: 0.9}},
		EnhancedAnswer:  "enhanced",
		ResearchSummary: "summary",
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, field := range []string{`"local_results"`, `"enhanced_answer"`, `"research_summary"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected field %s in JSON output", field)
		}
	}
}
