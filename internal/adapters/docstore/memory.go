// Package docstore provides document store adapters.
// Clean Architecture: Adapters implementing ports.DocumentStore.
package docstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
)

// MemoryStore is an in-memory document store with brute-force cosine
// search. An RWMutex serializes mutations relative to reads so a search
// never observes a partially indexed document.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]entities.Document
}

// NewMemoryStore creates a new in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]entities.Document),
	}
}

// Add stores a document.
func (s *MemoryStore) Add(ctx context.Context, doc entities.Document) error {
	if doc.ID == "" {
		return apperrors.Validation("document id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// Get returns a document by id.
func (s *MemoryStore) Get(ctx context.Context, id string) (entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return entities.Document{}, apperrors.NotFound("document %q not found", id)
	}
	return doc, nil
}

// All returns every stored document, ordered by id for determinism.
func (s *MemoryStore) All(ctx context.Context) ([]entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]entities.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Search returns up to topK documents by descending cosine similarity.
// Ties are broken by ascending document id so identical store contents
// and query always rank identically.
func (s *MemoryStore) Search(ctx context.Context, embedding []float32, topK int, minScore float64) ([]entities.RetrievedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]entities.RetrievedDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		score := CosineSimilarity(embedding, doc.Embedding)
		if score < minScore {
			continue
		}
		results = append(results, entities.RetrievedDocument{
			ID:              doc.ID,
			Content:         doc.Content,
			Metadata:        doc.Metadata,
			SimilarityScore: score,
		})
	}

	sortByRelevance(results)

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Delete removes a document by id.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return apperrors.NotFound("document %q not found", id)
	}
	delete(s.docs, id)
	return nil
}

// Clear removes all documents.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]entities.Document)
	return nil
}

// sortByRelevance orders results by descending score, ties by ascending id.
func sortByRelevance(results []entities.RetrievedDocument) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].SimilarityScore != results[j].SimilarityScore {
			return results[i].SimilarityScore > results[j].SimilarityScore
		}
		return results[i].ID < results[j].ID
	})
}

// CosineSimilarity computes cosine similarity between two vectors.
// Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
