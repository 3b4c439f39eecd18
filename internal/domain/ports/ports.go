// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
package ports

import (
	"context"

	"github.com/drassist/deepresearch-go/internal/domain/entities"
)

// EmbeddingService converts text into a comparable vector representation.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName identifies the embedding model for status reporting.
	ModelName() string

	// Dimension returns the dimensionality of produced vectors.
	Dimension() int
}

// DocumentStore persists documents with their embeddings and supports
// similarity search. Implementations must serialize mutations relative
// to reads so a search never observes a partially indexed document.
type DocumentStore interface {
	// Add stores a document. The embedding must already be populated.
	Add(ctx context.Context, doc entities.Document) error

	// Get returns a document by id.
	Get(ctx context.Context, id string) (entities.Document, error)

	// All returns every stored document.
	All(ctx context.Context) ([]entities.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Search returns up to topK documents ordered by descending
	// similarity to the query embedding, ties broken by ascending id.
	// Documents scoring below minScore are excluded.
	Search(ctx context.Context, embedding []float32, topK int, minScore float64) ([]entities.RetrievedDocument, error)

	// Delete removes a document by id.
	Delete(ctx context.Context, id string) error

	// Clear removes all documents.
	Clear(ctx context.Context) error
}

// DocumentParser extracts text sections from binary document formats.
// One file may produce multiple sections (pages, headings).
type DocumentParser interface {
	// Parse extracts text sections from document bytes.
	Parse(ctx context.Context, data []byte, filename string) ([]Section, error)

	// SupportedFormats returns extensions this parser handles, without
	// the leading dot (e.g. "pdf", "docx").
	SupportedFormats() []string
}

// Section is one extracted unit of text from a parsed file.
type Section struct {
	Title   string
	Content string
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// Exporter serializes query results to durable storage.
type Exporter interface {
	// Export writes the result in the given format and returns the
	// record of the created file.
	Export(result *entities.QueryResult, format, filename string) (entities.ExportRecord, error)

	// List returns records for all files in the export directory.
	List() ([]entities.ExportRecord, error)

	// Delete removes one export by filename.
	Delete(filename string) error
}

// FileWatcher monitors a directory for document changes.
type FileWatcher interface {
	// Watch starts monitoring the directory and emits events.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
