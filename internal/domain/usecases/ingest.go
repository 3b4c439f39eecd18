// Package usecases contains application business rules.
// Clean Architecture: Usecases orchestrate entities and depend on port interfaces.
package usecases

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
)

// IngestUseCase handles document ingestion into the store.
// Text is embedded before any store write, so a failed ingestion
// leaves the store untouched.
type IngestUseCase struct {
	embedder ports.EmbeddingService
	store    ports.DocumentStore
	parsers  map[string]ports.DocumentParser
	counters *Counters
}

// NewIngestUseCase creates an IngestUseCase. Parsers are routed by the
// extensions they report via SupportedFormats.
func NewIngestUseCase(
	embedder ports.EmbeddingService,
	store ports.DocumentStore,
	parsers []ports.DocumentParser,
	counters *Counters,
) *IngestUseCase {
	routing := make(map[string]ports.DocumentParser)
	for _, p := range parsers {
		for _, format := range p.SupportedFormats() {
			routing[strings.ToLower(format)] = p
		}
	}
	return &IngestUseCase{
		embedder: embedder,
		store:    store,
		parsers:  routing,
		counters: counters,
	}
}

// IngestText stores raw text as a new document and returns its id.
func (uc *IngestUseCase) IngestText(ctx context.Context, text string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.Validation("text is required")
	}

	doc := entities.Document{
		ID:        uuid.New().String(),
		Content:   text,
		Metadata:  metadata,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	embedding, err := uc.embedder.Embed(ctx, doc.Content)
	if err != nil {
		return "", apperrors.Processing(err, "embedding document")
	}
	doc.Embedding = embedding

	if err := uc.store.Add(ctx, doc); err != nil {
		return "", fmt.Errorf("storing document: %w", err)
	}

	uc.counters.IncDocuments(1)
	log.Printf("[INFO] Ingested text document %s (%d bytes)", doc.ID, len(doc.Content))
	return doc.ID, nil
}

// IngestFile extracts text from an uploaded file and stores one
// document per extracted section. Returns the new document ids.
func (uc *IngestUseCase) IngestFile(ctx context.Context, filename string, data []byte) ([]string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return nil, apperrors.Validation("file %q has no extension", filename)
	}

	parser, ok := uc.parsers[ext]
	if !ok {
		return nil, apperrors.Validation("unsupported file format %q (supported: %s)",
			ext, strings.Join(uc.SupportedExtensions(), ", "))
	}

	sections, err := parser.Parse(ctx, data, filename)
	if err != nil {
		return nil, apperrors.Processing(err, "extracting text from %q", filename)
	}
	if len(sections) == 0 {
		return nil, apperrors.Processing(nil, "no text content found in %q", filename)
	}

	// Embed every section before the first store write.
	texts := make([]string, len(sections))
	for i, sec := range sections {
		texts[i] = sec.Content
	}
	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, apperrors.Processing(err, "embedding sections of %q", filename)
	}

	now := time.Now()
	ids := make([]string, 0, len(sections))
	for i, sec := range sections {
		doc := entities.Document{
			ID:      uuid.New().String(),
			Content: sec.Content,
			Metadata: map[string]string{
				"source":  filename,
				"format":  ext,
				"section": sec.Title,
			},
			Embedding: embeddings[i],
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.store.Add(ctx, doc); err != nil {
			return nil, fmt.Errorf("storing section %d of %q: %w", i, filename, err)
		}
		ids = append(ids, doc.ID)
	}

	uc.counters.IncDocuments(len(ids))
	log.Printf("[INFO] Ingested %q as %d documents", filename, len(ids))
	return ids, nil
}

// IngestDirectory walks a directory and ingests every supported file.
// Unsupported files are skipped, not errors.
func (uc *IngestUseCase) IngestDirectory(ctx context.Context, dir string) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if _, ok := uc.parsers[ext]; !ok {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		fileIDs, err := uc.IngestFile(ctx, filepath.Base(path), data)
		if err != nil {
			log.Printf("[ERROR] Skipping %q: %v", path, err)
			return nil
		}
		ids = append(ids, fileIDs...)
		return nil
	})
	if err != nil {
		return ids, apperrors.IO(err, "walking directory %q", dir)
	}
	return ids, nil
}

// SupportedExtensions lists the file extensions ingestion accepts.
func (uc *IngestUseCase) SupportedExtensions() []string {
	exts := make([]string, 0, len(uc.parsers))
	for ext := range uc.parsers {
		exts = append(exts, ext)
	}
	// Stable order for error messages.
	sort.Strings(exts)
	return exts
}
