package usecases

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/drassist/deepresearch-go/internal/adapters/docstore"
	"github.com/drassist/deepresearch-go/internal/adapters/embedding"
	"github.com/drassist/deepresearch-go/internal/adapters/parser"
	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
)

func newTestIngest(t *testing.T) (*IngestUseCase, ports.DocumentStore, *Counters) {
	t.Helper()
	embedder := embedding.NewHashingEmbedder(512)
	store := docstore.NewMemoryStore()
	counters := NewCounters()
	uc := NewIngestUseCase(embedder, store, []ports.DocumentParser{
		parser.NewPlainTextParser(),
		parser.NewMarkdownParser(),
	}, counters)
	return uc, store, counters
}

func TestIngestText_StoresDocument(t *testing.T) {
	uc, store, counters := newTestIngest(t)
	ctx := context.Background()

	id, err := uc.IngestText(ctx, "Solar panels convert sunlight into electricity.", map[string]string{"topic": "energy"})
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a document id")
	}

	doc, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("stored document not retrievable: %v", err)
	}
	if doc.Metadata["topic"] != "energy" {
		t.Errorf("metadata lost: %v", doc.Metadata)
	}
	if len(doc.Embedding) == 0 {
		t.Error("document stored without an embedding")
	}

	_, _, added := counters.Snapshot()
	if added != 1 {
		t.Errorf("expected documents counter 1, got %d", added)
	}
}

func TestIngestText_EmptyRejected(t *testing.T) {
	uc, store, _ := newTestIngest(t)

	_, err := uc.IngestText(context.Background(), "  \n ", nil)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Errorf("failed ingestion must not touch the store, got %d documents", count)
	}
}

func TestIngestFile_MarkdownSections(t *testing.T) {
	uc, store, _ := newTestIngest(t)
	ctx := context.Background()

	md := "# Solar\nPanels convert sunlight.\n## Wind\nTurbines spin in the wind.\n"
	ids, err := uc.IngestFile(ctx, "energy.md", []byte(md))
	if err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected one document per heading, got %d", len(ids))
	}

	doc, err := store.Get(ctx, ids[0])
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if doc.Metadata["source"] != "energy.md" || doc.Metadata["format"] != "md" {
		t.Errorf("unexpected metadata: %v", doc.Metadata)
	}
	if doc.Metadata["section"] != "Solar" {
		t.Errorf("expected section title Solar, got %q", doc.Metadata["section"])
	}
}

func TestIngestFile_UnsupportedFormat(t *testing.T) {
	uc, _, _ := newTestIngest(t)

	_, err := uc.IngestFile(context.Background(), "image.png", []byte{0x89, 0x50})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "png") {
		t.Errorf("error should name the rejected format, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "md") {
		t.Errorf("error should list supported formats, got %q", err.Error())
	}
}

func TestIngestFile_NoExtension(t *testing.T) {
	uc, _, _ := newTestIngest(t)

	_, err := uc.IngestFile(context.Background(), "README", []byte("text"))
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestIngestFile_EmptyContent(t *testing.T) {
	uc, store, _ := newTestIngest(t)

	_, err := uc.IngestFile(context.Background(), "blank.txt", []byte("   \n"))
	if !apperrors.IsKind(err, apperrors.KindProcessing) {
		t.Errorf("expected processing error for contentless file, got %v", err)
	}
	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Errorf("failed ingestion must not touch the store, got %d documents", count)
	}
}

func TestIngest_ThenQueryFindsContent(t *testing.T) {
	p := newTestPipeline(t)
	p.mustIngest(t, "Photosynthesis turns light into chemical energy in plants.")

	result, err := p.queryUC.Query(context.Background(), QueryRequest{Query: "What is photosynthesis?"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !strings.Contains(result.Answer, "Photosynthesis turns light") {
		t.Errorf("ingested content should surface in the answer, got %q", result.Answer)
	}
}

func TestIngest_Concurrent(t *testing.T) {
	uc, store, _ := newTestIngest(t)
	ctx := context.Background()

	texts := []string{
		"First document about solar energy.",
		"Second document about wind energy.",
	}

	var wg sync.WaitGroup
	errs := make([]error, len(texts))
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			_, errs[i] = uc.IngestText(ctx, text, nil)
		}(i, text)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent ingest %d failed: %v", i, err)
		}
	}
	count, _ := store.Count(ctx)
	if count != 2 {
		t.Errorf("expected both documents stored, got %d", count)
	}
}

func TestSupportedExtensions_Sorted(t *testing.T) {
	uc, _, _ := newTestIngest(t)

	exts := uc.SupportedExtensions()
	for i := 1; i < len(exts); i++ {
		if exts[i] < exts[i-1] {
			t.Fatalf("extensions not sorted: %v", exts)
		}
	}
}
