package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements ports.DocumentStore with SQLite persistence.
// Search is brute-force over all rows; fine for single-node knowledge
// bases in the thousands of documents.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a persistent document store under dataPath.
func NewSQLiteStore(dataPath string) (*SQLiteStore, error) {
	if dataPath == "" {
		dataPath = "./data"
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataPath, "documents.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return store, nil
}

// initSchema creates the documents table.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add stores a document, replacing any existing row with the same id.
func (s *SQLiteStore) Add(ctx context.Context, doc entities.Document) error {
	if doc.ID == "" {
		return apperrors.Validation("document id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	embJSON, err := json.Marshal(doc.Embedding)
	if err != nil {
		return fmt.Errorf("encoding embedding: %w", err)
	}
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := doc.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO documents (id, content, metadata, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Content, string(metaJSON), embJSON, createdAt, updatedAt)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

// Get returns a document by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, content, metadata, embedding, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return entities.Document{}, apperrors.NotFound("document %q not found", id)
	}
	if err != nil {
		return entities.Document{}, fmt.Errorf("reading document: %w", err)
	}
	return doc, nil
}

// All returns every stored document ordered by id.
func (s *SQLiteStore) All(ctx context.Context) ([]entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadAll(ctx)
}

// Count returns the number of stored documents.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// Search scores every stored document against the query embedding.
func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, topK int, minScore float64) ([]entities.RetrievedDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]entities.RetrievedDocument, 0, len(docs))
	for _, doc := range docs {
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
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("document %q not found", id)
	}
	return nil
}

// Clear removes all documents.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) loadAll(ctx context.Context) ([]entities.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding, created_at, updated_at
		FROM documents ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []entities.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (entities.Document, error) {
	var (
		doc      entities.Document
		metaJSON sql.NullString
		embJSON  []byte
	)
	err := row.Scan(&doc.ID, &doc.Content, &metaJSON, &embJSON, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return entities.Document{}, err
	}
	if metaJSON.Valid && metaJSON.String != "" && metaJSON.String != "null" {
		if err := json.Unmarshal([]byte(metaJSON.String), &doc.Metadata); err != nil {
			return entities.Document{}, fmt.Errorf("decoding metadata: %w", err)
		}
	}
	if err := json.Unmarshal(embJSON, &doc.Embedding); err != nil {
		return entities.Document{}, fmt.Errorf("decoding embedding: %w", err)
	}
	return doc, nil
}
