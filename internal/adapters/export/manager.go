// Package export serializes query results to files on durable storage.
// Clean Architecture: Adapter implementing ports.Exporter.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
)

// Supported export formats.
const (
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
	FormatJSON     = "json"
)

// Manager writes query results into a single export directory.
type Manager struct {
	outputDir string
}

// NewManager creates an export manager rooted at outputDir, creating
// the directory if needed.
func NewManager(outputDir string) (*Manager, error) {
	if outputDir == "" {
		outputDir = "exports"
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apperrors.IO(err, "creating export directory %q", outputDir)
	}
	return &Manager{outputDir: outputDir}, nil
}

// Export writes the result in the given format. An empty filename gets
// a generated name; all names are sanitized to stay inside the export
// directory.
func (m *Manager) Export(result *entities.QueryResult, format, filename string) (entities.ExportRecord, error) {
	if result == nil {
		return entities.ExportRecord{}, apperrors.Validation("query result is required")
	}

	format = strings.ToLower(strings.TrimSpace(format))
	var ext string
	switch format {
	case FormatMarkdown, "":
		format, ext = FormatMarkdown, "md"
	case FormatPDF:
		ext = "pdf"
	case FormatJSON:
		ext = "json"
	default:
		return entities.ExportRecord{}, apperrors.Validation("unsupported export format %q (markdown, pdf, json)", format)
	}

	name := sanitizeFilename(filename)
	if name == "" {
		name = "query_result_" + uuid.New().String()
	}
	if !strings.HasSuffix(name, "."+ext) {
		name += "." + ext
	}
	path := filepath.Join(m.outputDir, name)

	var err error
	switch format {
	case FormatMarkdown:
		err = writeMarkdown(path, result)
	case FormatPDF:
		err = writePDF(path, result)
	case FormatJSON:
		err = writeJSON(path, result)
	}
	if err != nil {
		return entities.ExportRecord{}, apperrors.IO(err, "writing export %q", name)
	}

	info, err := os.Stat(path)
	if err != nil {
		return entities.ExportRecord{}, apperrors.IO(err, "stating export %q", name)
	}

	return entities.ExportRecord{
		Filename:  name,
		Path:      path,
		Format:    format,
		SizeBytes: info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// List returns records for every file in the export directory, newest first.
func (m *Manager) List() ([]entities.ExportRecord, error) {
	dirEntries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, apperrors.IO(err, "reading export directory %q", m.outputDir)
	}

	records := make([]entities.ExportRecord, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		records = append(records, entities.ExportRecord{
			Filename:  entry.Name(),
			Path:      filepath.Join(m.outputDir, entry.Name()),
			Format:    formatForExtension(entry.Name()),
			SizeBytes: info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	// Newest first, name as tiebreak.
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].Filename < records[j].Filename
	})
	return records, nil
}

// Delete removes one export by filename.
func (m *Manager) Delete(filename string) error {
	name := sanitizeFilename(filename)
	if name == "" {
		return apperrors.Validation("filename is required")
	}
	path := filepath.Join(m.outputDir, name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NotFound("export %q not found", name)
		}
		return apperrors.IO(err, "deleting export %q", name)
	}
	return nil
}

// sanitizeFilename strips any path components so exports cannot escape
// the output directory.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func formatForExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	case ".json":
		return FormatJSON
	default:
		return "unknown"
	}
}

// writeJSON serializes the full result payload.
func writeJSON(path string, result *entities.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// timestampOf formats the result timestamp, falling back to now for
// payloads that arrive without one.
func timestampOf(result *entities.QueryResult) string {
	ts := result.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return ts.Format(time.RFC3339)
}
