package usecases

import (
	"log"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
)

// ExportUseCase serializes query results to files and tracks the
// export counter.
type ExportUseCase struct {
	exporter ports.Exporter
	counters *Counters
}

// NewExportUseCase creates an ExportUseCase.
func NewExportUseCase(exporter ports.Exporter, counters *Counters) *ExportUseCase {
	return &ExportUseCase{exporter: exporter, counters: counters}
}

// Export writes the result and returns the created record. The
// counter increments only on success.
func (uc *ExportUseCase) Export(result *entities.QueryResult, format, filename string) (entities.ExportRecord, error) {
	if result == nil {
		return entities.ExportRecord{}, apperrors.Validation("query result is required")
	}
	record, err := uc.exporter.Export(result, format, filename)
	if err != nil {
		return entities.ExportRecord{}, err
	}
	uc.counters.IncExports()
	log.Printf("[INFO] Exported result to %s (%s, %d bytes)", record.Path, record.Format, record.SizeBytes)
	return record, nil
}

// List returns all export records.
func (uc *ExportUseCase) List() ([]entities.ExportRecord, error) {
	return uc.exporter.List()
}

// Delete removes one export by filename.
func (uc *ExportUseCase) Delete(filename string) error {
	return uc.exporter.Delete(filename)
}
