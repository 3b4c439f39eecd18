// Package http provides the HTTP server infrastructure.
// Clean Architecture: Framework/driver layer - outermost circle.
package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/drassist/deepresearch-go/internal/domain/apperrors"
	"github.com/drassist/deepresearch-go/internal/domain/entities"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
	"github.com/drassist/deepresearch-go/internal/domain/refine"
	"github.com/drassist/deepresearch-go/internal/domain/usecases"
)

// maxUploadBytes bounds multipart file ingestion.
const maxUploadBytes = 32 << 20

// FeatureFlags mirror the config summary reported in status.
type FeatureFlags struct {
	Reasoning     bool
	Refinement    bool
	Summarization bool
}

// Server is the HTTP server for the research assistant API.
type Server struct {
	queryUC    *usecases.QueryUseCase
	ingestUC   *usecases.IngestUseCase
	researchUC *usecases.ResearchUseCase
	explainUC  *usecases.ExplainUseCase
	exportUC   *usecases.ExportUseCase
	store      ports.DocumentStore
	embedder   ports.EmbeddingService
	refiner    *refine.Refiner
	counters   *usecases.Counters
	flags      FeatureFlags
	addr       string
}

// NewServer creates a new HTTP server.
func NewServer(
	queryUC *usecases.QueryUseCase,
	ingestUC *usecases.IngestUseCase,
	researchUC *usecases.ResearchUseCase,
	explainUC *usecases.ExplainUseCase,
	exportUC *usecases.ExportUseCase,
	store ports.DocumentStore,
	embedder ports.EmbeddingService,
	refiner *refine.Refiner,
	counters *usecases.Counters,
	flags FeatureFlags,
	addr string,
) *Server {
	return &Server{
		queryUC:    queryUC,
		ingestUC:   ingestUC,
		researchUC: researchUC,
		explainUC:  explainUC,
		exportUC:   exportUC,
		store:      store,
		embedder:   embedder,
		refiner:    refiner,
		counters:   counters,
		flags:      flags,
		addr:       addr,
	}
}

// Handler builds the route table. Exposed separately from Start so
// tests can drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/query", s.handleQuery)
	mux.HandleFunc("/api/deep-research", s.handleDeepResearch)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/ingest/text", s.handleIngestText)
	mux.HandleFunc("/api/ingest/file", s.handleIngestFile)
	mux.HandleFunc("/api/explain", s.handleExplain)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.HandleFunc("/api/exports", s.handleListExports)
	mux.HandleFunc("/api/health", s.handleHealth)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	log.Printf("[INFO] Research assistant server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleQuery processes a question against the knowledge base.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.Validation("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	var req usecases.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"), 0)
		return
	}

	result, err := s.queryUC.Query(r.Context(), req)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// deepResearchRequest is the deep-research request body.
type deepResearchRequest struct {
	Query          string                `json:"query"`
	OriginalResult *entities.QueryResult `json:"original_result"`
}

// handleDeepResearch re-runs retrieval against the local knowledge base.
func (s *Server) handleDeepResearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.Validation("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	var req deepResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"), 0)
		return
	}

	result, err := s.researchUC.Research(r.Context(), req.Query, req.OriginalResult)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleStatus reports the process-wide system snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		writeError(w, err, 0)
		return
	}
	totalQueries, exportsCreated, _ := s.counters.Snapshot()

	status := map[string]any{
		"document_store": map[string]any{
			"total_documents": count,
		},
		"embedding_model": map[string]any{
			"model_name":    s.embedder.ModelName(),
			"embedding_dim": s.embedder.Dimension(),
		},
		"config_summary": map[string]any{
			"reasoning_enabled":        s.flags.Reasoning,
			"query_refinement_enabled": s.flags.Refinement,
			"summarization_enabled":    s.flags.Summarization,
		},
		"query_handler": map[string]any{
			"query_stats": map[string]any{
				"total_queries": totalQueries,
			},
		},
		"query_refiner": map[string]any{
			"active_sessions": s.refiner.ActiveSessions(),
		},
		"export_manager": map[string]any{
			"performance_metrics": map[string]any{
				"exports_created": exportsCreated,
			},
		},
	}
	writeJSON(w, http.StatusOK, status)
}

// handleIngestText stores raw text as a new document.
func (s *Server) handleIngestText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.Validation("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text     string            `json:"text"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"), 0)
		return
	}

	id, err := s.ingestUC.IngestText(r.Context(), req.Text, req.Metadata)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_id": id})
}

// handleIngestFile stores an uploaded file, one document per section.
func (s *Server) handleIngestFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.Validation("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperrors.Validation("invalid multipart form"), 0)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.Validation("no file provided"), 0)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, apperrors.Processing(err, "reading upload"), 0)
		return
	}

	ids, err := s.ingestUC.IngestFile(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_ids": ids})
}

// handleExplain reconstructs the reasoning behind a prior result.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.Validation("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		QueryResult *entities.QueryResult `json:"query_result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"), 0)
		return
	}
	if req.QueryResult == nil {
		writeError(w, apperrors.Validation("query result is required"), 0)
		return
	}

	explanation := s.explainUC.Explain(req.QueryResult)
	writeJSON(w, http.StatusOK, explanation)
}

// handleExport serializes a result to a file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, apperrors.Validation("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		QueryResult *entities.QueryResult `json:"query_result"`
		Format      string                `json:"format"`
		Filename    string                `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"), 0)
		return
	}

	record, err := s.exportUC.Export(req.QueryResult, req.Format, req.Filename)
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"export_path": record.Path,
		"filename":    record.Filename,
		"format":      record.Format,
	})
}

// handleListExports lists prior export files.
func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	records, err := s.exportUC.List()
	if err != nil {
		writeError(w, err, 0)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON renders v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError translates the error taxonomy into a status code and the
// uniform {"error": msg} body. statusOverride, when non-zero, wins.
func writeError(w http.ResponseWriter, err error, statusOverride int) {
	status := statusOverride
	if status == 0 {
		switch apperrors.KindOf(err) {
		case apperrors.KindValidation:
			status = http.StatusBadRequest
		case apperrors.KindNotFound:
			status = http.StatusNotFound
		case apperrors.KindProcessing:
			status = http.StatusUnprocessableEntity
		case apperrors.KindIO:
			status = http.StatusInternalServerError
		default:
			status = http.StatusInternalServerError
		}
	}
	log.Printf("[ERROR] %v", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
