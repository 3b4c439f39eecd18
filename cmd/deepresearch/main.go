// Command deepresearch runs the document research assistant: an HTTP
// API over a local knowledge base with retrieval, reasoning traces,
// deep research and export.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/drassist/deepresearch-go/internal/adapters/docstore"
	"github.com/drassist/deepresearch-go/internal/adapters/embedding"
	"github.com/drassist/deepresearch-go/internal/adapters/export"
	"github.com/drassist/deepresearch-go/internal/adapters/filewatcher"
	"github.com/drassist/deepresearch-go/internal/adapters/parser"
	"github.com/drassist/deepresearch-go/internal/adapters/summarizer"
	"github.com/drassist/deepresearch-go/internal/config"
	"github.com/drassist/deepresearch-go/internal/domain/ports"
	"github.com/drassist/deepresearch-go/internal/domain/reasoning"
	"github.com/drassist/deepresearch-go/internal/domain/refine"
	"github.com/drassist/deepresearch-go/internal/domain/usecases"
	httpserver "github.com/drassist/deepresearch-go/internal/infrastructure/http"
)

var cfgPath string

// app bundles the assembled components for the CLI commands.
type app struct {
	cfg        *config.Config
	store      ports.DocumentStore
	embedder   ports.EmbeddingService
	refiner    *refine.Refiner
	counters   *usecases.Counters
	queryUC    *usecases.QueryUseCase
	ingestUC   *usecases.IngestUseCase
	researchUC *usecases.ResearchUseCase
	explainUC  *usecases.ExplainUseCase
	exportUC   *usecases.ExportUseCase
}

// buildApp wires adapters into usecases from the loaded config.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var embedder ports.EmbeddingService
	switch cfg.Embedder.Type {
	case "ollama":
		embedder = embedding.NewOllamaEmbedder(cfg.Embedder.BaseURL, cfg.Embedder.Model, cfg.Embedder.Dimension)
	default:
		embedder = embedding.NewHashingEmbedder(cfg.Embedder.Dimension)
	}

	var store ports.DocumentStore
	switch cfg.Store.Type {
	case "sqlite":
		store, err = docstore.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
	default:
		store = docstore.NewMemoryStore()
	}

	exporter, err := export.NewManager(cfg.Export.Dir)
	if err != nil {
		return nil, err
	}

	counters := usecases.NewCounters()
	refiner := refine.NewRefiner()
	reasoner := reasoning.NewEngine()
	summ := summarizer.NewFrequencySummarizer()

	parsers := []ports.DocumentParser{
		parser.NewPlainTextParser(),
		parser.NewMarkdownParser(),
		parser.NewDOCXParser(),
		parser.NewPDFServiceParser(cfg.Parser.PDFServiceURL),
	}

	queryUC := usecases.NewQueryUseCase(
		embedder, store, summ, reasoner, refiner, counters,
		cfg.Retrieval.TopK, cfg.Retrieval.MinScore, cfg.Summarizer.MaxSentences,
	)
	ingestUC := usecases.NewIngestUseCase(embedder, store, parsers, counters)
	researchUC := usecases.NewResearchUseCase(queryUC, store, summ, reasoner)
	explainUC := usecases.NewExplainUseCase()
	exportUC := usecases.NewExportUseCase(exporter, counters)

	return &app{
		cfg:        cfg,
		store:      store,
		embedder:   embedder,
		refiner:    refiner,
		counters:   counters,
		queryUC:    queryUC,
		ingestUC:   ingestUC,
		researchUC: researchUC,
		explainUC:  explainUC,
		exportUC:   exportUC,
	}, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the research assistant HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if a.cfg.Watch.Enabled {
				if err := startDropFolder(ctx, a); err != nil {
					return err
				}
			}

			server := httpserver.NewServer(
				a.queryUC, a.ingestUC, a.researchUC, a.explainUC, a.exportUC,
				a.store, a.embedder, a.refiner, a.counters,
				httpserver.FeatureFlags{
					Reasoning:     a.cfg.Features.Reasoning,
					Refinement:    a.cfg.Features.Refinement,
					Summarization: a.cfg.Features.Summarization,
				},
				a.cfg.Server.Addr,
			)
			return server.Start(ctx)
		},
	}
}

// startDropFolder watches the documents directory and ingests
// supported files as they appear.
func startDropFolder(ctx context.Context, a *app) error {
	if err := os.MkdirAll(a.cfg.Watch.Dir, 0755); err != nil {
		return fmt.Errorf("creating watch directory: %w", err)
	}

	watcher, err := filewatcher.NewFSNotifyWatcher(a.ingestUC.SupportedExtensions())
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	events, err := watcher.Watch(ctx, a.cfg.Watch.Dir)
	if err != nil {
		return fmt.Errorf("watching %q: %w", a.cfg.Watch.Dir, err)
	}

	log.Printf("[INFO] Watching %s for documents", a.cfg.Watch.Dir)

	go func() {
		defer watcher.Stop()
		for event := range events {
			if event.Operation == ports.FileDeleted {
				continue
			}
			data, err := os.ReadFile(event.Path)
			if err != nil {
				log.Printf("[ERROR] Reading dropped file %s: %v", event.Path, err)
				continue
			}
			ids, err := a.ingestUC.IngestFile(ctx, event.Path, data)
			if err != nil {
				log.Printf("[ERROR] Ingesting dropped file %s: %v", event.Path, err)
				continue
			}
			log.Printf("[INFO] Auto-ingested %s as %d documents", event.Path, len(ids))
		}
	}()
	return nil
}

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [paths...]",
		Short: "Ingest files or directories into the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			total := 0
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				var ids []string
				if info.IsDir() {
					ids, err = a.ingestUC.IngestDirectory(cmd.Context(), path)
				} else {
					var data []byte
					data, err = os.ReadFile(path)
					if err == nil {
						ids, err = a.ingestUC.IngestFile(cmd.Context(), path, data)
					}
				}
				if err != nil {
					color.Red("✗ %s: %v", path, err)
					continue
				}
				color.Green("✓ %s (%d documents)", path, len(ids))
				total += len(ids)
			}
			fmt.Printf("Ingested %d documents\n", total)
			return nil
		},
	}
}

func newQueryCmd() *cobra.Command {
	var noRefine, noSummarize bool
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Answer a question against the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			result, err := a.queryUC.Query(cmd.Context(), usecases.QueryRequest{
				Query:               args[0],
				EnableRefinement:    !noRefine,
				EnableSummarization: !noSummarize,
			})
			if err != nil {
				return err
			}

			color.Cyan("Query: %s", result.Query)
			fmt.Println()
			fmt.Println(result.Answer)
			fmt.Println()
			color.Yellow("Confidence: %.2f, documents: %d, %.3fs",
				result.ConfidenceScore, len(result.RetrievedDocuments), result.ExecutionTime)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noRefine, "no-refine", false, "disable query refinement")
	cmd.Flags().BoolVar(&noSummarize, "no-summarize", false, "disable answer summarization")
	return cmd
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show knowledge base status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			count, err := a.store.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Documents:       %d\n", count)
			fmt.Printf("Embedding model: %s (%d dims)\n", a.embedder.ModelName(), a.embedder.Dimension())
			fmt.Printf("Store:           %s\n", a.cfg.Store.Type)
			fmt.Printf("Export dir:      %s\n", a.cfg.Export.Dir)
			return nil
		},
	}
}

func newExportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exports",
		Short: "List exported result files",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			records, err := a.exportUC.List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No exports yet")
				return nil
			}
			for _, rec := range records {
				fmt.Printf("%-40s %-8s %8d bytes  %s\n",
					rec.Filename, rec.Format, rec.SizeBytes, rec.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "deepresearch",
		Short: "Document research assistant with retrieval, reasoning and export",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to YAML config file")

	root.AddCommand(
		newServeCmd(),
		newIngestCmd(),
		newQueryCmd(),
		newStatusCmd(),
		newExportsCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}
