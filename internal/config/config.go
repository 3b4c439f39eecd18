// Package config loads the application configuration from YAML,
// applying defaults for anything left unset.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig selects and configures the document store.
type StoreConfig struct {
	Type string `yaml:"type"` // "memory" or "sqlite"
	Path string `yaml:"path"`
}

// EmbedderConfig selects and configures the embedder implementation.
type EmbedderConfig struct {
	Type      string `yaml:"type"` // "hashing" or "ollama"
	Dimension int    `yaml:"dimension"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
}

// RetrievalConfig bounds retrieval.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
}

// FeaturesConfig holds the engine feature flags reported in status.
type FeaturesConfig struct {
	Reasoning     bool `yaml:"reasoning"`
	Refinement    bool `yaml:"refinement"`
	Summarization bool `yaml:"summarization"`
}

// SummarizerConfig configures answer condensation.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// ExportConfig configures the export directory.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// WatchConfig configures the document drop folder.
type WatchConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// ParserConfig configures external extraction services.
type ParserConfig struct {
	PDFServiceURL string `yaml:"pdf_service_url"`
}

// Config is the root application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Features   FeaturesConfig   `yaml:"features"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Export     ExportConfig     `yaml:"export"`
	Watch      WatchConfig      `yaml:"watch"`
	Parser     ParserConfig     `yaml:"parser"`
}

// Load reads a config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Addr: ":8080"},
		Store:      StoreConfig{Type: "memory", Path: "./data"},
		Embedder:   EmbedderConfig{Type: "hashing", Dimension: 512},
		Retrieval:  RetrievalConfig{TopK: 5, MinScore: 0},
		Features:   FeaturesConfig{Reasoning: true, Refinement: true, Summarization: true},
		Summarizer: SummarizerConfig{MaxSentences: 5},
		Export:     ExportConfig{Dir: "exports"},
		Watch:      WatchConfig{Enabled: false, Dir: "documents"},
		Parser:     ParserConfig{PDFServiceURL: "http://localhost:8081"},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Store.Type == "" {
		cfg.Store.Type = "memory"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./data"
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "hashing"
	}
	if cfg.Embedder.Dimension <= 0 {
		cfg.Embedder.Dimension = 512
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Summarizer.MaxSentences <= 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "exports"
	}
	if cfg.Watch.Dir == "" {
		cfg.Watch.Dir = "documents"
	}
	if cfg.Parser.PDFServiceURL == "" {
		cfg.Parser.PDFServiceURL = "http://localhost:8081"
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store type %q (memory, sqlite)", c.Store.Type)
	}
	switch c.Embedder.Type {
	case "hashing", "ollama":
	default:
		return fmt.Errorf("unknown embedder type %q (hashing, ollama)", c.Embedder.Type)
	}
	return nil
}
