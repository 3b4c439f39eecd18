package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaEmbedder_Defaults(t *testing.T) {
	e := NewOllamaEmbedder("", "", 0)

	if e.ModelName() != "nomic-embed-text" {
		t.Errorf("unexpected default model: %q", e.ModelName())
	}
	if e.Dimension() != 768 {
		t.Errorf("unexpected default dimension: %d", e.Dimension())
	}
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "nomic-embed-text" {
			t.Errorf("unexpected model in request: %q", req.Model)
		}
		if req.Prompt != "solar panels" {
			t.Errorf("unexpected prompt: %q", req.Prompt)
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{0.1, 0.2, 0.3}})
	}))
	defer service.Close()

	e := NewOllamaEmbedder(service.URL, "", 3)
	vec, err := e.Embed(context.Background(), "solar panels")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	calls := 0
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1}})
	}))
	defer service.Close()

	e := NewOllamaEmbedder(service.URL, "", 1)
	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("batch embed failed: %v", err)
	}
	if len(vecs) != 3 {
		t.Errorf("expected 3 vectors, got %d", len(vecs))
	}
	if calls != 3 {
		t.Errorf("expected one call per text, got %d", calls)
	}
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusInternalServerError)
	}))
	defer service.Close()

	e := NewOllamaEmbedder(service.URL, "", 0)
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("expected an error on server failure")
	}
}

func TestOllamaEmbedder_Unreachable(t *testing.T) {
	e := NewOllamaEmbedder("http://127.0.0.1:1", "", 0)
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("expected an error when Ollama is unreachable")
	}
}
