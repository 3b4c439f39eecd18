package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPDFServiceParser_PagedResponse(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"pages":[{"number":1,"text":"First page text."},{"number":2,"text":""},{"number":3,"text":"Third page text."}]}`))
	}))
	defer service.Close()

	p := NewPDFServiceParser(service.URL)
	sections, err := p.Parse(context.Background(), []byte("%PDF-1.4 fake"), "paper.pdf")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 non-empty pages, got %d", len(sections))
	}
	if sections[0].Title != "paper.pdf page 1" {
		t.Errorf("unexpected title: %q", sections[0].Title)
	}
	if sections[1].Content != "Third page text." {
		t.Errorf("unexpected content: %q", sections[1].Content)
	}
}

func TestPDFServiceParser_FlatTextFallback(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"Whole document text."}`))
	}))
	defer service.Close()

	p := NewPDFServiceParser(service.URL)
	sections, err := p.Parse(context.Background(), []byte("%PDF"), "doc.pdf")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sections) != 1 || sections[0].Content != "Whole document text." {
		t.Errorf("unexpected sections: %+v", sections)
	}
}

func TestPDFServiceParser_ServiceError(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"encrypted document"}`))
	}))
	defer service.Close()

	p := NewPDFServiceParser(service.URL)
	_, err := p.Parse(context.Background(), []byte("%PDF"), "locked.pdf")
	if err == nil {
		t.Error("expected an error when the service reports one")
	}
}

func TestPDFServiceParser_ServiceUnreachable(t *testing.T) {
	p := NewPDFServiceParser("http://127.0.0.1:1")
	_, err := p.Parse(context.Background(), []byte("%PDF"), "doc.pdf")
	if err == nil {
		t.Error("expected an error when the service is unreachable")
	}
}

func TestPDFServiceParser_Healthy(t *testing.T) {
	service := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer service.Close()

	if !NewPDFServiceParser(service.URL).Healthy(context.Background()) {
		t.Error("expected the service to report healthy")
	}
	if NewPDFServiceParser("http://127.0.0.1:1").Healthy(context.Background()) {
		t.Error("expected an unreachable service to report unhealthy")
	}
}
