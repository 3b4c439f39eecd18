package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/drassist/deepresearch-go/internal/domain/ports"
)

// PDFServiceParser extracts text from PDFs via an extraction sidecar
// service over HTTP. PDF text extraction has no dependable pure-Go
// path for the formats users actually upload, so the heavy lifting
// stays in a dedicated service, one page per section.
type PDFServiceParser struct {
	serviceURL string
	client     *http.Client
}

// NewPDFServiceParser creates a PDF parser that calls the extraction service.
func NewPDFServiceParser(serviceURL string) *PDFServiceParser {
	if serviceURL == "" {
		serviceURL = "http://localhost:8081"
	}
	return &PDFServiceParser{
		serviceURL: serviceURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// extractResponse is the extraction service response format.
type extractResponse struct {
	Pages []struct {
		Number int    `json:"number"`
		Text   string `json:"text"`
	} `json:"pages"`
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Parse extracts text from PDF bytes via the sidecar, returning one
// section per page when the service reports pages.
func (p *PDFServiceParser) Parse(ctx context.Context, data []byte, filename string) ([]ports.Section, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", p.serviceURL+"/extract", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling PDF extraction service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("PDF extraction: %s", result.Error)
	}

	if len(result.Pages) > 0 {
		sections := make([]ports.Section, 0, len(result.Pages))
		for _, page := range result.Pages {
			if page.Text == "" {
				continue
			}
			sections = append(sections, ports.Section{
				Title:   fmt.Sprintf("%s page %d", filename, page.Number),
				Content: page.Text,
			})
		}
		return sections, nil
	}

	if result.Text == "" {
		return nil, nil
	}
	return []ports.Section{{Title: filename, Content: result.Text}}, nil
}

// SupportedFormats returns extensions this parser handles.
func (p *PDFServiceParser) SupportedFormats() []string {
	return []string{"pdf"}
}

// Healthy checks whether the extraction service is reachable.
func (p *PDFServiceParser) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", p.serviceURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
