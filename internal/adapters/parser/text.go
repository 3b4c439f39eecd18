// Package parser provides document parsing adapters.
// Clean Architecture: Adapters implementing ports.DocumentParser.
package parser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/drassist/deepresearch-go/internal/domain/ports"
)

// PlainTextParser handles .txt files: the whole file is one section.
type PlainTextParser struct{}

// NewPlainTextParser creates a plain text parser.
func NewPlainTextParser() *PlainTextParser {
	return &PlainTextParser{}
}

// Parse returns the file content as a single section.
func (p *PlainTextParser) Parse(ctx context.Context, data []byte, filename string) ([]ports.Section, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%q is not valid UTF-8 text", filename)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return nil, nil
	}
	return []ports.Section{{Title: filename, Content: content}}, nil
}

// SupportedFormats returns extensions this parser handles.
func (p *PlainTextParser) SupportedFormats() []string {
	return []string{"txt"}
}

// MarkdownParser handles .md files, splitting them into one section
// per top- or second-level heading so each topic indexes separately.
type MarkdownParser struct{}

// NewMarkdownParser creates a markdown parser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse splits the markdown into sections by heading. Content before
// the first heading becomes its own section titled after the file.
func (p *MarkdownParser) Parse(ctx context.Context, data []byte, filename string) ([]ports.Section, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%q is not valid UTF-8 text", filename)
	}

	var sections []ports.Section
	title := filename
	var body strings.Builder

	flush := func() {
		content := strings.TrimSpace(body.String())
		if content != "" {
			sections = append(sections, ports.Section{Title: title, Content: content})
		}
		body.Reset()
	}

	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ") {
			flush()
			title = strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	flush()

	return sections, nil
}

// SupportedFormats returns extensions this parser handles.
func (p *MarkdownParser) SupportedFormats() []string {
	return []string{"md", "markdown"}
}
