package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/drassist/deepresearch-go/internal/domain/ports"
)

// DOCXParser extracts text from .docx files. A docx is a zip archive;
// the document body lives in word/document.xml as w:p paragraphs of
// w:t text runs.
type DOCXParser struct{}

// NewDOCXParser creates a DOCX parser.
func NewDOCXParser() *DOCXParser {
	return &DOCXParser{}
}

// Parse extracts the document text as a single section.
func (p *DOCXParser) Parse(ctx context.Context, data []byte, filename string) ([]ports.Section, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening %q as docx archive: %w", filename, err)
	}

	var docXML []byte
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("opening document body: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading document body: %w", err)
		}
		break
	}
	if docXML == nil {
		return nil, fmt.Errorf("%q has no word/document.xml; not a docx file", filename)
	}

	text, err := extractParagraphs(docXML)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %q: %w", filename, err)
	}
	if text == "" {
		return nil, nil
	}
	return []ports.Section{{Title: filename, Content: text}}, nil
}

// SupportedFormats returns extensions this parser handles.
func (p *DOCXParser) SupportedFormats() []string {
	return []string{"docx"}
}

// extractParagraphs walks the XML token stream collecting w:t text,
// inserting a newline at each w:p paragraph end.
func extractParagraphs(docXML []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var sb strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	// Collapse blank paragraph runs.
	lines := strings.Split(sb.String(), "\n")
	var out []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n"), nil
}
