package parser

import (
	"context"
	"testing"
)

func TestPlainTextParser_SingleSection(t *testing.T) {
	p := NewPlainTextParser()

	sections, err := p.Parse(context.Background(), []byte("  Solar panels convert sunlight.  \n"), "notes.txt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected one section, got %d", len(sections))
	}
	if sections[0].Title != "notes.txt" {
		t.Errorf("unexpected title: %q", sections[0].Title)
	}
	if sections[0].Content != "Solar panels convert sunlight." {
		t.Errorf("content not trimmed: %q", sections[0].Content)
	}
}

func TestPlainTextParser_EmptyFile(t *testing.T) {
	p := NewPlainTextParser()

	sections, err := p.Parse(context.Background(), []byte("  \n\t"), "blank.txt")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sections) != 0 {
		t.Errorf("expected no sections, got %d", len(sections))
	}
}

func TestPlainTextParser_InvalidUTF8(t *testing.T) {
	p := NewPlainTextParser()

	_, err := p.Parse(context.Background(), []byte{0xff, 0xfe, 0x00}, "binary.txt")
	if err == nil {
		t.Error("expected an error for invalid UTF-8")
	}
}

func TestMarkdownParser_SectionsByHeading(t *testing.T) {
	p := NewMarkdownParser()

	md := "intro text before headings\n# Solar\nPanels convert sunlight.\n## Wind\nTurbines spin.\n"
	sections, err := p.Parse(context.Background(), []byte(md), "energy.md")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}

	if sections[0].Title != "energy.md" || sections[0].Content != "intro text before headings" {
		t.Errorf("pre-heading content mishandled: %+v", sections[0])
	}
	if sections[1].Title != "Solar" || sections[1].Content != "Panels convert sunlight." {
		t.Errorf("unexpected section: %+v", sections[1])
	}
	if sections[2].Title != "Wind" || sections[2].Content != "Turbines spin." {
		t.Errorf("unexpected section: %+v", sections[2])
	}
}

func TestMarkdownParser_EmptySectionsDropped(t *testing.T) {
	p := NewMarkdownParser()

	md := "# Empty\n\n# Full\ncontent here\n"
	sections, err := p.Parse(context.Background(), []byte(md), "doc.md")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected the empty section dropped, got %d sections", len(sections))
	}
	if sections[0].Title != "Full" {
		t.Errorf("unexpected title: %q", sections[0].Title)
	}
}

func TestSupportedFormats(t *testing.T) {
	if got := NewPlainTextParser().SupportedFormats(); len(got) != 1 || got[0] != "txt" {
		t.Errorf("unexpected txt formats: %v", got)
	}
	if got := NewMarkdownParser().SupportedFormats(); len(got) != 2 {
		t.Errorf("unexpected md formats: %v", got)
	}
	if got := NewDOCXParser().SupportedFormats(); len(got) != 1 || got[0] != "docx" {
		t.Errorf("unexpected docx formats: %v", got)
	}
	if got := NewPDFServiceParser("").SupportedFormats(); len(got) != 1 || got[0] != "pdf" {
		t.Errorf("unexpected pdf formats: %v", got)
	}
}
