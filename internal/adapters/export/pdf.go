package export

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/drassist/deepresearch-go/internal/domain/entities"
)

// writePDF renders the result as a PDF report with the same sections
// as the markdown export.
func writePDF(path string, result *entities.QueryResult) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Query Result Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated: "+timestampOf(result), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	section := func(title string) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
	}
	body := func(text string) {
		pdf.MultiCell(0, 5, text, "", "L", false)
		pdf.Ln(2)
	}

	section("Query")
	body(result.Query)

	section("Answer")
	body(result.Answer)
	body(fmt.Sprintf("Confidence score: %.2f", result.ConfidenceScore))

	if len(result.RetrievedDocuments) > 0 {
		section("Sources")
		for i, doc := range result.RetrievedDocuments {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(0, 6, fmt.Sprintf("Source %d (relevance %.3f) - %s", i+1, doc.SimilarityScore, doc.ID), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 10)
			body(excerpt(doc.Content, 400))
		}
	}

	if len(result.ReasoningSteps) > 0 {
		section("Reasoning Steps")
		for _, step := range result.ReasoningSteps {
			body(fmt.Sprintf("%d. [%s] %s. Outcome: %s", step.StepNumber, step.StepType, step.Description, step.Outcome))
		}
	}

	return pdf.OutputFileAndClose(path)
}
