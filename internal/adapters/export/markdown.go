package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/drassist/deepresearch-go/internal/domain/entities"
)

// writeMarkdown renders the result as a markdown report. The answer is
// written verbatim so a markdown export round-trips the answer text.
func writeMarkdown(path string, result *entities.QueryResult) error {
	var sb strings.Builder

	sb.WriteString("# Query Result Report\n\n")
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", timestampOf(result))

	sb.WriteString("## Query\n\n")
	fmt.Fprintf(&sb, "%s\n\n", result.Query)

	sb.WriteString("## Answer\n\n")
	fmt.Fprintf(&sb, "%s\n\n", result.Answer)

	fmt.Fprintf(&sb, "**Confidence Score:** %.2f\n\n", result.ConfidenceScore)

	if len(result.RetrievedDocuments) > 0 {
		sb.WriteString("## Sources\n\n")
		for i, doc := range result.RetrievedDocuments {
			fmt.Fprintf(&sb, "### Source %d (relevance %.3f)\n\n", i+1, doc.SimilarityScore)
			fmt.Fprintf(&sb, "- **Document:** `%s`\n", doc.ID)
			if source, ok := doc.Metadata["source"]; ok {
				fmt.Fprintf(&sb, "- **File:** %s\n", source)
			}
			fmt.Fprintf(&sb, "\n> %s\n\n", strings.ReplaceAll(excerpt(doc.Content, 400), "\n", "\n> "))
		}
	}

	if len(result.ReasoningSteps) > 0 {
		sb.WriteString("## Reasoning Steps\n\n")
		for _, step := range result.ReasoningSteps {
			fmt.Fprintf(&sb, "%d. **%s**: %s\n", step.StepNumber, step.StepType, step.Description)
			if step.Outcome != "" {
				fmt.Fprintf(&sb, "   - Outcome: %s\n", step.Outcome)
			}
		}
		sb.WriteString("\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// excerpt truncates content for source listings without cutting a rune.
func excerpt(content string, max int) string {
	content = strings.TrimSpace(content)
	if len(content) <= max {
		return content
	}
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
