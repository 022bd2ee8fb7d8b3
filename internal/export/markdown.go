package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/alienxp03/triad/internal/core"
)

// MarkdownExporter exports transcripts to Markdown format.
type MarkdownExporter struct{}

// Export writes the transcript as Markdown.
func (e *MarkdownExporter) Export(transcript *core.Transcript, w io.Writer) error {
	var sb strings.Builder

	// Title
	topic := transcript.Topic
	if topic == "" {
		topic = "Untitled debate"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", topic))

	// Metadata
	sb.WriteString("## Debate Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", transcript.ID))
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", transcript.Status))
	sb.WriteString(fmt.Sprintf("- **Rounds:** %d of %d\n", len(transcript.Rounds), transcript.MaxRounds))
	sb.WriteString(fmt.Sprintf("- **Created:** %s\n", transcript.CreatedAt.Format("January 2, 2006 at 3:04 PM")))
	if transcript.CompletedAt != nil {
		sb.WriteString(fmt.Sprintf("- **Completed:** %s\n", transcript.CompletedAt.Format("January 2, 2006 at 3:04 PM")))
		sb.WriteString(fmt.Sprintf("- **Duration:** %s\n", formatDuration(transcript.CreatedAt, *transcript.CompletedAt)))
	}
	sb.WriteString("\n")

	// Participants
	sb.WriteString("## Participants\n\n")
	sb.WriteString("| Participant | Round 1 Role |\n")
	sb.WriteString("|---|---|\n")
	for _, p := range core.Participants() {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", p, core.RoleFor(1, p)))
	}
	sb.WriteString("\n")

	// Debate Content
	sb.WriteString("## Debate\n\n")

	if len(transcript.Rounds) == 0 {
		sb.WriteString("*No rounds recorded.*\n\n")
	}
	for _, round := range transcript.Rounds {
		sb.WriteString(fmt.Sprintf("### Round %d\n\n", round.ID))
		sb.WriteString(fmt.Sprintf("*Rotation: %s*\n\n", core.RotationSummary(round.ID)))
		if round.Input != "" {
			sb.WriteString(fmt.Sprintf("> %s\n\n", round.Input))
		}

		for _, m := range round.Messages {
			sb.WriteString(fmt.Sprintf("#### %s\n\n", formatSpeaker(m)))
			sb.WriteString(m.Content)
			sb.WriteString("\n\n")
		}
		sb.WriteString("---\n\n")
	}

	// Footer
	sb.WriteString("*Exported from triad*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}

// ContentType returns the MIME type for Markdown.
func (e *MarkdownExporter) ContentType() string {
	return "text/markdown; charset=utf-8"
}
