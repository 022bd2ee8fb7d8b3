package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/alienxp03/triad/internal/core"
)

// PDFExporter exports transcripts to PDF format.
type PDFExporter struct{}

// Export writes the transcript as PDF.
func (e *PDFExporter) Export(transcript *core.Transcript, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	// Title
	topic := transcript.Topic
	if topic == "" {
		topic = "Untitled debate"
	}
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, e.sanitizeText(topic), "", "C", false)
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate Information")
	pdf.Ln(8)

	id := transcript.ID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	e.addMetadataRow(pdf, "ID:", id)
	e.addMetadataRow(pdf, "Status:", string(transcript.Status))
	e.addMetadataRow(pdf, "Rounds:", fmt.Sprintf("%d of %d", len(transcript.Rounds), transcript.MaxRounds))
	e.addMetadataRow(pdf, "Created:", transcript.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	if transcript.CompletedAt != nil {
		e.addMetadataRow(pdf, "Completed:", transcript.CompletedAt.Format("January 2, 2006 at 3:04 PM"))
		e.addMetadataRow(pdf, "Duration:", formatDuration(transcript.CreatedAt, *transcript.CompletedAt))
	}
	pdf.Ln(5)

	// Participants section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Participants")
	pdf.Ln(8)
	for _, p := range core.Participants() {
		e.addParticipantRow(pdf, p)
	}
	pdf.Ln(5)

	// Debate content
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate")
	pdf.Ln(8)

	if len(transcript.Rounds) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No rounds recorded.")
		pdf.Ln(6)
	}
	for _, round := range transcript.Rounds {
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, fmt.Sprintf("Round %d   %s", round.ID, e.sanitizeText(core.RotationSummary(round.ID))))
		pdf.Ln(8)

		if round.Input != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, e.sanitizeText(round.Input), "", "", false)
			pdf.Ln(2)
		}

		for _, m := range round.Messages {
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}

			// Message header tinted with the role color
			r, g, b := tint(hexToRGB(m.Role.Info().Color))
			pdf.SetFillColor(r, g, b)
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 7, formatSpeaker(m), "", 1, "", true, 0, "")

			pdf.SetFont("Arial", "", 9)
			pdf.SetFillColor(255, 255, 255)
			pdf.MultiCell(0, 5, e.sanitizeText(m.Content), "", "", false)
			pdf.Ln(4)
		}
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from triad", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

// ContentType returns the MIME type for PDF.
func (e *PDFExporter) ContentType() string {
	return "application/pdf"
}

// Helper to add a metadata row
func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}

// Helper to add a participant row in its display color
func (e *PDFExporter) addParticipantRow(pdf *gofpdf.Fpdf, p core.Participant) {
	r, g, b := tint(hexToRGB(p.Info().Color))
	pdf.SetFillColor(r, g, b)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(40, 6, p.String(), "", 0, "", true, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "opens as "+core.RoleFor(1, p).String(), "", 1, "", false, 0, "")
}

// Sanitize text for PDF (remove problematic characters)
func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf core fonts are Windows-1252
	replacer := strings.NewReplacer(
		"\u2018", "'",   // Left single quote
		"\u2019", "'",   // Right single quote
		"\u201C", "\"",  // Left double quote
		"\u201D", "\"",  // Right double quote
		"\u2013", "-",   // En dash
		"\u2014", "--",  // Em dash
		"\u2026", "...", // Ellipsis
		"\u2022", "*",   // Bullet
		"\u00A0", " ",   // Non-breaking space
		"\u2192", "->",  // Rotation separator
	)
	return replacer.Replace(text)
}
