package export

import (
	"encoding/json"
	"io"

	"github.com/alienxp03/triad/internal/core"
)

// JSONExporter exports transcripts to JSON format.
type JSONExporter struct{}

// ExportData represents the full export structure.
type ExportData struct {
	Transcript   *core.Transcript          `json:"transcript"`
	Participants []core.ParticipantDisplay `json:"participants"`
	Rotations    []string                  `json:"rotations"`
}

// Export writes the transcript as JSON.
func (e *JSONExporter) Export(transcript *core.Transcript, w io.Writer) error {
	rotations := make([]string, 0, len(transcript.Rounds))
	for _, round := range transcript.Rounds {
		rotations = append(rotations, core.RotationSummary(round.ID))
	}

	data := ExportData{
		Transcript:   transcript,
		Participants: core.DisplayTable(),
		Rotations:    rotations,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return "json"
}

// ContentType returns the MIME type for JSON.
func (e *JSONExporter) ContentType() string {
	return "application/json"
}
