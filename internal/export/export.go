// Package export handles exporting debate transcripts to various formats.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alienxp03/triad/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Formats lists the supported export formats.
func Formats() []Format {
	return []Format{FormatMarkdown, FormatPDF, FormatJSON}
}

// Exporter defines the interface for exporting transcripts.
type Exporter interface {
	Export(transcript *core.Transcript, w io.Writer) error
	FileExtension() string
	ContentType() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown, "md":
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		names := make([]string, 0, len(Formats()))
		for _, f := range Formats() {
			names = append(names, string(f))
		}
		return nil, fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(names, ", "))
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(transcript *core.Transcript, ext string) string {
	// Sanitize topic for filename
	topic := transcript.Topic
	if topic == "" {
		topic = "untitled"
	}
	if len(topic) > 50 {
		topic = topic[:50]
	}

	// Replace unsafe characters
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	topic = replacer.Replace(topic)

	timestamp := transcript.CreatedAt.Format("20060102")
	return fmt.Sprintf("debate_%s_%s.%s", timestamp, topic, ext)
}

// Helper to format a message speaker line
func formatSpeaker(m core.Message) string {
	return fmt.Sprintf("%s as %s", m.Participant, m.Role)
}

// Helper to format duration
func formatDuration(start, end time.Time) string {
	d := end.Sub(start)
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}

// hexToRGB converts "#RRGGBB" to its components. Malformed input yields grey.
func hexToRGB(hex string) (r, g, b int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}

// tint lightens a color toward white for use as a background.
func tint(r, g, b int) (int, int, int) {
	return 255 - (255-r)/4, 255 - (255-g)/4, 255 - (255-b)/4
}
