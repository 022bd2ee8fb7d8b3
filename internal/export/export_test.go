package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alienxp03/triad/internal/core"
)

func testTranscript() *core.Transcript {
	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	completed := created.Add(45 * time.Second)

	var rounds []core.Round
	for id := 1; id <= 2; id++ {
		round := core.Round{ID: id}
		for _, p := range core.Participants() {
			round.Messages = append(round.Messages, core.Message{
				Participant: p,
				Role:        core.RoleFor(id, p),
				Content:     "Argument from " + p.String() + ", round " + string(rune('0'+id)),
			})
		}
		rounds = append(rounds, round)
	}
	rounds[1].Input = "Consider automation."

	return &core.Transcript{
		ID:          "0f8fad5b-d9cb-469f-a165-70867728950e",
		Topic:       "Is UBI sustainable?",
		MaxRounds:   2,
		Status:      core.StatusCompleted,
		Rounds:      rounds,
		CreatedAt:   created,
		UpdatedAt:   completed,
		CompletedAt: &completed,
	}
}

func TestGetExporter(t *testing.T) {
	tests := []struct {
		format Format
		ext    string
	}{
		{FormatMarkdown, "md"},
		{"md", "md"},
		{FormatPDF, "pdf"},
		{FormatJSON, "json"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			exp, err := GetExporter(tt.format)
			if err != nil {
				t.Fatalf("GetExporter failed: %v", err)
			}
			if exp.FileExtension() != tt.ext {
				t.Errorf("expected extension %q, got %q", tt.ext, exp.FileExtension())
			}
		})
	}

	_, err := GetExporter("docx")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "supported: markdown, pdf, json") {
		t.Errorf("error should list supported formats: %v", err)
	}
}

func TestGenerateFilename(t *testing.T) {
	tr := testTranscript()
	tr.Topic = "Is UBI: good/bad?"

	got := GenerateFilename(tr, "md")
	want := "debate_20250314_Is_UBI-_good-bad.md"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	tr.Topic = ""
	if got := GenerateFilename(tr, "pdf"); got != "debate_20250314_untitled.pdf" {
		t.Errorf("unexpected filename for empty topic: %q", got)
	}

	tr.Topic = strings.Repeat("x", 80)
	if got := GenerateFilename(tr, "json"); len(got) != len("debate_20250314_.json")+50 {
		t.Errorf("long topic not truncated: %q", got)
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(testTranscript(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Is UBI sustainable?",
		"- **Rounds:** 2 of 2",
		"- **Duration:** 45 seconds",
		"### Round 1",
		"*Rotation: C:O → G:D → G:A*",
		"#### Claude as Opposition",
		"#### GPT as Opposition",
		"> Consider automation.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportEmpty(t *testing.T) {
	tr := testTranscript()
	tr.Rounds = nil
	tr.CompletedAt = nil

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(tr, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "*No rounds recorded.*") {
		t.Error("empty transcript not reported")
	}
}

func TestJSONExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(testTranscript(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if data.Transcript.Topic != "Is UBI sustainable?" || len(data.Transcript.Rounds) != 2 {
		t.Errorf("unexpected transcript: %+v", data.Transcript)
	}
	if data.Transcript.Rounds[1].Messages[0].Role != core.Defense {
		t.Errorf("role lost in export: %s", data.Transcript.Rounds[1].Messages[0].Role)
	}
	if len(data.Participants) != core.ParticipantCount {
		t.Errorf("expected %d participants, got %d", core.ParticipantCount, len(data.Participants))
	}
	if len(data.Rotations) != 2 || data.Rotations[1] != "C:D → G:A → G:O" {
		t.Errorf("unexpected rotations: %v", data.Rotations)
	}
}

func TestPDFExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&PDFExporter{}).Export(testTranscript(), &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestHexToRGB(t *testing.T) {
	r, g, b := hexToRGB("#F97316")
	if r != 0xF9 || g != 0x73 || b != 0x16 {
		t.Errorf("unexpected rgb: %d %d %d", r, g, b)
	}
	if r, g, b := hexToRGB("bogus"); r != 128 || g != 128 || b != 128 {
		t.Errorf("malformed color should be grey, got %d %d %d", r, g, b)
	}
}
