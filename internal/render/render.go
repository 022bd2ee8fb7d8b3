// Package render draws debate rounds and tables for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alienxp03/triad/internal/core"
)

// DefaultWidth is the wrap width for message content.
const DefaultWidth = 80

var (
	MutedColor  = lipgloss.Color("#9CA3AF")
	BorderColor = lipgloss.Color("#6B7280")

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#A78BFA"))

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	Muted = lipgloss.NewStyle().Foreground(MutedColor)

	Rule = lipgloss.NewStyle().Foreground(BorderColor)

	tableHeader = lipgloss.NewStyle().Bold(true).Foreground(MutedColor)
)

// ParticipantStyle returns the foreground style for p.
func ParticipantStyle(p core.Participant) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Info().Color))
}

// RoleBadge renders a role as a colored inline badge.
func RoleBadge(r core.Role) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(r.Info().Color)).
		Render("[" + r.String() + "]")
}

// Divider returns a horizontal rule of the given width.
func Divider(width int) string {
	return Rule.Render(strings.Repeat("─", width))
}

// Header renders the banner shown when a debate starts.
func Header(topic string, id string, maxRounds int) string {
	if topic == "" {
		topic = "Untitled debate"
	}
	var sb strings.Builder
	sb.WriteString(Title.Render("Debate: " + topic))
	sb.WriteString("\n")
	sb.WriteString(Subtitle.Render(fmt.Sprintf("Rounds: %d | ID: %s", maxRounds, id)))
	sb.WriteString("\n")
	return sb.String()
}

// Round renders a round with every participant's message wrapped to width,
// ordered by role.
func Round(round core.Round, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	body := lipgloss.NewStyle().Width(width).PaddingLeft(2)

	var sb strings.Builder
	sb.WriteString(Divider(width))
	sb.WriteString("\n")
	sb.WriteString(Title.Render(fmt.Sprintf("Round %d", round.ID)))
	sb.WriteString("  ")
	sb.WriteString(Muted.Render(core.RotationSummary(round.ID)))
	sb.WriteString("\n")
	if round.Input != "" {
		sb.WriteString(Subtitle.Render("> " + round.Input))
		sb.WriteString("\n")
	}

	// Speakers in role order: the objection, the answer, then the ruling.
	for _, role := range core.Roles() {
		m, ok := round.MessageWithRole(role)
		if !ok {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(ParticipantStyle(m.Participant).Render(m.Participant.String()))
		sb.WriteString(" ")
		sb.WriteString(RoleBadge(m.Role))
		sb.WriteString("\n")
		sb.WriteString(body.Render(m.Content))
		sb.WriteString("\n")
	}
	return sb.String()
}

// Transcript renders a whole archived transcript.
func Transcript(t *core.Transcript, width int) string {
	var sb strings.Builder
	sb.WriteString(Header(t.Topic, t.ID, t.MaxRounds))
	sb.WriteString(Subtitle.Render(fmt.Sprintf("Status: %s | Created: %s", t.Status, t.CreatedAt.Format("2006-01-02 15:04"))))
	sb.WriteString("\n")
	if len(t.Rounds) == 0 {
		sb.WriteString(Muted.Render("No rounds recorded."))
		sb.WriteString("\n")
	}
	for _, round := range t.Rounds {
		sb.WriteString("\n")
		sb.WriteString(Round(round, width))
	}
	return sb.String()
}

// RotationTable renders the role of every participant for rounds 1..rounds.
func RotationTable(rounds int) string {
	if rounds <= 0 {
		rounds = core.RoleCount
	}

	cell := lipgloss.NewStyle().Width(14)
	first := lipgloss.NewStyle().Width(8)

	var sb strings.Builder
	header := []string{first.Render(tableHeader.Render("ROUND"))}
	for _, p := range core.Participants() {
		header = append(header, cell.Render(ParticipantStyle(p).Render(p.String())))
	}
	header = append(header, tableHeader.Render("SUMMARY"))
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	sb.WriteString("\n")

	for id := 1; id <= rounds; id++ {
		row := []string{first.Render(fmt.Sprintf("%d", id))}
		for _, r := range core.Assignment(id) {
			row = append(row, cell.Render(RoleBadge(r)))
		}
		row = append(row, Muted.Render(core.RotationSummary(id)))
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		sb.WriteString("\n")
	}
	return sb.String()
}

// ParticipantTable renders the participant display table with source bindings.
// bindings may be nil.
func ParticipantTable(bindings map[core.Participant]string) string {
	name := lipgloss.NewStyle().Width(10)
	initial := lipgloss.NewStyle().Width(9)
	color := lipgloss.NewStyle().Width(10)

	var sb strings.Builder
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		name.Render(tableHeader.Render("NAME")),
		initial.Render(tableHeader.Render("INITIAL")),
		color.Render(tableHeader.Render("COLOR")),
		tableHeader.Render("SOURCE"),
	))
	sb.WriteString("\n")

	for _, d := range core.DisplayTable() {
		source := "-"
		if s, ok := bindings[d.Participant]; ok {
			source = s
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			name.Render(ParticipantStyle(d.Participant).Render(d.Name)),
			initial.Render(d.Initial),
			color.Render(d.Color),
			source,
		))
		sb.WriteString("\n")
	}
	return sb.String()
}
