package core

// ParticipantInfo is the display metadata for a participant.
type ParticipantInfo struct {
	Name    string `json:"name"`
	Initial string `json:"initial"`
	Color   string `json:"color"` // hex, used by terminal and PDF renderers
}

// RoleInfo is the display metadata for a role.
type RoleInfo struct {
	Name    string `json:"name"`
	Initial string `json:"initial"`
	Color   string `json:"color"`
	Summary string `json:"summary"`
}

// The only participant and role lookup tables. Renderers must read these
// rather than keep their own.
var (
	participantTable = [ParticipantCount]ParticipantInfo{
		Claude: {Name: "Claude", Initial: "C", Color: "#F97316"},
		Grok:   {Name: "Grok", Initial: "G", Color: "#3B82F6"},
		GPT:    {Name: "GPT", Initial: "G", Color: "#22C55E"},
	}

	roleTable = [RoleCount]RoleInfo{
		Opposition: {Name: "Opposition", Initial: "O", Color: "#EF4444", Summary: "Challenges the premise"},
		Defense:    {Name: "Defense", Initial: "D", Color: "#3B82F6", Summary: "Argues in favour of the premise"},
		Arbiter:    {Name: "Arbiter", Initial: "A", Color: "#22C55E", Summary: "Weighs both sides and rules"},
	}
)

// Info returns the display metadata for p.
func (p Participant) Info() ParticipantInfo {
	if !p.Valid() {
		return ParticipantInfo{Name: p.String(), Initial: "?", Color: "#9CA3AF"}
	}
	return participantTable[p]
}

// Info returns the display metadata for r.
func (r Role) Info() RoleInfo {
	if !r.Valid() {
		return RoleInfo{Name: r.String(), Initial: "?", Color: "#9CA3AF"}
	}
	return roleTable[r]
}

// ParticipantDisplay pairs a participant with its display metadata.
type ParticipantDisplay struct {
	Participant Participant `json:"participant"`
	ParticipantInfo
}

// DisplayTable returns the participant display table in canonical order.
func DisplayTable() []ParticipantDisplay {
	out := make([]ParticipantDisplay, 0, ParticipantCount)
	for _, p := range Participants() {
		out = append(out, ParticipantDisplay{Participant: p, ParticipantInfo: p.Info()})
	}
	return out
}

// FallbackContent is the placeholder used when no content is available for p.
func FallbackContent(p Participant) string {
	return "This is a mock response from " + p.String() + "."
}
