// Package core contains the core domain types for triad.
package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Participant is one of the three fixed debate entities.
// The zero value is the first participant in canonical order.
type Participant int

const (
	Claude Participant = iota
	Grok
	GPT
)

// ParticipantCount is the size of the closed participant set.
const ParticipantCount = 3

// Participants returns all participants in canonical order.
func Participants() []Participant {
	return []Participant{Claude, Grok, GPT}
}

// Index returns the participant's position in canonical order.
func (p Participant) Index() int { return int(p) }

// Valid reports whether p belongs to the closed participant set.
func (p Participant) Valid() bool { return p >= Claude && p <= GPT }

// String returns the participant's display name.
func (p Participant) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Participant(%d)", int(p))
	}
	return participantTable[p].Name
}

// MarshalJSON encodes the participant by display name.
func (p Participant) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a participant from its display name.
func (p *Participant) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseParticipant(name)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Role is one of the three debate roles, in a fixed cyclic order.
type Role int

const (
	Opposition Role = iota
	Defense
	Arbiter
)

// RoleCount is the size of the closed role set.
const RoleCount = 3

// Roles returns all roles in canonical order.
func Roles() []Role {
	return []Role{Opposition, Defense, Arbiter}
}

// Index returns the role's position in the cycle.
func (r Role) Index() int { return int(r) }

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool { return r >= Opposition && r <= Arbiter }

// Next returns the role that follows r in the cycle.
func (r Role) Next() Role { return Role((int(r) + 1) % RoleCount) }

// String returns the role's display name.
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleTable[r].Name
}

// MarshalJSON encodes the role by display name.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a role from its display name.
func (r *Role) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRole(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is a single participant's contribution to a round.
type Message struct {
	Participant Participant `json:"participant"`
	Role        Role        `json:"role"`
	Content     string      `json:"content"`
}

// Round is one full cycle of all participants responding once.
// Rounds are immutable once created.
type Round struct {
	ID       int       `json:"id"`
	Input    string    `json:"input,omitempty"` // text supplied when the round was started
	Messages []Message `json:"messages"`
}

// MessageWithRole returns the message written under role in this round.
func (r Round) MessageWithRole(role Role) (Message, bool) {
	for _, m := range r.Messages {
		if m.Role == role {
			return m, true
		}
	}
	return Message{}, false
}

// SessionStatus represents where a debate session is in its lifecycle.
type SessionStatus string

const (
	StatusPending    SessionStatus = "pending"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Transcript is a read-only snapshot of a debate session.
type Transcript struct {
	ID          string        `json:"id"`
	Topic       string        `json:"topic"`
	MaxRounds   int           `json:"max_rounds"`
	Status      SessionStatus `json:"status"`
	Rounds      []Round       `json:"rounds"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// MessageCount returns the total number of messages across all rounds.
func (t *Transcript) MessageCount() int {
	n := 0
	for _, r := range t.Rounds {
		n += len(r.Messages)
	}
	return n
}

// TranscriptSummary is a lightweight representation for listing transcripts.
type TranscriptSummary struct {
	ID         string        `json:"id"`
	Topic      string        `json:"topic"`
	Status     SessionStatus `json:"status"`
	MaxRounds  int           `json:"max_rounds"`
	RoundCount int           `json:"round_count"`
	CreatedAt  time.Time     `json:"created_at"`
}
