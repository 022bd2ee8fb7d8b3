package core

import (
	"encoding/json"
	"testing"
)

func TestRoleFor(t *testing.T) {
	tests := []struct {
		round int
		want  []Role
	}{
		{1, []Role{Opposition, Defense, Arbiter}},
		{2, []Role{Defense, Arbiter, Opposition}},
		{3, []Role{Arbiter, Opposition, Defense}},
		{4, []Role{Opposition, Defense, Arbiter}},
		{10, []Role{Opposition, Defense, Arbiter}},
	}

	for _, tt := range tests {
		got := Assignment(tt.round)
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("round %d, %s: got %s, want %s", tt.round, Participants()[i], got[i], tt.want[i])
			}
		}
	}
}

func TestRoleForIsPermutation(t *testing.T) {
	for round := 1; round <= 30; round++ {
		seen := make(map[Role]bool)
		for _, p := range Participants() {
			seen[RoleFor(round, p)] = true
		}
		if len(seen) != RoleCount {
			t.Errorf("round %d: got %d distinct roles, want %d", round, len(seen), RoleCount)
		}
	}
}

func TestRoleForPeriod(t *testing.T) {
	for round := 1; round <= 30; round++ {
		for _, p := range Participants() {
			if RoleFor(round+3, p) != RoleFor(round, p) {
				t.Errorf("round %d, %s: role does not repeat after 3 rounds", round, p)
			}
			if RoleFor(round+1, p) != RoleFor(round, p).Next() {
				t.Errorf("round %d, %s: role does not advance by one", round, p)
			}
		}
	}
}

func TestRoleForStartsAtCanonicalIndex(t *testing.T) {
	for _, p := range Participants() {
		if got := RoleFor(1, p); got.Index() != p.Index() {
			t.Errorf("%s: round 1 role index %d, want %d", p, got.Index(), p.Index())
		}
	}
}

func TestRoleForClampsRound(t *testing.T) {
	if RoleFor(0, Grok) != RoleFor(1, Grok) {
		t.Error("round 0 should behave like round 1")
	}
	if RoleFor(-5, GPT) != RoleFor(1, GPT) {
		t.Error("negative round should behave like round 1")
	}
}

func TestRotationSummary(t *testing.T) {
	tests := []struct {
		round int
		want  string
	}{
		{1, "C:O → G:D → G:A"},
		{2, "C:D → G:A → G:O"},
		{3, "C:A → G:O → G:D"},
		{4, "C:O → G:D → G:A"},
	}

	for _, tt := range tests {
		if got := RotationSummary(tt.round); got != tt.want {
			t.Errorf("round %d: got %q, want %q", tt.round, got, tt.want)
		}
	}
}

func TestParticipantJSON(t *testing.T) {
	msg := Message{Participant: Grok, Role: Arbiter, Content: "ruling"}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"participant":"Grok","role":"Arbiter","content":"ruling"}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got != msg {
		t.Errorf("got %+v, want %+v", got, msg)
	}

	if err := json.Unmarshal([]byte(`{"participant":"Gemini"}`), &got); err == nil {
		t.Error("expected error for unknown participant")
	}
}

func TestDisplayTable(t *testing.T) {
	table := DisplayTable()
	if len(table) != ParticipantCount {
		t.Fatalf("wrong count: got %d, want %d", len(table), ParticipantCount)
	}
	for i, row := range table {
		if row.Participant.Index() != i {
			t.Errorf("row %d out of canonical order", i)
		}
		if row.Name == "" || row.Color == "" || row.Initial == "" {
			t.Errorf("row %d missing display metadata: %+v", i, row)
		}
	}

	if FallbackContent(Claude) != "This is a mock response from Claude." {
		t.Errorf("unexpected fallback: %q", FallbackContent(Claude))
	}
}
