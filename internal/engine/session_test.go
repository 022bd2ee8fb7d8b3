package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/alienxp03/triad/internal/core"
	"github.com/alienxp03/triad/internal/provider"
)

// recordingGatherer captures the requests it receives.
type recordingGatherer struct {
	requests []provider.RoundRequest
}

func (g *recordingGatherer) Gather(ctx context.Context, rr provider.RoundRequest) *provider.Gathered {
	g.requests = append(g.requests, rr)
	var out provider.Gathered
	for _, p := range core.Participants() {
		out.Content[p] = fmt.Sprintf("%s in round %d", p, rr.RoundID)
	}
	return &out
}

func TestNewSession(t *testing.T) {
	s := NewSession(0, nil)

	if s.ID() == "" {
		t.Error("session ID is empty")
	}
	if s.Counter() != 1 {
		t.Errorf("wrong counter: got %d, want 1", s.Counter())
	}
	if s.MaxRounds() != DefaultMaxRounds {
		t.Errorf("wrong max rounds: got %d, want %d", s.MaxRounds(), DefaultMaxRounds)
	}
	if s.Topic() != "" {
		t.Errorf("topic should be empty, got %q", s.Topic())
	}
	if len(s.Rounds()) != 0 {
		t.Error("history should be empty")
	}
	if s.IsTerminal() {
		t.Error("new session should not be terminal")
	}
	if s.Status() != core.StatusPending {
		t.Errorf("wrong status: got %s", s.Status())
	}
}

func TestStartRound(t *testing.T) {
	ctx := context.Background()

	t.Run("AssignsRolesAndContent", func(t *testing.T) {
		g := &recordingGatherer{}
		s := NewSession(10, g)

		round, started := s.StartRound(ctx, "Is X sustainable?")
		if !started {
			t.Fatal("round was not started")
		}
		if round.ID != 1 {
			t.Errorf("wrong round id: got %d, want 1", round.ID)
		}
		if len(round.Messages) != core.ParticipantCount {
			t.Fatalf("wrong message count: got %d", len(round.Messages))
		}

		want := []core.Role{core.Opposition, core.Defense, core.Arbiter}
		for i, m := range round.Messages {
			if m.Participant != core.Participants()[i] {
				t.Errorf("message %d from %s, want canonical order", i, m.Participant)
			}
			if m.Role != want[i] {
				t.Errorf("%s: got role %s, want %s", m.Participant, m.Role, want[i])
			}
			if m.Content == "" {
				t.Errorf("%s: empty content", m.Participant)
			}
		}

		if len(g.requests) != 1 || g.requests[0].Topic != "Is X sustainable?" {
			t.Errorf("gatherer did not receive the topic: %+v", g.requests)
		}
		if s.Counter() != 2 {
			t.Errorf("counter not incremented: got %d", s.Counter())
		}
		if s.Status() != core.StatusInProgress {
			t.Errorf("wrong status: got %s", s.Status())
		}
	})

	t.Run("RotatesRoles", func(t *testing.T) {
		s := NewSession(4, nil)
		for i := 0; i < 4; i++ {
			s.StartRound(ctx, "")
		}

		rounds := s.Rounds()
		for _, r := range rounds {
			for _, m := range r.Messages {
				if m.Role != core.RoleFor(r.ID, m.Participant) {
					t.Errorf("round %d, %s: got %s, want %s", r.ID, m.Participant, m.Role, core.RoleFor(r.ID, m.Participant))
				}
			}
		}
		for i, m := range rounds[3].Messages {
			if m.Role != rounds[0].Messages[i].Role {
				t.Errorf("round 4 does not repeat round 1 for %s", m.Participant)
			}
		}
	})

	t.Run("NilGathererUsesFallback", func(t *testing.T) {
		s := NewSession(1, nil)
		round, _ := s.StartRound(ctx, "")
		for _, m := range round.Messages {
			if m.Content != core.FallbackContent(m.Participant) {
				t.Errorf("%s: got %q, want fallback", m.Participant, m.Content)
			}
		}
	})

	t.Run("TopicFixedAfterFirstRound", func(t *testing.T) {
		g := &recordingGatherer{}
		s := NewSession(10, g)

		s.StartRound(ctx, "Is X sustainable?")
		round, started := s.StartRound(ctx, "Something else entirely")
		if !started {
			t.Fatal("round 2 was not started")
		}

		if s.Topic() != "Is X sustainable?" {
			t.Errorf("topic changed: got %q", s.Topic())
		}
		if round.Input != "Something else entirely" {
			t.Errorf("later input not recorded on round: %q", round.Input)
		}
		if g.requests[1].Topic != "Is X sustainable?" || g.requests[1].Input != "Something else entirely" {
			t.Errorf("unexpected second request: %+v", g.requests[1])
		}
	})

	t.Run("EmptyFirstInputLeavesTopicEmpty", func(t *testing.T) {
		s := NewSession(10, nil)
		s.StartRound(ctx, "")
		s.StartRound(ctx, "too late")

		if s.Topic() != "" {
			t.Errorf("topic should stay empty, got %q", s.Topic())
		}
	})

	t.Run("TerminalIsNoOp", func(t *testing.T) {
		s := NewSession(10, nil)
		for i := 0; i < 10; i++ {
			if _, started := s.StartRound(ctx, ""); !started {
				t.Fatalf("round %d was not started", i+1)
			}
		}

		if !s.IsTerminal() {
			t.Fatal("session should be terminal after max rounds")
		}
		if s.Counter() != 11 {
			t.Errorf("wrong counter: got %d, want 11", s.Counter())
		}

		rounds := s.Rounds()
		if len(rounds) != 10 {
			t.Fatalf("wrong history length: got %d, want 10", len(rounds))
		}
		for i, r := range rounds {
			if r.ID != i+1 {
				t.Errorf("round %d has id %d", i, r.ID)
			}
		}

		round, started := s.StartRound(ctx, "one more")
		if started {
			t.Error("round started on terminal session")
		}
		if round.ID != 0 || len(round.Messages) != 0 {
			t.Errorf("expected zero round, got %+v", round)
		}
		if s.Counter() != 11 || len(s.Rounds()) != 10 {
			t.Error("terminal StartRound changed state")
		}
		if s.Status() != core.StatusCompleted {
			t.Errorf("wrong status: got %s", s.Status())
		}
	})

	t.Run("HistoryIsCopied", func(t *testing.T) {
		s := NewSession(2, nil)
		round, _ := s.StartRound(ctx, "topic")
		round.Messages[0].Content = "tampered"

		rounds := s.Rounds()
		rounds[0].Messages[1].Content = "tampered"

		stored := s.Rounds()[0]
		for _, m := range stored.Messages {
			if m.Content == "tampered" {
				t.Errorf("%s: history mutated through a returned value", m.Participant)
			}
		}
	})
}

func TestSessionRotationSummary(t *testing.T) {
	s := NewSession(10, nil)

	if got := s.RotationSummary(); got != "C:O → G:D → G:A" {
		t.Errorf("round 1 summary: got %q", got)
	}

	s.StartRound(context.Background(), "")
	if got := s.RotationSummary(); got != core.RotationSummary(2) {
		t.Errorf("round 2 summary: got %q, want %q", got, core.RotationSummary(2))
	}
	if s.RoleFor(2, core.Claude) != core.Defense {
		t.Errorf("RoleFor(2, Claude) = %s, want Defense", s.RoleFor(2, core.Claude))
	}
}

func TestSessionTranscript(t *testing.T) {
	s := NewSession(2, nil)
	ctx := context.Background()

	tr := s.Transcript()
	if tr.CompletedAt != nil {
		t.Error("pending transcript should not be completed")
	}

	s.StartRound(ctx, "topic")
	s.StartRound(ctx, "")

	tr = s.Transcript()
	if tr.ID != s.ID() || tr.Topic != "topic" || tr.MaxRounds != 2 {
		t.Errorf("unexpected transcript header: %+v", tr)
	}
	if tr.Status != core.StatusCompleted || tr.CompletedAt == nil {
		t.Errorf("finished transcript not marked completed: %+v", tr)
	}
	if len(tr.Rounds) != 2 || tr.MessageCount() != 6 {
		t.Errorf("wrong transcript size: %d rounds, %d messages", len(tr.Rounds), tr.MessageCount())
	}
}
