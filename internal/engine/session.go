package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alienxp03/triad/internal/core"
	"github.com/alienxp03/triad/internal/provider"
)

// DefaultMaxRounds is the round limit used when none is configured.
const DefaultMaxRounds = 10

// ContentGatherer supplies the message content of a round.
type ContentGatherer interface {
	Gather(ctx context.Context, rr provider.RoundRequest) *provider.Gathered
}

// Session is a single debate: its rounds, topic and round counter.
// A Session is not safe for concurrent use; the Engine serialises access.
type Session struct {
	id        string
	topic     string
	counter   int
	maxRounds int
	rounds    []core.Round
	content   ContentGatherer
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates a session in its initial state. A non-positive
// maxRounds falls back to DefaultMaxRounds.
func NewSession(maxRounds int, content ContentGatherer) *Session {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	now := time.Now()
	return &Session{
		id:        uuid.New().String(),
		counter:   1,
		maxRounds: maxRounds,
		content:   content,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Topic returns the fixed topic, empty until round 1 has been started with input.
func (s *Session) Topic() string { return s.topic }

// Counter returns the id of the next round to be started.
func (s *Session) Counter() int { return s.counter }

// MaxRounds returns the configured round limit.
func (s *Session) MaxRounds() int { return s.maxRounds }

// IsTerminal reports whether the round limit has been reached.
func (s *Session) IsTerminal() bool { return s.counter > s.maxRounds }

// Rounds returns a copy of the round history in order.
func (s *Session) Rounds() []core.Round {
	out := make([]core.Round, len(s.rounds))
	for i, r := range s.rounds {
		r.Messages = append([]core.Message(nil), r.Messages...)
		out[i] = r
	}
	return out
}

// RoleFor returns the role p plays in the given round.
func (s *Session) RoleFor(roundID int, p core.Participant) core.Role {
	return core.RoleFor(roundID, p)
}

// RotationSummary describes the role assignment of the upcoming round.
func (s *Session) RotationSummary() string {
	return core.RotationSummary(s.counter)
}

// StartRound runs the next round and appends it to the history.
// It is a no-op returning false once the session is terminal.
//
// On round 1 a non-empty input becomes the topic. Input given on later
// rounds is kept on the round but never changes the topic.
func (s *Session) StartRound(ctx context.Context, input string) (core.Round, bool) {
	if s.IsTerminal() {
		slog.Debug("Ignoring round start on terminal session", "session_id", s.id, "counter", s.counter)
		return core.Round{}, false
	}

	roundID := s.counter
	topic := s.topic
	if roundID == 1 && input != "" {
		topic = input
	}

	slog.Debug("Starting round", "session_id", s.id, "round", roundID, "rotation", s.RotationSummary())

	var gathered *provider.Gathered
	if s.content != nil {
		gathered = s.content.Gather(ctx, provider.RoundRequest{RoundID: roundID, Topic: topic, Input: input})
	}

	round := core.Round{
		ID:       roundID,
		Input:    input,
		Messages: make([]core.Message, 0, core.ParticipantCount),
	}
	for _, p := range core.Participants() {
		content := core.FallbackContent(p)
		if gathered != nil && gathered.Content[p] != "" {
			content = gathered.Content[p]
		}
		round.Messages = append(round.Messages, core.Message{
			Participant: p,
			Role:        core.RoleFor(roundID, p),
			Content:     content,
		})
	}

	stored := round
	stored.Messages = append([]core.Message(nil), round.Messages...)
	s.rounds = append(s.rounds, stored)
	s.counter++
	s.topic = topic
	s.updatedAt = time.Now()

	return round, true
}

// Status returns the lifecycle status derived from the round counter.
func (s *Session) Status() core.SessionStatus {
	switch {
	case s.IsTerminal():
		return core.StatusCompleted
	case len(s.rounds) > 0:
		return core.StatusInProgress
	default:
		return core.StatusPending
	}
}

// Transcript returns a read-only snapshot of the session.
func (s *Session) Transcript() *core.Transcript {
	t := &core.Transcript{
		ID:        s.id,
		Topic:     s.topic,
		MaxRounds: s.maxRounds,
		Status:    s.Status(),
		Rounds:    s.Rounds(),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.IsTerminal() {
		completed := s.updatedAt
		t.CompletedAt = &completed
	}
	return t
}
