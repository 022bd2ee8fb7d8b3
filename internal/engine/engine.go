// Package engine runs debate sessions and archives their transcripts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alienxp03/triad/internal/core"
	"github.com/alienxp03/triad/internal/storage"
)

// ErrSessionNotFound is returned when no live session has the given ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionState is the view of a live session exposed to presentation layers.
type SessionState struct {
	ID        string             `json:"id"`
	Topic     string             `json:"topic"`
	Counter   int                `json:"counter"`
	MaxRounds int                `json:"max_rounds"`
	Terminal  bool               `json:"terminal"`
	Status    core.SessionStatus `json:"status"`
	Rotation  string             `json:"rotation"`
	Rounds    []core.Round       `json:"rounds"`
}

type liveSession struct {
	mu       sync.Mutex
	session  *Session
	archived bool
}

// Engine owns live sessions and archives them once they finish.
type Engine struct {
	mu        sync.RWMutex
	sessions  map[string]*liveSession
	storage   storage.Storage
	content   ContentGatherer
	maxRounds int
}

// New creates a new engine. store may be nil, in which case nothing is archived.
func New(store storage.Storage, content ContentGatherer, maxRounds int) *Engine {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Engine{
		sessions:  make(map[string]*liveSession),
		storage:   store,
		content:   content,
		maxRounds: maxRounds,
	}
}

// MaxRounds returns the engine's default round limit.
func (e *Engine) MaxRounds() int { return e.maxRounds }

// CreateSession starts a new live session. A non-positive maxRounds uses the engine default.
func (e *Engine) CreateSession(maxRounds int) SessionState {
	if maxRounds <= 0 {
		maxRounds = e.maxRounds
	}
	s := NewSession(maxRounds, e.content)

	e.mu.Lock()
	e.sessions[s.ID()] = &liveSession{session: s}
	e.mu.Unlock()

	slog.Debug("Created session", "session_id", s.ID(), "max_rounds", maxRounds)
	return stateOf(s)
}

func (e *Engine) lookup(id string) (*liveSession, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ls, ok := e.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return ls, nil
}

// GetSession returns the current state of a live session.
func (e *Engine) GetSession(id string) (SessionState, error) {
	ls, err := e.lookup(id)
	if err != nil {
		return SessionState{}, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	return stateOf(ls.session), nil
}

// ListSessions returns the state of every live session.
func (e *Engine) ListSessions() []SessionState {
	e.mu.RLock()
	live := make([]*liveSession, 0, len(e.sessions))
	for _, ls := range e.sessions {
		live = append(live, ls)
	}
	e.mu.RUnlock()

	states := make([]SessionState, 0, len(live))
	for _, ls := range live {
		ls.mu.Lock()
		states = append(states, stateOf(ls.session))
		ls.mu.Unlock()
	}
	return states
}

// StartRound runs the next round of a live session. started is false when
// the session was already terminal; nothing changes in that case.
func (e *Engine) StartRound(ctx context.Context, id, input string) (round core.Round, started bool, err error) {
	ls, err := e.lookup(id)
	if err != nil {
		return core.Round{}, false, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	round, started = ls.session.StartRound(ctx, input)
	if started && ls.session.IsTerminal() {
		e.archiveLocked(ls)
	}
	return round, started, nil
}

// RoundCallback is called after each round completes.
type RoundCallback func(round core.Round, state SessionState)

// RunDebate runs a live session until it is terminal. The topic is used as
// input for the first round only. The session lock is held per round, so
// readers see progress while the debate runs.
func (e *Engine) RunDebate(ctx context.Context, id, topic string, callback RoundCallback) error {
	ls, err := e.lookup(id)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			ls.mu.Lock()
			e.archiveLocked(ls)
			ls.mu.Unlock()
			return err
		}

		ls.mu.Lock()
		if ls.session.IsTerminal() {
			e.archiveLocked(ls)
			ls.mu.Unlock()
			return nil
		}

		input := ""
		if ls.session.Counter() == 1 {
			input = topic
		}

		round, started := ls.session.StartRound(ctx, input)
		state := stateOf(ls.session)
		if started && ls.session.IsTerminal() {
			e.archiveLocked(ls)
		}
		ls.mu.Unlock()

		if !started {
			return nil
		}
		if callback != nil {
			callback(round, state)
		}
	}
}

// ArchiveSession snapshots a live session into storage, finished or not.
func (e *Engine) ArchiveSession(id string) error {
	if e.storage == nil {
		return fmt.Errorf("no archive configured")
	}

	ls, err := e.lookup(id)
	if err != nil {
		return err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := e.storage.SaveTranscript(ls.session.Transcript()); err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}
	ls.archived = ls.session.IsTerminal()
	return nil
}

// archiveLocked writes a finished session to storage once. ls.mu must be held.
func (e *Engine) archiveLocked(ls *liveSession) {
	if e.storage == nil || ls.archived {
		return
	}
	if len(ls.session.rounds) == 0 {
		return
	}

	if err := e.storage.SaveTranscript(ls.session.Transcript()); err != nil {
		slog.Error("Failed to archive session", "session_id", ls.session.ID(), "error", err)
		return
	}
	ls.archived = ls.session.IsTerminal()
	slog.Debug("Archived session", "session_id", ls.session.ID(), "status", ls.session.Status())
}

// DeleteSession removes a live session. Archived transcripts are kept.
func (e *Engine) DeleteSession(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(e.sessions, id)
	return nil
}

// ListArchived returns archived transcript summaries.
func (e *Engine) ListArchived(limit, offset int) ([]*core.TranscriptSummary, error) {
	if e.storage == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return e.storage.ListTranscripts(limit, offset)
}

// GetArchived returns an archived transcript, or nil if none exists.
func (e *Engine) GetArchived(id string) (*core.Transcript, error) {
	if e.storage == nil {
		return nil, nil
	}
	return e.storage.GetTranscript(id)
}

// DeleteArchived removes an archived transcript.
func (e *Engine) DeleteArchived(id string) error {
	if e.storage == nil {
		return fmt.Errorf("no archive configured")
	}
	return e.storage.DeleteTranscript(id)
}

func stateOf(s *Session) SessionState {
	return SessionState{
		ID:        s.ID(),
		Topic:     s.Topic(),
		Counter:   s.Counter(),
		MaxRounds: s.MaxRounds(),
		Terminal:  s.IsTerminal(),
		Status:    s.Status(),
		Rotation:  s.RotationSummary(),
		Rounds:    s.Rounds(),
	}
}
