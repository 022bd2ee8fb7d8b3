// Package provider contains content source abstractions and implementations.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/alienxp03/triad/internal/core"
)

// Request describes the message a source is asked to produce.
type Request struct {
	RoundID     int
	Participant core.Participant
	Role        core.Role
	Topic       string
	Input       string // text supplied when the round was started
}

// Source defines the interface for message content sources.
type Source interface {
	// Name returns the source's identifier.
	Name() string

	// Respond returns the message content for the request.
	Respond(ctx context.Context, req Request) (string, error)
}

// Registry binds each participant to a content source.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]Source
	bindings [core.ParticipantCount]string
}

// NewRegistry creates a registry with every participant bound to the mock source.
func NewRegistry() *Registry {
	r := &Registry{
		sources: make(map[string]Source),
	}
	r.Register(NewMockSource())
	for _, p := range core.Participants() {
		r.bindings[p] = MockSourceName
	}
	return r
}

// Register adds a source to the registry, replacing any source with the same name.
func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[s.Name()] = s
}

// Get retrieves a source by name.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("source not found: %s", name)
	}
	return s, nil
}

// List returns the names of all registered sources, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Bind assigns the named source to p. The source must already be registered.
func (r *Registry) Bind(p core.Participant, name string) error {
	if !p.Valid() {
		return fmt.Errorf("invalid participant: %s", p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[name]; !ok {
		return fmt.Errorf("source not found: %s", name)
	}
	r.bindings[p] = name
	return nil
}

// SourceFor returns the source bound to p.
func (r *Registry) SourceFor(p core.Participant) (Source, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid participant: %s", p)
	}

	r.mu.RLock()
	name := r.bindings[p]
	r.mu.RUnlock()

	return r.Get(name)
}

// Bindings returns the source name bound to each participant.
func (r *Registry) Bindings() map[core.Participant]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[core.Participant]string, core.ParticipantCount)
	for _, p := range core.Participants() {
		out[p] = r.bindings[p]
	}
	return out
}
