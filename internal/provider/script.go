package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alienxp03/triad/internal/core"
)

// ScriptSourceName is the default name of a script-backed source.
const ScriptSourceName = "script"

// Script holds pre-written debate lines, keyed by round and participant name.
type Script struct {
	Rounds map[int]map[string]string `yaml:"rounds"`
}

// ScriptSource serves content from a Script. Lines missing from the script
// fail with ErrContentUnavailable.
type ScriptSource struct {
	name  string
	lines map[int]map[core.Participant]string
}

// NewScriptSource creates a script source from an in-memory script.
func NewScriptSource(name string, script Script) (*ScriptSource, error) {
	if name == "" {
		name = ScriptSourceName
	}

	lines := make(map[int]map[core.Participant]string, len(script.Rounds))
	for round, entries := range script.Rounds {
		if round < 1 {
			return nil, fmt.Errorf("invalid round %d in script", round)
		}
		byParticipant := make(map[core.Participant]string, len(entries))
		for who, content := range entries {
			p, err := core.ParseParticipant(who)
			if err != nil {
				return nil, fmt.Errorf("round %d: %w", round, err)
			}
			byParticipant[p] = strings.TrimSpace(content)
		}
		lines[round] = byParticipant
	}

	return &ScriptSource{name: name, lines: lines}, nil
}

// LoadScriptSource reads a YAML script from path.
func LoadScriptSource(name, path string) (*ScriptSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	return NewScriptSource(name, script)
}

// Name returns the source identifier.
func (s *ScriptSource) Name() string { return s.name }

// Respond returns the scripted line for the request's round and participant.
func (s *ScriptSource) Respond(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, ok := s.lines[req.RoundID][req.Participant]
	if !ok || content == "" {
		return "", unavailable(s.name, req)
	}
	return content, nil
}

// Rounds returns how many distinct rounds the script covers.
func (s *ScriptSource) Rounds() int {
	return len(s.lines)
}
