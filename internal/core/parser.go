package core

import (
	"fmt"
	"strings"
)

// ParseParticipant parses a participant display name, case-insensitively.
func ParseParticipant(name string) (Participant, error) {
	name = strings.TrimSpace(name)
	for _, p := range Participants() {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown participant: %q", name)
}

// ParseRole parses a role display name, case-insensitively.
func ParseRole(name string) (Role, error) {
	name = strings.TrimSpace(name)
	for _, r := range Roles() {
		if strings.EqualFold(r.String(), name) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role: %q", name)
}

// SourceBinding binds a participant to a named content source.
type SourceBinding struct {
	Participant Participant
	Source      string
}

// ParseSourceBinding parses a binding of the form participant:source.
//
// Examples:
//   - "claude:mock" -> {Participant: Claude, Source: "mock"}
//   - "GPT:script"  -> {Participant: GPT, Source: "script"}
func ParseSourceBinding(spec string) (SourceBinding, error) {
	if spec == "" {
		return SourceBinding{}, fmt.Errorf("source binding cannot be empty")
	}

	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return SourceBinding{}, fmt.Errorf("invalid source binding: %s (expected participant:source)", spec)
	}

	p, err := ParseParticipant(parts[0])
	if err != nil {
		return SourceBinding{}, err
	}

	source := strings.TrimSpace(parts[1])
	if source == "" {
		return SourceBinding{}, fmt.Errorf("source cannot be empty in binding: %s", spec)
	}

	return SourceBinding{Participant: p, Source: source}, nil
}

// ParseSourceBindings parses a comma-separated list of bindings.
// A participant bound twice keeps the last binding.
func ParseSourceBindings(specs string) ([]SourceBinding, error) {
	if strings.TrimSpace(specs) == "" {
		return nil, nil
	}

	parts := strings.Split(specs, ",")
	bindings := make([]SourceBinding, 0, len(parts))
	for _, spec := range parts {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		b, err := ParseSourceBinding(spec)
		if err != nil {
			return nil, fmt.Errorf("invalid binding %q: %w", spec, err)
		}
		bindings = append(bindings, b)
	}

	return bindings, nil
}
