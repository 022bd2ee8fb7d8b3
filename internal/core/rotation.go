package core

import "strings"

// RotationSeparator joins the per-participant codes of a rotation summary.
const RotationSeparator = " → "

// RoleFor returns the role p plays in the given round.
// Each participant starts at its own canonical index and advances one role
// per round, so every round assigns a permutation of the roles.
func RoleFor(roundID int, p Participant) Role {
	if roundID < 1 {
		roundID = 1
	}
	return Role((p.Index() + (roundID-1)%RoleCount) % RoleCount)
}

// Assignment returns the roles of all participants in canonical order for the given round.
func Assignment(roundID int) []Role {
	roles := make([]Role, 0, ParticipantCount)
	for _, p := range Participants() {
		roles = append(roles, RoleFor(roundID, p))
	}
	return roles
}

// RotationSummary encodes the assignment of a round as "C:O → G:D → G:A".
func RotationSummary(roundID int) string {
	codes := make([]string, 0, ParticipantCount)
	for _, p := range Participants() {
		codes = append(codes, p.Info().Initial+":"+RoleFor(roundID, p).Info().Initial)
	}
	return strings.Join(codes, RotationSeparator)
}
