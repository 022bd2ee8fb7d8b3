package provider

import (
	"context"

	"github.com/alienxp03/triad/internal/core"
)

// MockSourceName is the name the mock source registers under.
const MockSourceName = "mock"

// mockScriptedRounds is how many rounds the mock source has scripted lines for.
const mockScriptedRounds = 3

var mockLines = map[core.Role]string{
	core.Opposition: "I appreciate the question, but I must firmly oppose this premise. Universal Basic Income, while well-intentioned, presents significant economic challenges that cannot be overlooked. The cost of providing a basic income to every citizen would require massive tax increases or reallocation of existing programs, potentially creating more problems than it solves.",
	core.Defense:    "I respectfully disagree with the opposition's assessment. UBI represents a necessary evolution in our economic thinking. Studies from pilot programs in Finland and Kenya have shown positive outcomes in reducing poverty and improving mental health. The automation revolution is displacing workers at an unprecedented rate, and UBI provides a safety net that allows people to retrain and pursue meaningful work.",
	core.Arbiter:    "Having heard both perspectives, I believe the truth lies in nuanced implementation. UBI is neither a panacea nor a disaster. The key question isn't whether UBI works in theory, but whether we can design a sustainable model. Evidence suggests that targeted UBI programs, perhaps starting with specific demographics or regions, could provide valuable data while managing fiscal risk.",
}

// MockSource returns static lines keyed by role for the first rounds and the
// fallback placeholder after that.
type MockSource struct{}

// NewMockSource creates a new mock source.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// Name returns the source identifier.
func (s *MockSource) Name() string { return MockSourceName }

// Respond returns the scripted line for the request's role.
func (s *MockSource) Respond(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if req.RoundID > mockScriptedRounds {
		return core.FallbackContent(req.Participant), nil
	}
	line, ok := mockLines[req.Role]
	if !ok {
		return core.FallbackContent(req.Participant), nil
	}
	return line, nil
}
