package provider

import (
	"errors"
	"fmt"

	"github.com/alienxp03/triad/internal/core"
)

// ErrContentUnavailable is returned when a source has no content for a request.
var ErrContentUnavailable = errors.New("content unavailable")

// ContentError represents a failure of a source to produce a message.
type ContentError struct {
	Source      string
	Participant core.Participant
	Round       int
	Err         error
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	return fmt.Sprintf("%s source: no content for %s in round %d: %v", e.Source, e.Participant, e.Round, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContentError) Unwrap() error {
	return e.Err
}

func unavailable(source string, req Request) error {
	return &ContentError{
		Source:      source,
		Participant: req.Participant,
		Round:       req.RoundID,
		Err:         ErrContentUnavailable,
	}
}
