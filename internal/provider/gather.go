package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/alienxp03/triad/internal/core"
)

// RoundRequest describes a round whose content is being gathered.
type RoundRequest struct {
	RoundID int
	Topic   string
	Input   string
}

// Gathered is the content collected for one round, indexed by participant.
type Gathered struct {
	Content [core.ParticipantCount]string
	Errors  [core.ParticipantCount]error
}

// Failed returns the participants whose source failed.
func (g *Gathered) Failed() []core.Participant {
	var failed []core.Participant
	for _, p := range core.Participants() {
		if g.Errors[p] != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// Gather requests content for every participant concurrently and waits for
// all of them. A participant whose source fails gets the fallback
// placeholder; the failure (an error or a panic) is recorded but never
// blocks the others.
func (r *Registry) Gather(ctx context.Context, rr RoundRequest) *Gathered {
	var out Gathered

	p := pool.New().WithMaxGoroutines(core.ParticipantCount)
	for _, participant := range core.Participants() {
		participant := participant
		p.Go(func() {
			req := Request{
				RoundID:     rr.RoundID,
				Participant: participant,
				Role:        core.RoleFor(rr.RoundID, participant),
				Topic:       rr.Topic,
				Input:       rr.Input,
			}
			var content string
			var err error
			var pc panics.Catcher
			pc.Try(func() {
				content, err = r.respond(ctx, req)
			})
			if recovered := pc.Recovered(); recovered != nil {
				err = &ContentError{Source: r.boundName(participant), Participant: participant, Round: rr.RoundID, Err: recovered.AsError()}
			}
			if err != nil {
				slog.Warn("Content source failed", "round", rr.RoundID, "participant", participant.String(), "error", err)
				out.Errors[participant] = err
				content = core.FallbackContent(participant)
			}
			out.Content[participant] = content
		})
	}
	p.Wait()

	return &out
}

func (r *Registry) respond(ctx context.Context, req Request) (string, error) {
	src, err := r.SourceFor(req.Participant)
	if err != nil {
		return "", &ContentError{Source: r.boundName(req.Participant), Participant: req.Participant, Round: req.RoundID, Err: err}
	}

	content, err := src.Respond(ctx, req)
	if err != nil {
		var ce *ContentError
		if errors.As(err, &ce) {
			return "", err
		}
		return "", &ContentError{Source: src.Name(), Participant: req.Participant, Round: req.RoundID, Err: err}
	}
	if content == "" {
		return "", unavailable(src.Name(), req)
	}

	slog.Debug("Content received", "source", src.Name(), "round", req.RoundID, "participant", req.Participant.String())
	return content, nil
}

// boundName returns the name of the source bound to p, for error reporting.
func (r *Registry) boundName(p core.Participant) string {
	if name := r.Bindings()[p]; name != "" {
		return name
	}
	return fmt.Sprintf("participant %d", p.Index())
}
