// Package planner is the change-planning core: it diffs a previous and a
// proposed trip input, resolves which modules must be recomputed, executes
// the recomputation agentically with a deterministic fallback, and
// synthesizes a single canonical response.
package planner

import (
	"context"
	"log"
	"time"

	"tripflow/internal/changeset"
	"tripflow/internal/fixes"
	"tripflow/internal/llm"
	"tripflow/internal/tools"
	"tripflow/internal/trip"
)

const fallbackNotice = "Live replanning was unavailable; a simplified computation was used."

// EventSink receives per-run progress events. Implementations must be safe
// for concurrent appends.
type EventSink interface {
	Append(runID, stage string, fields map[string]any)
}

// Planner executes change-planning runs. LLM may be nil, in which case every
// run takes the deterministic path.
type Planner struct {
	LLM   llm.Client
	Tools *tools.Registry

	// MaxIterations and MaxToolCallsPerRound bound the agentic loop.
	// Zero values take the package defaults.
	MaxIterations        int
	MaxToolCallsPerRound int

	Log    *log.Logger
	Events EventSink

	// Now is the clock used for fix-option timing math. Nil means time.Now.
	Now func() time.Time
}

// Plan runs one change-planning pass. Input errors are the only condition
// that returns an error; every other failure mode resolves to a complete
// response.
func (p *Planner) Plan(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	changes := changeset.Diff(req.Previous, req.Proposed)
	plan := changeset.Resolve(changes)
	changeID := changeset.ChangeID(req.TripID, req.Previous, req.Proposed)

	var out moduleOutputs
	switch {
	case len(changes) == 0:
		// Nothing changed; the response is a no-op snapshot of current state.
	case p.LLM == nil || p.Tools == nil:
		out = runDeterministic(req, changes, plan)
	default:
		agentOut, err := p.runAgentic(ctx, req, changes, plan)
		if err != nil {
			// Planner-call failure falls back for the whole run; there is no
			// partial agentic/deterministic mixing within one response.
			p.logf("agentic path failed, falling back: %v", err)
			out = runDeterministic(req, changes, plan)
			out.notices = append(out.notices, fallbackNotice)
		} else {
			// Agent findings overlay the deterministic baseline, so fields
			// the agent omitted still carry deterministic-quality values.
			out = overlayAgent(runDeterministic(req, changes, plan), agentOut)
		}
	}

	p.emit(ctx, stageSynthesize, map[string]any{"modules": len(plan), "failures": len(out.failures)})
	resp := synthesize(req, changeID, changes, plan, out)

	if resp.Delta.Blockers.After > 0 {
		report := trip.FeasibilityReport{
			Certainty:       resp.Delta.Certainty.After,
			CertaintyReason: resp.Delta.Certainty.Reason,
			Visa:            req.Current.Feasibility.Visa,
		}
		if out.visa != nil {
			report.Visa = out.visa
		}
		resp.FixOptions = fixes.Options(report, req.Proposed, p.now())
	}

	p.emit(ctx, stageDone, map[string]any{"banner": resp.UI.Banner, "blockers": resp.Delta.Blockers.After})
	return resp, nil
}

// FixOptions is the independent smaller entry point: it proposes fixes for
// an already-known feasibility report without running a planning pass.
func (p *Planner) FixOptions(report trip.FeasibilityReport, input trip.TripInput) []fixes.Option {
	return fixes.Options(report, input, p.now())
}

func (p *Planner) maxIterations() int {
	if p.MaxIterations > 0 {
		return p.MaxIterations
	}
	return DefaultMaxIterations
}

func (p *Planner) maxToolCallsPerRound() int {
	if p.MaxToolCallsPerRound > 0 {
		return p.MaxToolCallsPerRound
	}
	return DefaultMaxToolCallsPerRound
}

func (p *Planner) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Planner) logf(format string, args ...any) {
	if p.Log != nil {
		p.Log.Printf(format, args...)
	}
}

func (p *Planner) emit(ctx context.Context, stage string, fields map[string]any) {
	if p.Events == nil {
		return
	}
	p.Events.Append(RunIDFrom(ctx), stage, fields)
}

type runIDKey struct{}

// WithRunID tags a context with the id progress events are published under.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run id, or "" when the context carries none.
func RunIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey{}).(string); ok {
		return id
	}
	return ""
}
