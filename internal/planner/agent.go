package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tripflow/internal/changeset"
	"tripflow/internal/jsonutil"
	"tripflow/internal/llm"
	"tripflow/internal/tools"
	"tripflow/internal/trip"
)

// Hard caps on the agentic loop. Iterations bound total planner calls;
// the per-round cap bounds fan-out cost when the model requests tools.
const (
	DefaultMaxIterations        = 5
	DefaultMaxToolCallsPerRound = 4
)

// Orchestrator stages, reported through the event sink.
const (
	stageAnalyze      = "analyze"
	stageToolDispatch = "tool_dispatch"
	stageSynthesize   = "synthesize"
	stageDone         = "done"
)

const noticeNoAnswer = "The planner returned no usable answer; a simplified computation filled the result."

// actionEnvelope is the expected shape of one planner response: either a
// terminal answer or a batch of tool invocations.
type actionEnvelope struct {
	Action    string          `json:"action,omitempty"` // "final" | "tools"
	ToolCalls []plannedCall   `json:"tool_calls,omitempty"`
	Final     json.RawMessage `json:"final,omitempty"`
}

type plannedCall struct {
	Name  string          `json:"tool_name"`
	Input json.RawMessage `json:"tool_input,omitempty"`
}

// parseAction decodes a planner response leniently. A payload carrying none
// of the envelope fields is assumed to be a direct final answer, the safest
// fallback for models that skip the protocol.
func parseAction(raw json.RawMessage) (actionEnvelope, error) {
	var env actionEnvelope
	if err := jsonutil.UnmarshalFlex(raw, &env); err != nil {
		return actionEnvelope{}, err
	}
	if env.Action == "" && len(env.ToolCalls) == 0 && len(env.Final) == 0 {
		env.Action = "final"
		env.Final = raw
	}
	if env.Action == "" {
		switch {
		case len(env.Final) > 0:
			env.Action = "final"
		case len(env.ToolCalls) > 0:
			env.Action = "tools"
		}
	}
	switch env.Action {
	case "final", "tools":
		return env, nil
	default:
		return actionEnvelope{}, fmt.Errorf("planner: invalid action %q", env.Action)
	}
}

// agentFindings is the structured terminal answer requested from the
// planner. Every field is optional; the synthesizer fills omissions from
// deterministic-equivalent defaults.
type agentFindings struct {
	Certainty *struct {
		Score  int    `json:"score"`
		Reason string `json:"reason,omitempty"`
	} `json:"certainty,omitempty"`
	Visa          *trip.VisaFacts     `json:"visa,omitempty"`
	Flights       *trip.FlightQuote   `json:"flights,omitempty"`
	Hotels        *trip.HotelQuote    `json:"hotels,omitempty"`
	ItineraryDays []trip.ItineraryDay `json:"itinerary_days,omitempty"`
	TotalCost     *float64            `json:"total_cost,omitempty"`
	Summary       string              `json:"summary,omitempty"`
}

// agentInput is the immutable execution context handed to the planner and,
// through it, to every tool call in a round.
type agentInput struct {
	TripID   string                     `json:"trip_id"`
	Proposed trip.TripInput             `json:"proposed"`
	Previous trip.TripInput             `json:"previous"`
	Current  trip.TripResult            `json:"current"`
	Changes  []changeset.DetectedChange `json:"changes"`
	Plan     []changeset.Module         `json:"plan"`
}

// runAgentic drives the bounded tool loop. A planner-call error aborts the
// whole agentic path (the caller falls back to deterministic); tool errors
// and parse failures never do.
func (p *Planner) runAgentic(ctx context.Context, req Request, changes []changeset.DetectedChange, plan []changeset.Module) (moduleOutputs, error) {
	maxIter := p.maxIterations()
	callCap := p.maxToolCallsPerRound()
	input := agentInput{
		TripID:   req.TripID,
		Proposed: req.Proposed,
		Previous: req.Previous,
		Current:  req.Current,
		Changes:  changes,
		Plan:     plan,
	}

	var trace []ToolResult
	for i := 0; i < maxIter; i++ {
		lastRound := i == maxIter-1
		p.emit(ctx, stageAnalyze, map[string]any{"iteration": i + 1, "tool_results": len(trace)})

		prompt := buildAgentPrompt(p.Tools.Specs(), trace, lastRound)
		raw, err := p.LLM.GenerateJSON(llm.WithStage(ctx, stageAnalyze), prompt, input)
		if err != nil {
			return moduleOutputs{}, fmt.Errorf("planner: planner call failed: %w", err)
		}

		env, perr := parseAction(raw)
		if perr != nil {
			out := moduleOutputs{trace: trace}
			out.notices = append(out.notices, noticeNoAnswer)
			return out, nil
		}
		if env.Action == "final" || len(env.ToolCalls) == 0 || lastRound {
			// Tool calls are disallowed on the final permitted iteration;
			// whatever answer exists becomes the candidate result.
			return p.finishAgentic(env.Final, trace), nil
		}

		calls := env.ToolCalls
		if len(calls) > callCap {
			calls = calls[:callCap]
		}
		p.emit(ctx, stageToolDispatch, map[string]any{"iteration": i + 1, "calls": callNames(calls)})
		trace = append(trace, p.dispatchTools(ctx, calls)...)
	}
	return p.finishAgentic(nil, trace), nil
}

// dispatchTools fans the round's calls out concurrently and joins them.
// Each call's failure becomes an error payload in its slot; siblings are
// never canceled. Results hold call-issue order for transcript stability.
func (p *Planner) dispatchTools(ctx context.Context, calls []plannedCall) []ToolResult {
	results := make([]ToolResult, len(calls))
	var g errgroup.Group
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			res := ToolResult{Name: call.Name, Input: string(call.Input)}
			out, err := p.Tools.Call(ctx, call.Name, call.Input)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.Output = string(out)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// finishAgentic decodes the candidate answer into module outputs. Extraction
// or decoding failure means "no new data", not an error; the caller overlays
// whatever parsed onto the deterministic baseline.
func (p *Planner) finishAgentic(final json.RawMessage, trace []ToolResult) moduleOutputs {
	out := moduleOutputs{trace: trace}
	if len(final) == 0 {
		out.notices = append(out.notices, noticeNoAnswer)
		return out
	}
	var f agentFindings
	if err := jsonutil.UnmarshalFlex(final, &f); err != nil {
		out.notices = append(out.notices, noticeNoAnswer)
		return out
	}
	if f.Certainty != nil {
		score := clamp(f.Certainty.Score)
		out.certainty = &score
		out.certaintyReason = f.Certainty.Reason
	}
	out.visa = f.Visa
	out.flights = f.Flights
	out.hotels = f.Hotels
	out.itinerary = f.ItineraryDays
	out.totalCost = f.TotalCost
	return out
}

const agentBasePrompt = `You are a travel replanning assistant. A trip's inputs changed and the
modules listed in "plan" must be recomputed. Use the available tools to
gather fresh facts, then answer.

Respond with exactly one JSON object per turn, either:
  {"action":"tools","tool_calls":[{"tool_name":"...","tool_input":{...}}]}
to request tool calls (at most 4 per turn), or:
  {"action":"final","final":{"certainty":{"score":0-100,"reason":"..."},
   "visa":{...},"flights":{...},"hotels":{...},"itinerary_days":[...],
   "total_cost":0,"summary":"..."}}
to finish. Omit any "final" field you have no data for.`

const agentFinalRoundNote = `

This is your last turn: tool calls are disallowed. Produce the final answer
from what you have gathered.`

func buildAgentPrompt(specs []tools.Spec, trace []ToolResult, lastRound bool) string {
	var buf bytes.Buffer
	buf.WriteString(agentBasePrompt)
	if lastRound {
		buf.WriteString(agentFinalRoundNote)
	}
	buf.WriteString("\n\n[TOOLS]\n")
	writeJSONBlock(&buf, specs)
	if len(trace) > 0 {
		buf.WriteString("\n[TOOL_RESULTS]\n")
		writeJSONBlock(&buf, trace)
	}
	return buf.String()
}

func writeJSONBlock(buf *bytes.Buffer, v any) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func callNames(calls []plannedCall) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Name
	}
	return out
}
