package planner

import (
	"tripflow/internal/changeset"
)

// severityPenalty is the fixed certainty penalty keyed on the maximum
// severity among detected changes.
var severityPenalty = map[changeset.Severity]int{
	changeset.SeverityHigh:   10,
	changeset.SeverityMedium: 3,
	changeset.SeverityLow:    0,
}

// runDeterministic recomputes each planned module from local heuristics
// only. It never fails and performs no I/O: prices and itineraries pass
// through unchanged, certainty takes a severity penalty, and visa facts are
// reused when the route is unchanged. It backs the agentic path as the
// whole-run fallback and serves runs with no planner model configured.
func runDeterministic(req Request, changes []changeset.DetectedChange, plan []changeset.Module) moduleOutputs {
	var out moduleOutputs
	routeChanged := false
	for _, c := range changes {
		if c.Field == changeset.FieldDestination || c.Field == changeset.FieldPassport {
			routeChanged = true
		}
	}
	for _, m := range plan {
		switch m {
		case changeset.ModuleVisa:
			if !routeChanged {
				out.visa = req.Current.Feasibility.Visa
				continue
			}
			// Fresh visa facts need an external lookup; this path does not
			// call tools.
			out.failures = append(out.failures, ModuleFailure{
				Module:    changeset.ModuleVisa,
				Code:      "tool_required",
				Message:   "visa facts for the new route require an external lookup",
				Retryable: true,
			})
		case changeset.ModuleCertainty:
			score := clamp(req.Current.Feasibility.Certainty - severityPenalty[changeset.MaxSeverity(changes)])
			out.certainty = &score
			out.certaintyReason = "adjusted for pending recomputation"
		case changeset.ModuleFlights:
			out.flights = req.Current.Flights
		case changeset.ModuleHotels:
			out.hotels = req.Current.Hotels
		case changeset.ModuleItinerary:
			out.itinerary = req.Current.Itinerary
		case changeset.ModuleActionItems:
			// Action items are derived by the caller from visa state; this
			// path only flags the refresh.
			out.actionItemsStale = true
		}
	}
	return out
}

// overlayAgent merges agent findings over the deterministic baseline. Fields
// the agent produced win; anything it omitted keeps the baseline value, so a
// partial or unusable agent answer degrades to deterministic quality instead
// of reporting stale state untouched.
func overlayAgent(base, agent moduleOutputs) moduleOutputs {
	out := base
	if agent.certainty != nil {
		out.certainty = agent.certainty
		out.certaintyReason = agent.certaintyReason
	}
	if agent.visa != nil {
		out.visa = agent.visa
		out.failures = dropFailure(out.failures, changeset.ModuleVisa)
	}
	if agent.flights != nil {
		out.flights = agent.flights
	}
	if agent.hotels != nil {
		out.hotels = agent.hotels
	}
	if len(agent.itinerary) > 0 {
		out.itinerary = agent.itinerary
	}
	if agent.totalCost != nil {
		out.totalCost = agent.totalCost
	}
	out.failures = append(out.failures, agent.failures...)
	out.notices = append(out.notices, agent.notices...)
	out.trace = agent.trace
	return out
}

func dropFailure(failures []ModuleFailure, m changeset.Module) []ModuleFailure {
	out := failures[:0]
	for _, f := range failures {
		if f.Module != m {
			out = append(out, f)
		}
	}
	return out
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
