package planner

import (
	"fmt"

	"tripflow/internal/changeset"
	"tripflow/internal/trip"
)

// sectionFor maps a recompute module to the UI section it highlights.
var sectionFor = map[changeset.Module]string{
	changeset.ModuleVisa:        "visa",
	changeset.ModuleFlights:     "flights",
	changeset.ModuleHotels:      "hotels",
	changeset.ModuleItinerary:   "itinerary",
	changeset.ModuleCertainty:   "summary",
	changeset.ModuleActionItems: "checklist",
}

// synthesize merges whichever execution path ran into the canonical
// response. It is a pure function: agent output takes precedence, previous
// values are the fallback for any field the run did not produce.
func synthesize(req Request, changeID string, changes []changeset.DetectedChange, plan []changeset.Module, out moduleOutputs) *Response {
	prevReport := req.Current.Feasibility

	certaintyAfter := prevReport.Certainty
	reason := prevReport.CertaintyReason
	if out.certainty != nil {
		certaintyAfter = *out.certainty
		reason = out.certaintyReason
	}

	costAfter := req.Current.Cost.Total
	if out.totalCost != nil {
		costAfter = *out.totalCost
	}

	visaAfter := prevReport.Visa
	if out.visa != nil {
		visaAfter = out.visa
	}
	blockers := blockerDelta(prevReport.Visa, visaAfter, req.Proposed.Destination)

	daysAfter := len(req.Current.Itinerary)
	if len(out.itinerary) > 0 {
		daysAfter = len(out.itinerary)
	}

	resp := &Response{
		ChangeID: changeID,
		Source:   req.Source,
		Changes:  changes,
		Plan:     plan,
		Delta: DeltaSummary{
			Certainty: CertaintyDelta{Before: prevReport.Certainty, After: certaintyAfter, Reason: reason},
			Cost: CostDelta{
				Before:   req.Current.Cost.Total,
				After:    costAfter,
				Delta:    costAfter - req.Current.Cost.Total,
				Currency: req.Current.Cost.Currency,
			},
			Blockers:  blockers,
			Itinerary: ItineraryDelta{DaysBefore: len(req.Current.Itinerary), DaysAfter: daysAfter},
		},
		UI: UIInstructions{
			Banner:    bannerFor(blockers.After),
			Highlight: highlights(plan),
			Toasts:    toasts(blockers, out),
		},
		Updated: ModuleData{
			Visa:             out.visa,
			Flights:          out.flights,
			Hotels:           out.hotels,
			Itinerary:        out.itinerary,
			ActionItemsStale: out.actionItemsStale,
		},
		Failures: out.failures,
	}
	return resp
}

// blockerDelta derives the blocker change from visa status alone. Visa is
// the only real blocker source in production; budget and safety concerns
// lower certainty instead of blocking.
func blockerDelta(before, after *trip.VisaFacts, destination string) BlockerDelta {
	d := BlockerDelta{}
	beforeBlocked := before != nil && before.Blocking()
	afterBlocked := after != nil && after.Blocking()
	if beforeBlocked {
		d.Before = 1
	}
	if afterBlocked {
		d.After = 1
	}
	desc := fmt.Sprintf("visa required for %s", destination)
	if after != nil && after.Destination != "" {
		desc = fmt.Sprintf("visa required for %s", after.Destination)
	}
	switch {
	case beforeBlocked && !afterBlocked:
		if before.Destination != "" {
			d.Resolved = []string{fmt.Sprintf("visa required for %s", before.Destination)}
		} else {
			d.Resolved = []string{desc}
		}
	case !beforeBlocked && afterBlocked:
		d.Introduced = []string{desc}
	}
	return d
}

func bannerFor(blockerCount int) string {
	switch {
	case blockerCount == 0:
		return BannerGreen
	case blockerCount <= 2:
		return BannerAmber
	default:
		return BannerRed
	}
}

// highlights maps the recompute plan to UI sections, preserving plan order.
func highlights(plan []changeset.Module) []string {
	var out []string
	for _, m := range plan {
		if s, ok := sectionFor[m]; ok {
			out = append(out, s)
		}
	}
	return out
}

func toasts(blockers BlockerDelta, out moduleOutputs) []string {
	var ts []string
	for _, b := range blockers.Introduced {
		ts = append(ts, "New blocker: "+b)
	}
	for _, b := range blockers.Resolved {
		ts = append(ts, "Blocker resolved: "+b)
	}
	for _, f := range out.failures {
		ts = append(ts, fmt.Sprintf("Could not refresh %s: %s", f.Module, f.Message))
	}
	ts = append(ts, out.notices...)
	return ts
}
