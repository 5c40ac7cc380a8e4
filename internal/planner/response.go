package planner

import (
	"fmt"
	"strings"

	"tripflow/internal/changeset"
	"tripflow/internal/fixes"
	"tripflow/internal/trip"
)

// Source tags what triggered the change.
type Source string

const (
	SourceEdit        Source = "edit"         // explicit form edit
	SourceQuickAdjust Source = "quick_adjust" // quick adjustment chip
	SourceFixAction   Source = "fix_action"   // applied blocker-fix option
)

// Request is the single replan input contract.
type Request struct {
	TripID   string          `json:"trip_id"`
	Previous trip.TripInput  `json:"previous"`
	Proposed trip.TripInput  `json:"proposed"`
	Current  trip.TripResult `json:"current"`
	Source   Source          `json:"source,omitempty"`
}

// Validate rejects structurally unusable requests before any processing.
func (r Request) Validate() error {
	if strings.TrimSpace(r.TripID) == "" {
		return fmt.Errorf("planner: trip_id is required")
	}
	if err := r.Previous.Validate(); err != nil {
		return fmt.Errorf("planner: previous input: %w", err)
	}
	if err := r.Proposed.Validate(); err != nil {
		return fmt.Errorf("planner: proposed input: %w", err)
	}
	return nil
}

// ModuleFailure records a module that could not be recomputed. Failures are
// per-module; they never abort the run.
type ModuleFailure struct {
	Module    changeset.Module `json:"module"`
	Code      string           `json:"code"`
	Message   string           `json:"message"`
	Retryable bool             `json:"retryable"`
}

// CertaintyDelta is the before/after feasibility score.
type CertaintyDelta struct {
	Before int    `json:"before"`
	After  int    `json:"after"`
	Reason string `json:"reason,omitempty"`
}

// CostDelta is the before/after total cost.
type CostDelta struct {
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	Delta    float64 `json:"delta"`
	Currency string  `json:"currency,omitempty"`
}

// BlockerDelta tracks blocker counts and descriptions across the change.
type BlockerDelta struct {
	Before     int      `json:"before"`
	After      int      `json:"after"`
	Resolved   []string `json:"resolved,omitempty"`
	Introduced []string `json:"introduced,omitempty"`
}

// ItineraryDelta is the before/after day count.
type ItineraryDelta struct {
	DaysBefore int `json:"days_before"`
	DaysAfter  int `json:"days_after"`
}

// DeltaSummary is the before/after snapshot of the run.
type DeltaSummary struct {
	Certainty CertaintyDelta `json:"certainty"`
	Cost      CostDelta      `json:"cost"`
	Blockers  BlockerDelta   `json:"blockers"`
	Itinerary ItineraryDelta `json:"itinerary"`
}

// Banner tones.
const (
	BannerGreen = "green"
	BannerAmber = "amber"
	BannerRed   = "red"
)

// UIInstructions tells the caller how to render the outcome. Blockers and
// failures surface here, never as errors at the boundary.
type UIInstructions struct {
	Banner    string   `json:"banner"`
	Highlight []string `json:"highlight,omitempty"`
	Toasts    []string `json:"toasts,omitempty"`
}

// ModuleData carries the updated per-module values. A nil field means the
// run produced no fresh value for that module.
type ModuleData struct {
	Visa             *trip.VisaFacts     `json:"visa,omitempty"`
	Flights          *trip.FlightQuote   `json:"flights,omitempty"`
	Hotels           *trip.HotelQuote    `json:"hotels,omitempty"`
	Itinerary        []trip.ItineraryDay `json:"itinerary,omitempty"`
	ActionItemsStale bool                `json:"action_items_stale,omitempty"`
}

// Response is the terminal artifact of a planning run. Its shape is
// identical regardless of which execution path produced it; callers must
// not need to know whether the agentic or deterministic path ran.
type Response struct {
	ChangeID   string                     `json:"change_id"`
	Source     Source                     `json:"source,omitempty"`
	Changes    []changeset.DetectedChange `json:"changes"`
	Plan       []changeset.Module         `json:"plan"`
	Delta      DeltaSummary               `json:"delta"`
	UI         UIInstructions             `json:"ui"`
	Updated    ModuleData                 `json:"updated"`
	Failures   []ModuleFailure            `json:"failures,omitempty"`
	FixOptions []fixes.Option             `json:"fix_options,omitempty"`
}

// moduleOutputs is the uniform partial-output value either execution path
// hands to the synthesizer. Nil pointers mean "no fresh data; fall back".
type moduleOutputs struct {
	visa             *trip.VisaFacts
	flights          *trip.FlightQuote
	hotels           *trip.HotelQuote
	itinerary        []trip.ItineraryDay
	certainty        *int
	certaintyReason  string
	totalCost        *float64
	actionItemsStale bool
	failures         []ModuleFailure
	notices          []string
	trace            []ToolResult
}

// ToolResult is one transcript entry of an agentic round. Entries appear in
// call-issue order regardless of completion timing.
type ToolResult struct {
	Name   string `json:"name"`
	Input  string `json:"input,omitempty"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}
