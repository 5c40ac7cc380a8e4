package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tripflow/internal/trip"
)

// --------------------- cost.estimate ---------------------

// dailySpendPerSeat is the flat per-person-per-day allowance used when no
// better signal exists.
const dailySpendPerSeat = 50.0

type costEstimateTool struct {
	flights FlightSource
	hotels  HotelSource
}

func newCostEstimateTool(flights FlightSource, hotels HotelSource) *costEstimateTool {
	return &costEstimateTool{flights: flights, hotels: hotels}
}

func (t *costEstimateTool) Spec() Spec {
	return Spec{
		Name:        "cost.estimate",
		Description: "Estimate a full trip cost breakdown. Accepts known flight/hotel quotes; quotes missing from the input are estimated.",
		InputSchema: json.RawMessage(`{"input":"trip_input","flights":"flight_quote?","hotels":"hotel_quote?"}`),
	}
}

type costEstimateInput struct {
	Input   trip.TripInput    `json:"input"`
	Flights *trip.FlightQuote `json:"flights,omitempty"`
	Hotels  *trip.HotelQuote  `json:"hotels,omitempty"`
}

func (t *costEstimateTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in costEstimateInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("cost.estimate: decode input: %w", err)
	}
	if strings.TrimSpace(in.Input.Destination) == "" {
		return nil, fmt.Errorf("cost.estimate: input.destination is required")
	}
	breakdown, err := EstimateCost(ctx, in.Input, in.Flights, in.Hotels, t.flights, t.hotels)
	if err != nil {
		return nil, fmt.Errorf("cost.estimate: %w", err)
	}
	return json.Marshal(breakdown)
}

// EstimateCost computes a breakdown from quotes, filling missing quotes from
// the given sources. Also used directly by the deterministic path.
func EstimateCost(ctx context.Context, in trip.TripInput, flights *trip.FlightQuote, hotels *trip.HotelQuote, fs FlightSource, hs HotelSource) (trip.CostBreakdown, error) {
	if fs == nil {
		fs = EstimatorFlightSource{}
	}
	if hs == nil {
		hs = EstimatorHotelSource{}
	}
	seats := in.Travelers.Seats()
	if seats <= 0 {
		seats = 1
	}
	if flights == nil {
		q, err := fs.Search(ctx, in.Origin, in.Destination, in.Dates, seats)
		if err != nil {
			return trip.CostBreakdown{}, err
		}
		flights = &q
	}
	if hotels == nil {
		q, err := hs.Search(ctx, in.Destination, in.Dates, in.Preferences.HotelClass)
		if err != nil {
			return trip.CostBreakdown{}, err
		}
		hotels = &q
	}
	nights := in.Dates.Nights()
	days := nights + 1
	out := trip.CostBreakdown{
		Flights:  flights.PricePerPerson * float64(seats),
		Lodging:  hotels.PricePerNight * float64(nights),
		Daily:    dailySpendPerSeat * float64(seats) * float64(days),
		Currency: flights.Currency,
	}
	out.Total = out.Flights + out.Lodging + out.Daily
	return out, nil
}

// --------------------- safety.assess ---------------------

type safetyAssessTool struct {
	source  SafetySource
	timeout time.Duration
}

func newSafetyAssessTool(source SafetySource, timeout time.Duration) *safetyAssessTool {
	return &safetyAssessTool{source: source, timeout: timeout}
}

func (t *safetyAssessTool) Spec() Spec {
	return Spec{
		Name:        "safety.assess",
		Description: "Rate destination safety on a 0 (safe) to 4 (do not travel) advisory scale.",
		InputSchema: json.RawMessage(`{"destination":"string"}`),
	}
}

type safetyAssessInput struct {
	Destination string `json:"destination"`
}

type safetyAssessOutput struct {
	Level   int    `json:"level"`
	Summary string `json:"summary"`
}

func (t *safetyAssessTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in safetyAssessInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("safety.assess: decode input: %w", err)
	}
	if strings.TrimSpace(in.Destination) == "" {
		return nil, fmt.Errorf("safety.assess: destination is required")
	}
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	level, summary, err := t.source.Assess(callCtx, in.Destination)
	if err != nil {
		level, summary, err = EstimatorSafetySource{}.Assess(ctx, in.Destination)
		if err != nil {
			return nil, fmt.Errorf("safety.assess: %w", err)
		}
	}
	return json.Marshal(safetyAssessOutput{Level: level, Summary: summary})
}

// --------------------- certainty.score ---------------------

type certaintyScoreTool struct{}

func newCertaintyScoreTool() *certaintyScoreTool { return &certaintyScoreTool{} }

func (t *certaintyScoreTool) Spec() Spec {
	return Spec{
		Name:        "certainty.score",
		Description: "Score trip feasibility 0-100 from visa facts, budget fit, and safety level.",
		InputSchema: json.RawMessage(`{"input":"trip_input","visa":"visa_facts?","total_cost":"number?","safety_level":"int?"}`),
	}
}

type certaintyScoreInput struct {
	Input       trip.TripInput  `json:"input"`
	Visa        *trip.VisaFacts `json:"visa,omitempty"`
	TotalCost   *float64        `json:"total_cost,omitempty"`
	SafetyLevel *int            `json:"safety_level,omitempty"`
}

type certaintyScoreOutput struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

func (t *certaintyScoreTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in certaintyScoreInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("certainty.score: decode input: %w", err)
	}
	score, reason := ScoreCertainty(in.Input, in.Visa, in.TotalCost, in.SafetyLevel)
	return json.Marshal(certaintyScoreOutput{Score: score, Reason: reason})
}

// ScoreCertainty is the shared feasibility heuristic. Starts at 85 and
// subtracts for visa friction, budget shortfall, and safety advisories.
func ScoreCertainty(in trip.TripInput, visa *trip.VisaFacts, totalCost *float64, safetyLevel *int) (int, string) {
	score := 85
	var reasons []string
	if visa != nil && visa.Blocking() {
		score -= 20
		reasons = append(reasons, "visa required")
	}
	if totalCost != nil && in.Budget.Amount > 0 {
		switch ratio := *totalCost / in.Budget.Amount; {
		case ratio > 1.3:
			score -= 25
			reasons = append(reasons, "well over budget")
		case ratio > 1.0:
			score -= 10
			reasons = append(reasons, "slightly over budget")
		}
	}
	if safetyLevel != nil && *safetyLevel >= 2 {
		score -= 15 * (*safetyLevel - 1)
		reasons = append(reasons, "travel advisory in effect")
	}
	score = clampScore(score)
	reason := "trip looks feasible"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}
	return score, reason
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
