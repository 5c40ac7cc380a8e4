package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripflow/internal/cache"
	"tripflow/internal/trip"
)

func TestRegistry_UnknownTool(t *testing.T) {
	reg := NewSet(Providers{}, Options{})
	_, err := reg.Call(context.Background(), "no.such.tool", json.RawMessage(`{}`))
	require.Error(t, err)
	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no.such.tool", unknown.Name)
}

func TestRegistry_SpecsSortedByName(t *testing.T) {
	specs := NewSet(Providers{}, Options{}).Specs()
	require.Len(t, specs, 7)
	for i := 1; i < len(specs); i++ {
		assert.Less(t, specs[i-1].Name, specs[i].Name)
	}
}

type countingVisaSource struct {
	calls int
	facts trip.VisaFacts
	err   error
}

func (s *countingVisaSource) Lookup(_ context.Context, passport, destination string) (trip.VisaFacts, error) {
	s.calls++
	if s.err != nil {
		return trip.VisaFacts{}, s.err
	}
	return s.facts, nil
}

func TestVisaLookup_CachesFacts(t *testing.T) {
	source := &countingVisaSource{facts: trip.VisaFacts{
		Passport: "India", Destination: "Japan", Required: true, ProcessingDays: 10,
	}}
	c := cache.NewLRU[string, trip.VisaFacts](16, time.Minute)
	reg := NewSet(Providers{Visa: source}, Options{VisaCache: c})

	input := json.RawMessage(`{"passport":"India","destination":"Japan"}`)
	for i := 0; i < 3; i++ {
		out, err := reg.Call(context.Background(), "visa.lookup", input)
		require.NoError(t, err)
		var facts trip.VisaFacts
		require.NoError(t, json.Unmarshal(out, &facts))
		assert.True(t, facts.Required)
		assert.Equal(t, 10, facts.ProcessingDays)
	}
	assert.Equal(t, 1, source.calls, "repeat lookups must hit the cache")
}

func TestVisaLookup_SourceFailureDegradesToEstimate(t *testing.T) {
	source := &countingVisaSource{err: errors.New("upstream down")}
	reg := NewSet(Providers{Visa: source}, Options{})

	out, err := reg.Call(context.Background(), "visa.lookup", json.RawMessage(`{"passport":"India","destination":"Japan"}`))
	require.NoError(t, err, "source failure must degrade, not propagate")
	var facts trip.VisaFacts
	require.NoError(t, json.Unmarshal(out, &facts))
	assert.True(t, facts.Required)
}

func TestVisaLookup_MissingArgs(t *testing.T) {
	reg := NewSet(Providers{}, Options{})
	_, err := reg.Call(context.Background(), "visa.lookup", json.RawMessage(`{"passport":"India"}`))
	require.Error(t, err)
}

func TestEstimatorVisaSource_VisaFreeRoute(t *testing.T) {
	facts, err := EstimatorVisaSource{}.Lookup(context.Background(), "Japan", "Singapore")
	require.NoError(t, err)
	assert.False(t, facts.Blocking())

	facts, err = EstimatorVisaSource{}.Lookup(context.Background(), "India", "Japan")
	require.NoError(t, err)
	assert.True(t, facts.Blocking())
	assert.Equal(t, defaultVisaProcessingDays, facts.ProcessingDays)
}

func TestCostEstimate_Breakdown(t *testing.T) {
	reg := NewSet(Providers{}, Options{})
	in := map[string]any{
		"input": trip.TripInput{
			Dates:       trip.DateRange{Start: "2026-04-10", End: "2026-04-17"},
			Origin:      "Tokyo",
			Destination: "Cairo",
			Travelers:   trip.TravelerCounts{Adults: 2},
		},
		"flights": trip.FlightQuote{PricePerPerson: 500, Currency: "USD"},
		"hotels":  trip.HotelQuote{PricePerNight: 100, Currency: "USD"},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	out, err := reg.Call(context.Background(), "cost.estimate", raw)
	require.NoError(t, err)

	var breakdown trip.CostBreakdown
	require.NoError(t, json.Unmarshal(out, &breakdown))
	// 2 seats * 500 flights, 7 nights * 100 lodging, 8 days * 2 * 50 daily.
	assert.Equal(t, 1000.0, breakdown.Flights)
	assert.Equal(t, 700.0, breakdown.Lodging)
	assert.Equal(t, 800.0, breakdown.Daily)
	assert.Equal(t, 2500.0, breakdown.Total)
}

func TestScoreCertainty(t *testing.T) {
	in := trip.TripInput{Budget: trip.Budget{Amount: 2000}}

	score, reason := ScoreCertainty(in, nil, nil, nil)
	assert.Equal(t, 85, score)
	assert.Equal(t, "trip looks feasible", reason)

	blocking := &trip.VisaFacts{Required: true}
	overBudget := 2900.0
	score, reason = ScoreCertainty(in, blocking, &overBudget, nil)
	assert.Equal(t, 85-20-25, score)
	assert.Contains(t, reason, "visa required")
	assert.Contains(t, reason, "well over budget")

	level := 4
	score, _ = ScoreCertainty(in, blocking, &overBudget, &level)
	assert.Equal(t, 0, score, "score must clamp at zero")
}

func TestItineraryRegenerate_DayCountMatchesRange(t *testing.T) {
	reg := NewSet(Providers{}, Options{})
	in := map[string]any{"input": trip.TripInput{
		Dates:       trip.DateRange{Start: "2026-04-10", End: "2026-04-13"},
		Destination: "Cairo",
		Travelers:   trip.TravelerCounts{Adults: 1},
	}}
	raw, _ := json.Marshal(in)
	out, err := reg.Call(context.Background(), "itinerary.regenerate", raw)
	require.NoError(t, err)

	var parsed struct {
		Days []trip.ItineraryDay `json:"days"`
	}
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Len(t, parsed.Days, 4)
	assert.Equal(t, "Departure", parsed.Days[3].Title)
}

func TestEstimators_Deterministic(t *testing.T) {
	dates := trip.DateRange{Start: "2026-04-10", End: "2026-04-17"}
	a, err := EstimatorFlightSource{}.Search(context.Background(), "Tokyo", "Cairo", dates, 2)
	require.NoError(t, err)
	b, err := EstimatorFlightSource{}.Search(context.Background(), "Tokyo", "Cairo", dates, 2)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, a.Estimated)
}
