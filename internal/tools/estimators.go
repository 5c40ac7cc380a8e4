package tools

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"tripflow/internal/trip"
)

// The estimator sources answer from fixed heuristics with no I/O. They are
// deliberately deterministic: the same inputs always produce the same quote,
// which keeps planner runs reproducible in tests and offline mode.

// visaFreeRoutes lists passport→destination pairs known to be visa-free or
// visa-on-arrival. Everything else defaults to "required, 10 business days".
var visaFreeRoutes = map[string][]string{
	"japan":          {"south korea", "singapore", "thailand", "united states", "united kingdom", "france", "germany", "italy", "spain"},
	"united states":  {"japan", "south korea", "singapore", "thailand", "united kingdom", "france", "germany", "italy", "spain", "mexico", "canada"},
	"united kingdom": {"japan", "south korea", "singapore", "thailand", "united states", "france", "germany", "italy", "spain"},
	"germany":        {"japan", "south korea", "singapore", "thailand", "united states", "united kingdom", "france", "italy", "spain"},
	"singapore":      {"japan", "south korea", "thailand", "united states", "united kingdom", "france", "germany", "italy", "spain"},
}

const defaultVisaProcessingDays = 10 // business days

type EstimatorVisaSource struct{}

func (EstimatorVisaSource) Lookup(_ context.Context, passport, destination string) (trip.VisaFacts, error) {
	p := strings.ToLower(strings.TrimSpace(passport))
	d := strings.ToLower(strings.TrimSpace(destination))
	facts := trip.VisaFacts{
		Passport:    passport,
		Destination: destination,
		Required:    true,
		VisaFree:    false,
	}
	if p == "" || d == "" || p == d {
		facts.Required = false
		facts.VisaFree = true
		return facts, nil
	}
	for _, dest := range visaFreeRoutes[p] {
		if dest == d {
			facts.Required = false
			facts.VisaFree = true
			facts.Notes = "visa-free or visa-on-arrival for short stays"
			return facts, nil
		}
	}
	facts.ProcessingDays = defaultVisaProcessingDays
	facts.Notes = "tourist visa required; apply before departure"
	return facts, nil
}

type EstimatorFlightSource struct{}

func (EstimatorFlightSource) Search(_ context.Context, origin, destination string, dates trip.DateRange, seats int) (trip.FlightQuote, error) {
	base := 120 + float64(routeHash(origin, destination)%900)
	// Longer trips book further out; nudge the estimate slightly by duration.
	nights := dates.Nights()
	if nights > 14 {
		base *= 1.15
	}
	return trip.FlightQuote{
		PricePerPerson: round2(base),
		Currency:       "USD",
		Estimated:      true,
	}, nil
}

type EstimatorHotelSource struct{}

func (EstimatorHotelSource) Search(_ context.Context, destination string, dates trip.DateRange, class string) (trip.HotelQuote, error) {
	base := 60 + float64(routeHash(destination, "")%180)
	switch strings.ToLower(class) {
	case "budget":
		base *= 0.6
	case "luxury":
		base *= 2.5
	}
	return trip.HotelQuote{
		PricePerNight: round2(base),
		Currency:      "USD",
		Class:         class,
		Estimated:     true,
	}, nil
}

type EstimatorItinerarySource struct{}

func (EstimatorItinerarySource) Regenerate(_ context.Context, input trip.TripInput) ([]trip.ItineraryDay, error) {
	nights := input.Dates.Nights()
	days := nights + 1
	if nights <= 0 {
		days = 1
	}
	out := make([]trip.ItineraryDay, 0, days)
	for i := 1; i <= days; i++ {
		day := trip.ItineraryDay{Day: i}
		switch i {
		case 1:
			day.Title = fmt.Sprintf("Arrive in %s", input.Destination)
			day.Activities = []string{"check in", "neighborhood walk"}
		case days:
			day.Title = "Departure"
			day.Activities = []string{"check out", "travel home"}
		default:
			day.Title = fmt.Sprintf("Explore %s", input.Destination)
			day.Activities = pickActivities(input.Preferences.Interests, i)
		}
		out = append(out, day)
	}
	return out, nil
}

type EstimatorSafetySource struct{}

func (EstimatorSafetySource) Assess(_ context.Context, destination string) (int, string, error) {
	// No live advisory feed in the estimator; everything reads as level 1.
	return 1, "exercise normal precautions", nil
}

func pickActivities(interests []string, day int) []string {
	if len(interests) == 0 {
		return []string{"sightseeing", "local food"}
	}
	return []string{interests[(day-1)%len(interests)], "local food"}
}

func routeHash(a, b string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(a))))
	h.Write([]byte("->"))
	h.Write([]byte(strings.ToLower(strings.TrimSpace(b))))
	return h.Sum32()
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
