package tools

import (
	"context"

	"tripflow/internal/trip"
)

// The interfaces below are the external collaborator boundary. Concrete
// implementations (HTTP clients, knowledge bases) live outside this core;
// the bundled estimator implementations keep the planner runnable offline.
// Network-capable implementations must honor ctx deadlines and degrade to
// an estimate rather than block indefinitely.

// VisaSource answers visa questions for a passport/destination pair.
type VisaSource interface {
	Lookup(ctx context.Context, passport, destination string) (trip.VisaFacts, error)
}

// FlightSource quotes a round trip.
type FlightSource interface {
	Search(ctx context.Context, origin, destination string, dates trip.DateRange, seats int) (trip.FlightQuote, error)
}

// HotelSource quotes lodging.
type HotelSource interface {
	Search(ctx context.Context, destination string, dates trip.DateRange, class string) (trip.HotelQuote, error)
}

// ItinerarySource regenerates a day-by-day plan.
type ItinerarySource interface {
	Regenerate(ctx context.Context, input trip.TripInput) ([]trip.ItineraryDay, error)
}

// SafetySource rates destination safety on a 0 (safe) to 4 (do not travel)
// advisory scale.
type SafetySource interface {
	Assess(ctx context.Context, destination string) (int, string, error)
}

// Providers bundles the collaborators a tool set is built from. Nil fields
// fall back to the estimator implementations.
type Providers struct {
	Visa      VisaSource
	Flights   FlightSource
	Hotels    HotelSource
	Itinerary ItinerarySource
	Safety    SafetySource
}

func (p Providers) withDefaults() Providers {
	if p.Visa == nil {
		p.Visa = EstimatorVisaSource{}
	}
	if p.Flights == nil {
		p.Flights = EstimatorFlightSource{}
	}
	if p.Hotels == nil {
		p.Hotels = EstimatorHotelSource{}
	}
	if p.Itinerary == nil {
		p.Itinerary = EstimatorItinerarySource{}
	}
	if p.Safety == nil {
		p.Safety = EstimatorSafetySource{}
	}
	return p
}
