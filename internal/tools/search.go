package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tripflow/internal/trip"
)

// --------------------- flights.search ---------------------

type flightSearchTool struct {
	source  FlightSource
	timeout time.Duration
}

func newFlightSearchTool(source FlightSource, timeout time.Duration) *flightSearchTool {
	return &flightSearchTool{source: source, timeout: timeout}
}

func (t *flightSearchTool) Spec() Spec {
	return Spec{
		Name:        "flights.search",
		Description: "Quote a round-trip flight price per person for a route and date range.",
		InputSchema: json.RawMessage(`{"origin":"string","destination":"string","dates":{"start":"date","end":"date"},"seats":"int"}`),
	}
}

type flightSearchInput struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Dates       trip.DateRange `json:"dates"`
	Seats       int            `json:"seats"`
}

func (t *flightSearchTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in flightSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("flights.search: decode input: %w", err)
	}
	if strings.TrimSpace(in.Destination) == "" {
		return nil, fmt.Errorf("flights.search: destination is required")
	}
	if in.Seats <= 0 {
		in.Seats = 1
	}
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	quote, err := t.source.Search(callCtx, in.Origin, in.Destination, in.Dates, in.Seats)
	if err != nil {
		quote, err = EstimatorFlightSource{}.Search(ctx, in.Origin, in.Destination, in.Dates, in.Seats)
		if err != nil {
			return nil, fmt.Errorf("flights.search: %w", err)
		}
	}
	return json.Marshal(quote)
}

// --------------------- hotels.search ---------------------

type hotelSearchTool struct {
	source  HotelSource
	timeout time.Duration
}

func newHotelSearchTool(source HotelSource, timeout time.Duration) *hotelSearchTool {
	return &hotelSearchTool{source: source, timeout: timeout}
}

func (t *hotelSearchTool) Spec() Spec {
	return Spec{
		Name:        "hotels.search",
		Description: "Quote a per-night hotel price for a destination, date range, and hotel class.",
		InputSchema: json.RawMessage(`{"destination":"string","dates":{"start":"date","end":"date"},"class":"string"}`),
	}
}

type hotelSearchInput struct {
	Destination string         `json:"destination"`
	Dates       trip.DateRange `json:"dates"`
	Class       string         `json:"class"`
}

func (t *hotelSearchTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in hotelSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("hotels.search: decode input: %w", err)
	}
	if strings.TrimSpace(in.Destination) == "" {
		return nil, fmt.Errorf("hotels.search: destination is required")
	}
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	quote, err := t.source.Search(callCtx, in.Destination, in.Dates, in.Class)
	if err != nil {
		quote, err = EstimatorHotelSource{}.Search(ctx, in.Destination, in.Dates, in.Class)
		if err != nil {
			return nil, fmt.Errorf("hotels.search: %w", err)
		}
	}
	return json.Marshal(quote)
}
