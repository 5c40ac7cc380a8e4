package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tripflow/internal/trip"
)

// --------------------- itinerary.regenerate ---------------------

type itineraryRegenerateTool struct {
	source  ItinerarySource
	timeout time.Duration
}

func newItineraryRegenerateTool(source ItinerarySource, timeout time.Duration) *itineraryRegenerateTool {
	return &itineraryRegenerateTool{source: source, timeout: timeout}
}

func (t *itineraryRegenerateTool) Spec() Spec {
	return Spec{
		Name:        "itinerary.regenerate",
		Description: "Regenerate the day-by-day itinerary for the proposed trip input.",
		InputSchema: json.RawMessage(`{"input":"trip_input"}`),
	}
}

type itineraryRegenerateInput struct {
	Input trip.TripInput `json:"input"`
}

type itineraryRegenerateOutput struct {
	Days []trip.ItineraryDay `json:"days"`
}

func (t *itineraryRegenerateTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in itineraryRegenerateInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("itinerary.regenerate: decode input: %w", err)
	}
	if strings.TrimSpace(in.Input.Destination) == "" {
		return nil, fmt.Errorf("itinerary.regenerate: input.destination is required")
	}
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	days, err := t.source.Regenerate(callCtx, in.Input)
	if err != nil {
		days, err = EstimatorItinerarySource{}.Regenerate(ctx, in.Input)
		if err != nil {
			return nil, fmt.Errorf("itinerary.regenerate: %w", err)
		}
	}
	return json.Marshal(itineraryRegenerateOutput{Days: days})
}
