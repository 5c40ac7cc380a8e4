package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"tripflow/internal/cache"
	"tripflow/internal/trip"
)

// --------------------- visa.lookup ---------------------

type visaLookupTool struct {
	source  VisaSource
	cache   cache.TTL[string, trip.VisaFacts]
	timeout time.Duration
}

func newVisaLookupTool(source VisaSource, c cache.TTL[string, trip.VisaFacts], timeout time.Duration) *visaLookupTool {
	return &visaLookupTool{source: source, cache: c, timeout: timeout}
}

func (t *visaLookupTool) Spec() Spec {
	return Spec{
		Name:        "visa.lookup",
		Description: "Look up visa requirements and processing time for a passport/destination pair.",
		InputSchema: json.RawMessage(`{"passport":"string","destination":"string"}`),
	}
}

type visaLookupInput struct {
	Passport    string `json:"passport"`
	Destination string `json:"destination"`
}

func (t *visaLookupTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in visaLookupInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, fmt.Errorf("visa.lookup: decode input: %w", err)
	}
	if strings.TrimSpace(in.Passport) == "" || strings.TrimSpace(in.Destination) == "" {
		return nil, fmt.Errorf("visa.lookup: passport and destination are required")
	}
	key := cacheKey(in.Passport, in.Destination)
	if t.cache != nil {
		if facts, ok := t.cache.Get(key); ok {
			return json.Marshal(facts)
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	facts, err := t.source.Lookup(callCtx, in.Passport, in.Destination)
	if err != nil {
		// Degrade to the estimator rather than surfacing a network failure.
		facts, err = EstimatorVisaSource{}.Lookup(ctx, in.Passport, in.Destination)
		if err != nil {
			return nil, fmt.Errorf("visa.lookup: %w", err)
		}
	} else if t.cache != nil {
		t.cache.Set(key, facts)
	}
	return json.Marshal(facts)
}

func cacheKey(passport, destination string) string {
	return strings.ToLower(strings.TrimSpace(passport)) + "|" + strings.ToLower(strings.TrimSpace(destination))
}
