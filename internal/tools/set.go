package tools

import (
	"time"

	"tripflow/internal/cache"
	"tripflow/internal/trip"
)

// Options tunes the bundled tool set.
type Options struct {
	// CallTimeout bounds each provider call. <= 0 defaults to 10s.
	CallTimeout time.Duration
	// VisaCache holds visa facts across runs. Nil disables caching.
	VisaCache cache.TTL[string, trip.VisaFacts]
}

// NewSet builds the planner tool registry from the given providers,
// populated once at startup. Nil provider fields fall back to estimators.
func NewSet(p Providers, opts Options) *Registry {
	p = p.withDefaults()
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewRegistry(
		newVisaLookupTool(p.Visa, opts.VisaCache, timeout),
		newFlightSearchTool(p.Flights, timeout),
		newHotelSearchTool(p.Hotels, timeout),
		newCostEstimateTool(p.Flights, p.Hotels),
		newSafetyAssessTool(p.Safety, timeout),
		newCertaintyScoreTool(),
		newItineraryRegenerateTool(p.Itinerary, timeout),
	)
}
