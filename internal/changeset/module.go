package changeset

// Module is one independently recomputable facet of a trip result.
type Module string

const (
	ModuleVisa        Module = "visa"
	ModuleFlights     Module = "flights"
	ModuleHotels      Module = "hotels"
	ModuleItinerary   Module = "itinerary"
	ModuleCertainty   Module = "certainty"
	ModuleActionItems Module = "action_items"
)

// Priority returns the module's recompute tier. Tier 1 runs first; the
// ordering exists so cheap/critical facts reach the UI early, not because
// modules depend on each other.
func (m Module) Priority() int {
	switch m {
	case ModuleVisa, ModuleCertainty, ModuleActionItems:
		return 1
	case ModuleFlights, ModuleHotels:
		return 2
	case ModuleItinerary:
		return 3
	default:
		return 4
	}
}
