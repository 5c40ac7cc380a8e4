package trip

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// DateRange is an inclusive start/end pair of civil dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// StartTime parses the start date.
func (r DateRange) StartTime() (time.Time, error) {
	return time.Parse(DateLayout, r.Start)
}

// EndTime parses the end date.
func (r DateRange) EndTime() (time.Time, error) {
	return time.Parse(DateLayout, r.End)
}

// Nights returns the number of nights covered by the range, 0 when unparseable.
func (r DateRange) Nights() int {
	s, err := r.StartTime()
	if err != nil {
		return 0
	}
	e, err := r.EndTime()
	if err != nil {
		return 0
	}
	n := int(e.Sub(s).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// Budget is a money amount with its currency code.
type Budget struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// TravelerCounts splits the party by fare class.
type TravelerCounts struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// Seats returns the number of seat-occupying travelers (infants excluded).
func (t TravelerCounts) Seats() int { return t.Adults + t.Children }

// Preferences captures soft trip preferences.
type Preferences struct {
	Pace       string   `json:"pace,omitempty"` // relaxed|balanced|packed
	Interests  []string `json:"interests,omitempty"`
	HotelClass string   `json:"hotel_class,omitempty"` // budget|standard|luxury
}

// TripInput is the user-controllable trip configuration. Two instances exist
// per planning run (previous and proposed); both are treated as immutable
// once captured.
type TripInput struct {
	Dates       DateRange      `json:"dates"`
	Budget      Budget         `json:"budget"`
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Passport    string         `json:"passport"` // nationality of the passport holder
	Travelers   TravelerCounts `json:"travelers"`
	Preferences Preferences    `json:"preferences"`
	Constraints []string       `json:"constraints,omitempty"`
}

// Validate checks the fields a planning run cannot proceed without.
func (in TripInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(in.Dates.Start) == "" || strings.TrimSpace(in.Dates.End) == "" {
		missing = append(missing, "dates")
	}
	if in.Travelers.Adults <= 0 {
		missing = append(missing, "travelers.adults")
	}
	if len(missing) > 0 {
		return fmt.Errorf("trip: missing required fields: %s", strings.Join(missing, ", "))
	}
	if _, err := in.Dates.StartTime(); err != nil {
		return fmt.Errorf("trip: bad start date %q", in.Dates.Start)
	}
	if _, err := in.Dates.EndTime(); err != nil {
		return fmt.Errorf("trip: bad end date %q", in.Dates.End)
	}
	return nil
}

// VisaFacts is the visa situation for one passport/destination pair.
type VisaFacts struct {
	Passport       string `json:"passport"`
	Destination    string `json:"destination"`
	Required       bool   `json:"required"`
	VisaFree       bool   `json:"visa_free"`
	ProcessingDays int    `json:"processing_days,omitempty"` // business days
	Notes          string `json:"notes,omitempty"`
}

// Blocking reports whether these facts block the trip on their own.
// Visa is the only real blocker source in production.
func (v VisaFacts) Blocking() bool { return v.Required && !v.VisaFree }

// FlightQuote is a per-person round-trip price.
type FlightQuote struct {
	PricePerPerson float64 `json:"price_per_person"`
	Currency       string  `json:"currency"`
	Carrier        string  `json:"carrier,omitempty"`
	Estimated      bool    `json:"estimated"` // true when derived from heuristics, not live data
}

// HotelQuote is a per-night lodging price.
type HotelQuote struct {
	PricePerNight float64 `json:"price_per_night"`
	Currency      string  `json:"currency"`
	Class         string  `json:"class,omitempty"`
	Estimated     bool    `json:"estimated"`
}

// ItineraryDay is one planned day.
type ItineraryDay struct {
	Day        int      `json:"day"`
	Title      string   `json:"title"`
	Activities []string `json:"activities,omitempty"`
}

// CostBreakdown aggregates trip cost by category.
type CostBreakdown struct {
	Flights  float64 `json:"flights"`
	Lodging  float64 `json:"lodging"`
	Daily    float64 `json:"daily"`
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// FeasibilityReport is the scored outcome of a prior planning pass.
type FeasibilityReport struct {
	Certainty       int        `json:"certainty"` // 0..100
	CertaintyReason string     `json:"certainty_reason,omitempty"`
	Blockers        []string   `json:"blockers,omitempty"`
	Visa            *VisaFacts `json:"visa,omitempty"`
}

// TripResult is the aggregate trip state a change is applied against.
type TripResult struct {
	Feasibility FeasibilityReport `json:"feasibility"`
	Itinerary   []ItineraryDay    `json:"itinerary,omitempty"`
	Cost        CostBreakdown     `json:"cost"`
	Flights     *FlightQuote      `json:"flights,omitempty"`
	Hotels      *HotelQuote       `json:"hotels,omitempty"`
}
