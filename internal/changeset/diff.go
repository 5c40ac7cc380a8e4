package changeset

import (
	"reflect"

	"tripflow/internal/trip"
)

// Field identifies one changeable TripInput field.
type Field string

const (
	FieldDates       Field = "dates"
	FieldBudget      Field = "budget"
	FieldOrigin      Field = "origin"
	FieldDestination Field = "destination"
	FieldPassport    Field = "passport"
	FieldTravelers   Field = "travelers"
	FieldPreferences Field = "preferences"
	FieldConstraints Field = "constraints"
)

// fieldOrder fixes the enumeration order of Diff output. Detection order
// must never leak into the result; identical inputs yield identical output.
var fieldOrder = [...]Field{
	FieldDates,
	FieldBudget,
	FieldOrigin,
	FieldDestination,
	FieldPassport,
	FieldTravelers,
	FieldPreferences,
	FieldConstraints,
}

// Severity tags how disruptive a change is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// rank orders severities for max-of comparisons.
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MaxSeverity returns the highest severity among changes, SeverityLow when
// the list is empty.
func MaxSeverity(changes []DetectedChange) Severity {
	out := SeverityLow
	for _, c := range changes {
		if c.Severity.rank() > out.rank() {
			out = c.Severity
		}
	}
	return out
}

// DetectedChange is one field that differs between previous and proposed.
type DetectedChange struct {
	Field    Field    `json:"field"`
	Before   any      `json:"before"`
	After    any      `json:"after"`
	Impacts  []Module `json:"impacts"`
	Severity Severity `json:"severity"`
}

// severityFor implements the fixed severity policy: destination and passport
// changes are always high, date changes medium, everything else low.
func severityFor(f Field) Severity {
	switch f {
	case FieldDestination, FieldPassport:
		return SeverityHigh
	case FieldDates:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Diff compares previous and proposed field-by-field and returns one
// DetectedChange per differing field, in fixed field enumeration order.
// Unchanged fields produce nothing; nil and empty collections compare equal.
func Diff(previous, proposed trip.TripInput) []DetectedChange {
	var out []DetectedChange
	for _, f := range fieldOrder {
		before, after := fieldValue(previous, f), fieldValue(proposed, f)
		if equalValue(before, after) {
			continue
		}
		out = append(out, DetectedChange{
			Field:    f,
			Before:   before,
			After:    after,
			Impacts:  ImpactsOf(f),
			Severity: severityFor(f),
		})
	}
	return out
}

func fieldValue(in trip.TripInput, f Field) any {
	switch f {
	case FieldDates:
		return in.Dates
	case FieldBudget:
		return in.Budget
	case FieldOrigin:
		return in.Origin
	case FieldDestination:
		return in.Destination
	case FieldPassport:
		return in.Passport
	case FieldTravelers:
		return in.Travelers
	case FieldPreferences:
		return normalizePrefs(in.Preferences)
	case FieldConstraints:
		return normalizeStrings(in.Constraints)
	default:
		return nil
	}
}

func equalValue(a, b any) bool { return reflect.DeepEqual(a, b) }

func normalizePrefs(p trip.Preferences) trip.Preferences {
	p.Interests = normalizeStrings(p.Interests)
	return p
}

// normalizeStrings maps nil to an empty slice so an absent list and an empty
// list compare equal.
func normalizeStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
