package changeset

import (
	"reflect"
	"testing"

	"tripflow/internal/trip"
)

func baseInput() trip.TripInput {
	return trip.TripInput{
		Dates:       trip.DateRange{Start: "2026-04-10", End: "2026-04-17"},
		Budget:      trip.Budget{Amount: 3000, Currency: "USD"},
		Origin:      "Tokyo",
		Destination: "Paris",
		Passport:    "Japan",
		Travelers:   trip.TravelerCounts{Adults: 2},
		Preferences: trip.Preferences{Pace: "balanced", HotelClass: "standard"},
	}
}

func TestDiff_IdenticalInputs(t *testing.T) {
	in := baseInput()
	changes := Diff(in, in)
	if len(changes) != 0 {
		t.Fatalf("expected no changes, got %d", len(changes))
	}
	if plan := Resolve(changes); len(plan) != 0 {
		t.Fatalf("expected empty plan, got %v", plan)
	}
}

func TestDiff_NilAndEmptyConstraintsCompareEqual(t *testing.T) {
	prev := baseInput()
	prev.Constraints = nil
	next := baseInput()
	next.Constraints = []string{}
	if changes := Diff(prev, next); len(changes) != 0 {
		t.Fatalf("nil vs empty constraints should not diff, got %+v", changes)
	}
}

func TestDiff_DestinationChange(t *testing.T) {
	prev := baseInput()
	next := baseInput()
	next.Destination = "Cairo"

	changes := Diff(prev, next)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	c := changes[0]
	if c.Field != FieldDestination {
		t.Fatalf("expected destination change, got %s", c.Field)
	}
	if c.Severity != SeverityHigh {
		t.Fatalf("destination change must be high severity, got %s", c.Severity)
	}
	want := []Module{ModuleVisa, ModuleFlights, ModuleHotels, ModuleItinerary, ModuleCertainty, ModuleActionItems}
	if !reflect.DeepEqual(c.Impacts, want) {
		t.Fatalf("impact set mismatch: got %v want %v", c.Impacts, want)
	}
}

func TestDiff_FixedEnumerationOrder(t *testing.T) {
	prev := baseInput()
	next := baseInput()
	// Mutate in reverse enumeration order; output must still follow it.
	next.Constraints = []string{"no overnight flights"}
	next.Passport = "Germany"
	next.Budget.Amount = 4000
	next.Dates.Start = "2026-04-11"

	changes := Diff(prev, next)
	gotFields := make([]Field, len(changes))
	for i, c := range changes {
		gotFields[i] = c.Field
	}
	want := []Field{FieldDates, FieldBudget, FieldPassport, FieldConstraints}
	if !reflect.DeepEqual(gotFields, want) {
		t.Fatalf("field order mismatch: got %v want %v", gotFields, want)
	}
}

func TestSeverityPolicy(t *testing.T) {
	cases := map[Field]Severity{
		FieldDestination: SeverityHigh,
		FieldPassport:    SeverityHigh,
		FieldDates:       SeverityMedium,
		FieldBudget:      SeverityLow,
		FieldOrigin:      SeverityLow,
		FieldTravelers:   SeverityLow,
		FieldPreferences: SeverityLow,
		FieldConstraints: SeverityLow,
	}
	for f, want := range cases {
		if got := severityFor(f); got != want {
			t.Errorf("severityFor(%s) = %s, want %s", f, got, want)
		}
	}
}

func TestResolve_PriorityThenAlphabetical(t *testing.T) {
	changes := []DetectedChange{
		{Field: FieldDestination, Impacts: ImpactsOf(FieldDestination)},
		{Field: FieldBudget, Impacts: ImpactsOf(FieldBudget)},
	}
	want := []Module{ModuleActionItems, ModuleCertainty, ModuleVisa, ModuleFlights, ModuleHotels, ModuleItinerary}
	got := Resolve(changes)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("resolve order mismatch: got %v want %v", got, want)
	}

	// Idempotence: a second resolve of the same list is byte-identical.
	again := Resolve(changes)
	if !reflect.DeepEqual(got, again) {
		t.Fatalf("resolve is not deterministic: %v vs %v", got, again)
	}
}

func TestChangeID_Deterministic(t *testing.T) {
	prev := baseInput()
	next := baseInput()
	next.Destination = "Cairo"

	a := ChangeID("trip-1", prev, next)
	b := ChangeID("trip-1", prev, next)
	if a != b {
		t.Fatalf("identical triples must hash identically: %s vs %s", a, b)
	}
	if c := ChangeID("trip-2", prev, next); c == a {
		t.Fatalf("different trip id should change the hash")
	}
	other := next
	other.Destination = "Lima"
	if c := ChangeID("trip-1", prev, other); c == a {
		t.Fatalf("different proposed input should change the hash")
	}
}

func TestMaxSeverity(t *testing.T) {
	changes := []DetectedChange{
		{Severity: SeverityLow},
		{Severity: SeverityMedium},
	}
	if got := MaxSeverity(changes); got != SeverityMedium {
		t.Fatalf("got %s, want medium", got)
	}
	if got := MaxSeverity(nil); got != SeverityLow {
		t.Fatalf("empty list should be low, got %s", got)
	}
}
