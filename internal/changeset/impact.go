package changeset

import "sort"

// impactMatrix is the static field→modules table. A changed field marks every
// listed module for recompute; nothing else does.
var impactMatrix = map[Field][]Module{
	FieldDates:       {ModuleFlights, ModuleHotels, ModuleItinerary, ModuleCertainty, ModuleActionItems},
	FieldBudget:      {ModuleHotels, ModuleItinerary, ModuleCertainty, ModuleActionItems},
	FieldOrigin:      {ModuleFlights, ModuleCertainty, ModuleActionItems},
	FieldDestination: {ModuleVisa, ModuleFlights, ModuleHotels, ModuleItinerary, ModuleCertainty, ModuleActionItems},
	FieldPassport:    {ModuleVisa, ModuleCertainty, ModuleActionItems},
	FieldTravelers:   {ModuleFlights, ModuleHotels, ModuleCertainty, ModuleActionItems},
	FieldPreferences: {ModuleHotels, ModuleItinerary, ModuleCertainty},
	FieldConstraints: {ModuleItinerary, ModuleCertainty, ModuleActionItems},
}

// ImpactsOf returns a copy of the impact row for f.
func ImpactsOf(f Field) []Module {
	row := impactMatrix[f]
	out := make([]Module, len(row))
	copy(out, row)
	return out
}

// Resolve unions the impacted-module sets across all detected changes and
// orders the result by priority tier ascending, then module name ascending.
// The tie-break is part of the contract; snapshot tests depend on it.
// An empty change list resolves to an empty plan.
func Resolve(changes []DetectedChange) []Module {
	seen := map[Module]struct{}{}
	var out []Module
	for _, c := range changes {
		for _, m := range c.Impacts {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i] < out[j]
	})
	return out
}
