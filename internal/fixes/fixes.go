// Package fixes proposes minimal corrective patches to a trip input when
// blockers remain after a planning pass. It is a pure function over known
// visa timing facts; it never calls the planner model or any tool.
package fixes

import (
	"fmt"
	"math"
	"time"

	"tripflow/internal/trip"
)

const (
	// visaBufferDays is the safety margin on top of quoted processing time.
	visaBufferDays = 2 // business days
	// calendarPerBusinessDay converts a business-day shortfall into calendar
	// days (5 business days ≈ 7 calendar days).
	calendarPerBusinessDay = 1.4
)

// Option is one suggested patch, ranked by list position.
type Option struct {
	Kind        string         `json:"kind"` // currently only "shift_dates"
	Description string         `json:"description"`
	ShiftDays   int            `json:"shift_days"` // calendar days
	Dates       trip.DateRange `json:"dates"`
}

// Options inspects the feasibility report and returns zero or more fixes for
// the current input. The only implemented option type shifts the date range
// forward far enough to fit visa processing plus buffer, snapping the new
// start date off weekends.
func Options(report trip.FeasibilityReport, input trip.TripInput, now time.Time) []Option {
	opt, ok := dateShiftOption(report, input, now)
	if !ok {
		return nil
	}
	return []Option{opt}
}

func dateShiftOption(report trip.FeasibilityReport, input trip.TripInput, now time.Time) (Option, bool) {
	visa := report.Visa
	if visa == nil || !visa.Blocking() || visa.ProcessingDays <= 0 {
		return Option{}, false
	}
	start, err := input.Dates.StartTime()
	if err != nil {
		return Option{}, false
	}
	end, err := input.Dates.EndTime()
	if err != nil {
		return Option{}, false
	}

	available := BusinessDaysBetween(now, start)
	need := visa.ProcessingDays + visaBufferDays
	shortfall := need - available
	if shortfall <= 0 {
		return Option{}, false
	}

	shift := int(math.Ceil(float64(shortfall) * calendarPerBusinessDay))
	newStart := snapOffWeekend(start.AddDate(0, 0, shift))
	total := int(newStart.Sub(start).Hours() / 24)
	newEnd := end.AddDate(0, 0, total)

	return Option{
		Kind: "shift_dates",
		Description: fmt.Sprintf(
			"Shift the trip %d days later so the %d business-day visa processing time (plus %d-day buffer) fits before departure.",
			total, visa.ProcessingDays, visaBufferDays),
		ShiftDays: total,
		Dates: trip.DateRange{
			Start: newStart.Format(trip.DateLayout),
			End:   newEnd.Format(trip.DateLayout),
		},
	}, true
}

// BusinessDaysBetween counts weekdays strictly after from and strictly
// before to, at date granularity.
func BusinessDaysBetween(from, to time.Time) int {
	from = truncateDate(from)
	to = truncateDate(to)
	if !from.Before(to) {
		return 0
	}
	n := 0
	for d := from.AddDate(0, 0, 1); d.Before(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			n++
		}
	}
	return n
}

// snapOffWeekend moves a date forward to the next Monday when it lands on a
// weekend.
func snapOffWeekend(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	default:
		return d
	}
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
