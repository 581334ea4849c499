// Package daterange turns named report filters into inclusive calendar-day ranges
// in local wall-clock time and validates user supplied ranges.
package daterange

import (
	"errors"
	"time"
)

type Filter string

const (
	Today      Filter = "today"
	Yesterday  Filter = "yesterday"
	Last7Days  Filter = "7days"
	Last30Days Filter = "30days"
	ThisMonth  Filter = "thisMonth"
	LastMonth  Filter = "lastMonth"
	Custom     Filter = "custom"
)

// DateLayout is the only wire format for dates, always in local time.
const DateLayout = "2006-01-02"

// MaxSpanDays bounds end - start for custom ranges.
const MaxSpanDays = 365

var (
	ErrUnknownFilter = errors.New("unknown date filter")
	ErrNeedsBounds   = errors.New("custom filter needs start and end dates")
)

// Range is an inclusive pair of local-midnight dates.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) StartString() string { return r.Start.Format(DateLayout) }
func (r Range) EndString() string   { return r.End.Format(DateLayout) }

// Days counts calendar days in the range, both ends included.
func (r Range) Days() int {
	return dayNumber(r.End) - dayNumber(r.Start) + 1
}

// Bounds returns the half-open instant interval [start 00:00, day after end 00:00)
// for backend queries.
func (r Range) Bounds() (from, to time.Time) {
	y, m, d := r.End.Date()
	return r.Start, time.Date(y, m, d+1, 0, 0, 0, 0, r.End.Location())
}

// Label renders "Jan 2, 2006" for one day, "Jan 2 - Feb 3, 2006" within a year,
// and "Dec 28, 2023 - Jan 3, 2024" across years.
func (r Range) Label() string {
	if sameDay(r.Start, r.End) {
		return r.Start.Format("Jan 2, 2006")
	}
	if r.Start.Year() == r.End.Year() {
		return r.Start.Format("Jan 2") + " - " + r.End.Format("Jan 2, 2006")
	}
	return r.Start.Format("Jan 2, 2006") + " - " + r.End.Format("Jan 2, 2006")
}

// Resolver anchors every computation on "today" at local midnight.
type Resolver struct {
	Now      func() time.Time
	Location *time.Location
}

// NewResolver uses the wall clock; a nil loc means time.Local.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{Now: time.Now, Location: loc}
}

// Today is local midnight of the current day.
func (rs *Resolver) Today() time.Time {
	return midnight(rs.Now().In(rs.Location))
}

// Resolve maps a preset filter to its range. Presets are valid by construction;
// Custom returns ErrNeedsBounds and should go through Custom instead.
func (rs *Resolver) Resolve(f Filter) (Range, error) {
	today := rs.Today()
	y, m, d := today.Date()
	loc := today.Location()

	switch f {
	case Today:
		return Range{Start: today, End: today}, nil
	case Yesterday:
		day := time.Date(y, m, d-1, 0, 0, 0, 0, loc)
		return Range{Start: day, End: day}, nil
	case Last7Days:
		return Range{Start: time.Date(y, m, d-6, 0, 0, 0, 0, loc), End: today}, nil
	case Last30Days:
		return Range{Start: time.Date(y, m, d-29, 0, 0, 0, 0, loc), End: today}, nil
	case ThisMonth:
		return Range{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: today}, nil
	case LastMonth:
		// day 0 of this month is the last day of the previous one
		return Range{
			Start: time.Date(y, m-1, 1, 0, 0, 0, 0, loc),
			End:   time.Date(y, m, 0, 0, 0, 0, 0, loc),
		}, nil
	case Custom:
		return Range{}, ErrNeedsBounds
	default:
		return Range{}, ErrUnknownFilter
	}
}

// Custom validates start and end and returns the range when valid.
func (rs *Resolver) Custom(start, end string) (Range, Validation) {
	v := rs.Validate(start, end)
	if !v.Valid {
		return Range{}, v
	}
	s, _ := rs.parse(start)
	e, _ := rs.parse(end)
	return Range{Start: s, End: e}, v
}

func (rs *Resolver) parse(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, rs.Location)
	if err != nil {
		return time.Time{}, err
	}
	return midnight(t), nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return dayNumber(a) == dayNumber(b)
}

// dayNumber is the civil day index of t's wall date, immune to DST offsets.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
