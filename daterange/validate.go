package daterange

import "fmt"

// Reason names why a custom range was refused.
type Reason string

const (
	InvalidFormat      Reason = "InvalidFormat"
	RangeInverted      Reason = "RangeInverted"
	FutureDateRejected Reason = "FutureDateRejected"
	RangeTooLong       Reason = "RangeTooLong"
)

// Validation is the outcome of checking a custom range. Callers must check Valid
// before applying the range; it is never returned as an error.
type Validation struct {
	Valid   bool   `json:"valid"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

func invalid(r Reason, msg string) Validation {
	return Validation{Valid: false, Reason: r, Message: msg}
}

// Validate checks, in order: both dates parse, start <= end, end is not after
// today, and the span is at most MaxSpanDays.
func (rs *Resolver) Validate(start, end string) Validation {
	s, errS := rs.parse(start)
	e, errE := rs.parse(end)
	if errS != nil || errE != nil {
		return invalid(InvalidFormat, "Invalid date format, use YYYY-MM-DD")
	}

	if dayNumber(s) > dayNumber(e) {
		return invalid(RangeInverted, "Start date cannot be after end date")
	}

	if dayNumber(e) > dayNumber(rs.Today()) {
		return invalid(FutureDateRejected, "End date cannot be in the future")
	}

	if dayNumber(e)-dayNumber(s) > MaxSpanDays {
		return invalid(RangeTooLong, fmt.Sprintf("Date range cannot exceed %d days", MaxSpanDays))
	}

	return Validation{Valid: true}
}
