// Package clock converts wall-clock strings into minute offsets and
// answers overlap and rest questions about half-open time intervals.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Minutes is a time of day expressed as minutes since midnight.
type Minutes int

// MinutesPerDay is the length of a calendar day.
const MinutesPerDay Minutes = 24 * 60

// Parse converts "HH:MM" (or "H:MM") into Minutes. "24:00" is accepted so
// that a closing time can mean end of day.
func Parse(s string) (Minutes, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q: minutes must be two digits", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid time %q: out of range", s)
	}
	return Minutes(h*60 + m), nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Minutes {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

// String formats m as zero-padded "HH:MM".
func (m Minutes) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Add returns m shifted by n minutes.
func (m Minutes) Add(n int) Minutes {
	return m + Minutes(n)
}

// Interval is the half-open range [Start, End).
type Interval struct {
	Start Minutes
	End   Minutes
}

// Span returns the interval that starts at start and lasts duration minutes.
func Span(start Minutes, duration int) Interval {
	return Interval{Start: start, End: start.Add(duration)}
}

// Duration is the interval length in minutes.
func (i Interval) Duration() int {
	return int(i.End - i.Start)
}

// Overlaps reports whether the two intervals share any minute. Touching
// intervals (one ends when the other starts) do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Within reports whether i lies entirely inside w.
func (i Interval) Within(w Interval) bool {
	return i.Start >= w.Start && i.End <= w.End
}

func (i Interval) String() string {
	return i.Start.String() + "-" + i.End.String()
}

// Gap returns the minutes between the end of the earlier interval and the
// start of the later one. It is negative when the intervals overlap.
func Gap(a, b Interval) int {
	if b.Start < a.Start {
		a, b = b, a
	}
	return int(b.Start - a.End)
}

// OvernightGap returns the minutes between an interval ending on one day
// and an interval starting on the next.
func OvernightGap(prev, next Interval) int {
	return int(MinutesPerDay-prev.End) + int(next.Start)
}
