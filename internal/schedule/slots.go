package schedule

import (
	"sort"
	"time"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

// Slot is one candidate (date, start, diamond) triple.
type Slot struct {
	Date    time.Time
	Start   clock.Minutes
	Diamond tournament.Diamond
}

// NormalizeDates truncates, sorts and de-duplicates dates.
func NormalizeDates(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = tournament.Day(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// SplitDates divides the tournament into pool-play and playoff dates. The
// split only applies to three or more dates; otherwise both lists hold every
// date. poolPlayDays of zero means all but the last day.
func SplitDates(dates []time.Time, poolPlayDays int) (poolPlay, playoff []time.Time) {
	if len(dates) < 3 {
		return dates, dates
	}
	n := poolPlayDays
	if n <= 0 || n >= len(dates) {
		n = len(dates) - 1
	}
	return dates[:n], dates[n:]
}

// Times lists candidate start times at step granularity, from the earliest
// opening among usable diamonds, keeping only starts where a game of the
// given length still ends by the latest closing.
func Times(diamonds []tournament.Diamond, step, duration int) []clock.Minutes {
	if step <= 0 {
		step = 30
	}
	first, last := clock.Minutes(-1), clock.Minutes(0)
	for _, d := range diamonds {
		if d.Status == tournament.DiamondClosed {
			continue
		}
		if first < 0 || d.AvailableStart < first {
			first = d.AvailableStart
		}
		if d.AvailableEnd > last {
			last = d.AvailableEnd
		}
	}
	if first < 0 {
		return nil
	}

	var times []clock.Minutes
	for t := first; t.Add(duration) <= last; t = t.Add(step) {
		times = append(times, t)
	}
	return times
}

// GenerateSlots enumerates every candidate slot in search order: by date,
// then start time, then diamond input order.
func GenerateSlots(dates []time.Time, diamonds []tournament.Diamond, step, duration int) []Slot {
	times := Times(diamonds, step, duration)
	var slots []Slot
	for _, d := range NormalizeDates(dates) {
		for _, t := range times {
			for _, dm := range diamonds {
				if dm.Status == tournament.DiamondClosed {
					continue
				}
				if !clock.Span(t, duration).Within(dm.Window()) {
					continue
				}
				slots = append(slots, Slot{Date: d, Start: t, Diamond: dm})
			}
		}
	}
	return slots
}
