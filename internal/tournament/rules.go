package tournament

import "github.com/derekprior/tourney/internal/clock"

// Rules are the hard scheduling constraints for a tournament.
type Rules struct {
	GameMinutes       int
	MinRestMinutes    int
	DailyCaps         []int // per day index; the last entry repeats
	CrossDayRestHours int
	LateGameCutoff    clock.Minutes
	SlotMinutes       int
	MinGames          int
	PoolPlayDays      int // zero means all but the last day
}

// DefaultRules mirrors the defaults written by `tourney init`.
func DefaultRules() Rules {
	return Rules{
		GameMinutes:       DefaultGameMinutes,
		MinRestMinutes:    30,
		DailyCaps:         []int{3},
		CrossDayRestHours: 10,
		LateGameCutoff:    clock.MustParse("18:00"),
		SlotMinutes:       30,
		MinGames:          3,
	}
}

// DailyCap returns the per-team game cap for the given day index. Zero
// means uncapped.
func (r Rules) DailyCap(day int) int {
	if len(r.DailyCaps) == 0 {
		return 0
	}
	if day >= len(r.DailyCaps) {
		return r.DailyCaps[len(r.DailyCaps)-1]
	}
	if day < 0 {
		return r.DailyCaps[0]
	}
	return r.DailyCaps[day]
}

// SlotStep is the candidate start-time granularity.
func (r Rules) SlotStep() int {
	if r.SlotMinutes <= 0 {
		return 30
	}
	return r.SlotMinutes
}

// GameLength falls back to DefaultGameMinutes.
func (r Rules) GameLength() int {
	if r.GameMinutes <= 0 {
		return DefaultGameMinutes
	}
	return r.GameMinutes
}

// OvernightRestOK reports whether a game starting at next satisfies
// cross-day rest after a previous-day game that ended at prevEnd. Only games
// ending after LateGameCutoff impose the rest.
func (r Rules) OvernightRestOK(prevEnd, next clock.Minutes) bool {
	if r.CrossDayRestHours <= 0 || prevEnd <= r.LateGameCutoff {
		return true
	}
	gap := clock.OvernightGap(clock.Interval{End: prevEnd}, clock.Interval{Start: next})
	return gap >= r.CrossDayRestHours*60
}
