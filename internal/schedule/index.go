package schedule

import (
	"time"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

type diamondDay struct {
	diamond string
	date    time.Time
}

type teamDay struct {
	team string
	date time.Time
}

type placement struct {
	date time.Time
	end  clock.Minutes
}

// occupancy indexes placed games by diamond, by team and by game number.
// It is built once per run and updated on every commit so later items see
// earlier placements.
type occupancy struct {
	games    []tournament.Game
	diamonds map[diamondDay][]clock.Interval
	teams    map[teamDay][]clock.Interval
	numbers  map[int]placement
}

func newOccupancy(existing []tournament.Game) *occupancy {
	o := &occupancy{
		diamonds: make(map[diamondDay][]clock.Interval),
		teams:    make(map[teamDay][]clock.Interval),
		numbers:  make(map[int]placement),
	}
	for _, g := range existing {
		if g.Placed() {
			o.add(g)
		}
	}
	return o
}

func (o *occupancy) add(g tournament.Game) {
	day := tournament.Day(g.Date)
	iv := g.Interval()
	o.games = append(o.games, g)
	dk := diamondDay{g.DiamondID, day}
	o.diamonds[dk] = append(o.diamonds[dk], iv)
	for _, team := range g.Teams() {
		tk := teamDay{team, day}
		o.teams[tk] = append(o.teams[tk], iv)
	}
	if g.Number > 0 {
		o.numbers[g.Number] = placement{date: day, end: iv.End}
	}
}

func (o *occupancy) diamondBusy(diamondID string, date time.Time, iv clock.Interval) bool {
	for _, other := range o.diamonds[diamondDay{diamondID, date}] {
		if other.Overlaps(iv) {
			return true
		}
	}
	return false
}

func (o *occupancy) gamesOn(team string, date time.Time) int {
	return len(o.teams[teamDay{team, date}])
}

// restOK reports whether iv leaves at least minRest minutes around every
// other game the team plays that day. Overlap always fails.
func (o *occupancy) restOK(team string, date time.Time, iv clock.Interval, minRest int) bool {
	if minRest < 0 {
		minRest = 0
	}
	for _, other := range o.teams[teamDay{team, date}] {
		if clock.Gap(other, iv) < minRest {
			return false
		}
	}
	return true
}

// lastEnd is when the team's final game on date finishes.
func (o *occupancy) lastEnd(team string, date time.Time) (clock.Minutes, bool) {
	ivs := o.teams[teamDay{team, date}]
	if len(ivs) == 0 {
		return 0, false
	}
	end := ivs[0].End
	for _, iv := range ivs[1:] {
		if iv.End > end {
			end = iv.End
		}
	}
	return end, true
}

// firstStart is when the team's earliest game on date begins.
func (o *occupancy) firstStart(team string, date time.Time) (clock.Minutes, bool) {
	ivs := o.teams[teamDay{team, date}]
	if len(ivs) == 0 {
		return 0, false
	}
	start := ivs[0].Start
	for _, iv := range ivs[1:] {
		if iv.Start < start {
			start = iv.Start
		}
	}
	return start, true
}

func (o *occupancy) maxNumber() int {
	n := 0
	for _, g := range o.games {
		if g.Number > n {
			n = g.Number
		}
	}
	return n
}
