// Package validator checks candidate game slots and whole schedules against
// diamond hours, reservations, double-booking and rest rules. Nothing here
// performs I/O; callers pass the games and allocations to check against.
package validator

import (
	"fmt"
	"time"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

// Candidate is a proposed placement for one game.
type Candidate struct {
	HomeTeamID string
	AwayTeamID string
	Diamond    tournament.Diamond
	Date       time.Time
	Start      clock.Minutes
	Duration   int
}

func (c Candidate) Interval() clock.Interval {
	d := c.Duration
	if d <= 0 {
		d = tournament.DefaultGameMinutes
	}
	return clock.Span(c.Start, d)
}

// Options adjust a single ValidateSlot call.
type Options struct {
	SkipGameID     string // the game being moved, ignored for overlap checks
	TeamDivisionID string
	MinRestMinutes int // zero skips the rest check
}

// Result separates blocking errors from informational warnings.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateSlot checks a candidate against the diamond, the allocations and
// the other games. games may span any diamonds and dates; only those on the
// candidate's date are considered.
func ValidateSlot(c Candidate, games []tournament.Game, allocations []tournament.Allocation, opts Options) Result {
	res := Result{Valid: true}
	for _, v := range checkSlot(c, games, allocations, opts) {
		if v.Severity == tournament.SeverityError {
			res.Errors = append(res.Errors, v.Message)
			res.Valid = false
		} else {
			res.Warnings = append(res.Warnings, v.Message)
		}
	}
	return res
}

func checkSlot(c Candidate, games []tournament.Game, allocations []tournament.Allocation, opts Options) []tournament.Violation {
	sameDay := gamesOn(games, c.Date, opts.SkipGameID)

	var vs []tournament.Violation
	vs = append(vs, checkDiamondStatus(c)...)
	vs = append(vs, checkHours(c)...)
	vs = append(vs, checkAllocations(c, allocations, opts.TeamDivisionID)...)
	vs = append(vs, checkDiamondOverlap(c, sameDay)...)
	vs = append(vs, checkTeamOverlap(c, sameDay)...)
	vs = append(vs, checkRest(c, sameDay, opts.MinRestMinutes)...)
	return vs
}

func gamesOn(games []tournament.Game, date time.Time, skipID string) []tournament.Game {
	day := tournament.Day(date)
	var out []tournament.Game
	for _, g := range games {
		if !g.Placed() || (skipID != "" && g.ID == skipID) {
			continue
		}
		if tournament.Day(g.Date).Equal(day) {
			out = append(out, g)
		}
	}
	return out
}

func errorf(format string, args ...any) tournament.Violation {
	return tournament.Violation{Severity: tournament.SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warnf(format string, args ...any) tournament.Violation {
	return tournament.Violation{Severity: tournament.SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

func checkDiamondStatus(c Candidate) []tournament.Violation {
	switch c.Diamond.Status {
	case tournament.DiamondClosed:
		return []tournament.Violation{errorf("diamond %s is closed", c.Diamond.Label())}
	case tournament.DiamondDelayed:
		return []tournament.Violation{warnf("diamond %s is delayed", c.Diamond.Label())}
	}
	return nil
}

func checkHours(c Candidate) []tournament.Violation {
	if c.Interval().Within(c.Diamond.Window()) {
		return nil
	}
	return []tournament.Violation{errorf("%s is outside %s hours %s",
		c.Interval(), c.Diamond.Label(), c.Diamond.Window())}
}

func checkAllocations(c Candidate, allocations []tournament.Allocation, divisionID string) []tournament.Violation {
	day := tournament.Day(c.Date)
	var vs []tournament.Violation
	for _, a := range allocations {
		if a.DiamondID != c.Diamond.ID || !tournament.Day(a.Date).Equal(day) {
			continue
		}
		if !a.Interval().Overlaps(c.Interval()) {
			continue
		}
		if a.DivisionID != "" && a.DivisionID == divisionID {
			vs = append(vs, warnf("overlaps %s allocation %s on %s",
				a.DivisionID, a.Interval(), c.Diamond.Label()))
			continue
		}
		msg := fmt.Sprintf("reserved time block %s on %s", a.Interval(), c.Diamond.Label())
		if a.Reason != "" {
			msg += " (" + a.Reason + ")"
		}
		vs = append(vs, errorf("%s", msg))
	}
	return vs
}

func checkDiamondOverlap(c Candidate, sameDay []tournament.Game) []tournament.Violation {
	var vs []tournament.Violation
	for _, g := range sameDay {
		if g.DiamondID != c.Diamond.ID {
			continue
		}
		if g.Interval().Overlaps(c.Interval()) {
			vs = append(vs, errorf("overlap with game %s on %s at %s",
				gameLabel(g), c.Diamond.Label(), g.Interval()))
		}
	}
	return vs
}

func checkTeamOverlap(c Candidate, sameDay []tournament.Game) []tournament.Violation {
	var vs []tournament.Violation
	for _, team := range []string{c.HomeTeamID, c.AwayTeamID} {
		if team == "" {
			continue
		}
		for _, g := range sameDay {
			if g.Involves(team) && g.Interval().Overlaps(c.Interval()) {
				v := errorf("team %s already has a game that overlaps (%s)", team, g.Interval())
				v.TeamID = team
				vs = append(vs, v)
			}
		}
	}
	return vs
}

func checkRest(c Candidate, sameDay []tournament.Game, minRest int) []tournament.Violation {
	if minRest <= 0 {
		return nil
	}
	var vs []tournament.Violation
	for _, team := range []string{c.HomeTeamID, c.AwayTeamID} {
		if team == "" {
			continue
		}
		for _, g := range sameDay {
			if !g.Involves(team) {
				continue
			}
			gap := clock.Gap(g.Interval(), c.Interval())
			// Overlaps are reported by checkTeamOverlap.
			if gap >= 0 && gap < minRest {
				v := errorf("team %s has only %d minutes rest after %s (minimum %d)",
					team, gap, earlier(g.Interval(), c.Interval()), minRest)
				v.TeamID = team
				vs = append(vs, v)
			}
		}
	}
	return vs
}

func earlier(a, b clock.Interval) clock.Interval {
	if b.Start < a.Start {
		return b
	}
	return a
}

func gameLabel(g tournament.Game) string {
	if g.Number > 0 {
		return fmt.Sprintf("#%d", g.Number)
	}
	return g.ID
}
