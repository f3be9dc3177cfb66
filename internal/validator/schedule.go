package validator

import (
	"fmt"
	"sort"
	"time"

	"github.com/derekprior/tourney/internal/tournament"
)

// Schedule is everything ValidateSchedule needs to check a set of games.
type Schedule struct {
	Games       []tournament.Game
	Diamonds    []tournament.Diamond
	Allocations []tournament.Allocation
	Rules       tournament.Rules
	StartDate   time.Time // day index zero for daily caps; defaults to the earliest game date
}

// ValidateSchedule runs every slot check against each placed game, then the
// per-team daily cap and cross-day rest rules. Unplaced games are skipped.
// The result is sorted errors first.
func ValidateSchedule(s Schedule) []tournament.Violation {
	diamonds := make(map[string]tournament.Diamond, len(s.Diamonds))
	for _, d := range s.Diamonds {
		diamonds[d.ID] = d
	}

	var violations []tournament.Violation
	for _, g := range s.Games {
		if !g.Placed() {
			continue
		}
		d, ok := diamonds[g.DiamondID]
		if !ok {
			violations = append(violations, tournament.Violation{
				GameID:   g.ID,
				Message:  fmt.Sprintf("unknown diamond %s", g.DiamondID),
				Severity: tournament.SeverityError,
			})
			continue
		}
		c := Candidate{
			HomeTeamID: g.HomeTeamID,
			AwayTeamID: g.AwayTeamID,
			Diamond:    d,
			Date:       g.Date,
			Start:      g.Start,
			Duration:   g.Duration(),
		}
		opts := Options{
			SkipGameID:     g.ID,
			TeamDivisionID: g.DivisionID,
			MinRestMinutes: s.Rules.MinRestMinutes,
		}
		for _, v := range checkSlot(c, s.Games, s.Allocations, opts) {
			v.GameID = g.ID
			violations = append(violations, v)
		}
	}

	byTeam := teamGames(s.Games)
	violations = append(violations, checkDailyCaps(s, byTeam)...)
	violations = append(violations, checkCrossDayRest(s.Rules, byTeam)...)

	tournament.SortViolations(violations)
	return violations
}

// teamGames indexes placed games by team, ordered by date then start.
func teamGames(games []tournament.Game) map[string][]tournament.Game {
	m := make(map[string][]tournament.Game)
	for _, g := range games {
		if !g.Placed() {
			continue
		}
		for _, team := range g.Teams() {
			m[team] = append(m[team], g)
		}
	}
	for team := range m {
		sortGames(m[team])
	}
	return m
}

func sortGames(games []tournament.Game) {
	sort.SliceStable(games, func(i, j int) bool {
		di, dj := tournament.Day(games[i].Date), tournament.Day(games[j].Date)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return games[i].Start < games[j].Start
	})
}

func checkDailyCaps(s Schedule, byTeam map[string][]tournament.Game) []tournament.Violation {
	if len(s.Rules.DailyCaps) == 0 {
		return nil
	}
	start := s.StartDate
	if start.IsZero() {
		for _, g := range s.Games {
			if g.Placed() && (start.IsZero() || g.Date.Before(start)) {
				start = g.Date
			}
		}
	}
	start = tournament.Day(start)

	var violations []tournament.Violation
	for team, games := range byTeam {
		perDay := make(map[time.Time]int)
		for _, g := range games {
			day := tournament.Day(g.Date)
			perDay[day]++
			index := int(day.Sub(start).Hours() / 24)
			limit := s.Rules.DailyCap(index)
			if limit > 0 && perDay[day] > limit {
				violations = append(violations, tournament.Violation{
					GameID: g.ID,
					TeamID: team,
					Message: fmt.Sprintf("team %s plays %d games on %s (max %d)",
						team, perDay[day], day.Format(tournament.DateLayout), limit),
					Severity: tournament.SeverityError,
				})
			}
		}
	}
	return violations
}

func checkCrossDayRest(rules tournament.Rules, byTeam map[string][]tournament.Game) []tournament.Violation {
	var violations []tournament.Violation
	for team, games := range byTeam {
		for i := 1; i < len(games); i++ {
			prev, next := games[i-1], games[i]
			prevDay, nextDay := tournament.Day(prev.Date), tournament.Day(next.Date)
			// Only the first game of a day that directly follows a game day.
			if !prevDay.AddDate(0, 0, 1).Equal(nextDay) {
				continue
			}
			if !rules.OvernightRestOK(prev.Interval().End, next.Start) {
				violations = append(violations, tournament.Violation{
					GameID: next.ID,
					TeamID: team,
					Message: fmt.Sprintf("team %s needs %d hours rest after finishing at %s on %s",
						team, rules.CrossDayRestHours, prev.Interval().End, prevDay.Format(tournament.DateLayout)),
					Severity: tournament.SeverityError,
				})
			}
		}
	}
	return violations
}
