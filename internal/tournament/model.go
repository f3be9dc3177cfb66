// Package tournament holds the records the scheduling engine reads and
// writes: teams, pools, diamonds, allocations and games.
package tournament

import (
	"time"

	"github.com/derekprior/tourney/internal/clock"
)

// DefaultGameMinutes is used when a game carries no explicit duration.
const DefaultGameMinutes = 90

// DateLayout is the canonical calendar date format.
const DateLayout = "2006-01-02"

// Team is read-only during scheduling.
type Team struct {
	ID                 string
	Name               string
	DivisionID         string
	PoolID             string // empty when the team has not been placed in a pool
	WillingToPlayExtra bool
}

// Pool members are the teams whose PoolID equals the pool ID, in TeamIDs order.
type Pool struct {
	ID         string
	Name       string
	DivisionID string
	TeamIDs    []string
}

type DiamondStatus string

const (
	DiamondOpen    DiamondStatus = "open"
	DiamondClosed  DiamondStatus = "closed"
	DiamondDelayed DiamondStatus = "delayed"
	DiamondUnknown DiamondStatus = "unknown"
)

// Diamond is a venue with daily operating hours.
type Diamond struct {
	ID             string
	Name           string
	AvailableStart clock.Minutes
	AvailableEnd   clock.Minutes
	Status         DiamondStatus
}

// Window returns the half-open operating hours.
func (d Diamond) Window() clock.Interval {
	return clock.Interval{Start: d.AvailableStart, End: d.AvailableEnd}
}

// Label prefers the display name.
func (d Diamond) Label() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Allocation reserves a block on a diamond for a date, optionally for one
// division only. An empty DivisionID blocks every division.
type Allocation struct {
	ID         string
	DiamondID  string
	Date       time.Time
	Start      clock.Minutes
	End        clock.Minutes
	DivisionID string
	Reason     string
}

func (a Allocation) Interval() clock.Interval {
	return clock.Interval{Start: a.Start, End: a.End}
}

// Game is a placed game, or an unplaced template when DiamondID or Date is
// empty. Team IDs are empty while a playoff participant is still unknown.
type Game struct {
	ID              string
	TournamentID    string
	Number          int
	HomeTeamID      string
	AwayTeamID      string
	PoolID          string
	DivisionID      string
	DiamondID       string
	Date            time.Time
	Start           clock.Minutes
	DurationMinutes int
	IsPlayoff       bool
	Round           int
	HomeSource      Source
	AwaySource      Source
}

// Duration falls back to DefaultGameMinutes.
func (g Game) Duration() int {
	if g.DurationMinutes <= 0 {
		return DefaultGameMinutes
	}
	return g.DurationMinutes
}

func (g Game) Interval() clock.Interval {
	return clock.Span(g.Start, g.Duration())
}

// Placed reports whether the game has a diamond and a date.
func (g Game) Placed() bool {
	return g.DiamondID != "" && !g.Date.IsZero()
}

// Involves reports whether teamID plays in the game. Empty IDs never match.
func (g Game) Involves(teamID string) bool {
	return teamID != "" && (g.HomeTeamID == teamID || g.AwayTeamID == teamID)
}

// Teams returns the known participants.
func (g Game) Teams() []string {
	var ids []string
	if g.HomeTeamID != "" {
		ids = append(ids, g.HomeTeamID)
	}
	if g.AwayTeamID != "" {
		ids = append(ids, g.AwayTeamID)
	}
	return ids
}

// Standing is one row of the standings consumed for bracket seeding.
type Standing struct {
	TeamID string
	Rank   int
	PoolID string
}

// Day truncates t to a UTC calendar date so dates compare and key maps
// consistently.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a DateLayout string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// DateRange lists every date from start through end inclusive.
func DateRange(start, end time.Time) []time.Time {
	var dates []time.Time
	d := Day(start)
	last := Day(end)
	for !d.After(last) {
		dates = append(dates, d)
		d = d.AddDate(0, 0, 1)
	}
	return dates
}

// Tournament is the configuration a scheduling run works against.
type Tournament struct {
	ID            string
	Name          string
	StartDate     time.Time
	EndDate       time.Time
	Rules         Rules
	Strategy      string
	PlayoffFormat string
}

// Dates lists every tournament date.
func (t Tournament) Dates() []time.Time {
	return DateRange(t.StartDate, t.EndDate)
}
