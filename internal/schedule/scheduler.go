// Package schedule places games onto (date, time, diamond) slots with a
// greedy first-fit search.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/strategy"
	"github.com/derekprior/tourney/internal/tournament"
	"github.com/derekprior/tourney/internal/validator"
)

var (
	ErrNoDiamonds       = errors.New("no usable diamonds")
	ErrInvalidDateRange = errors.New("invalid tournament date range")
)

// Reason categorizes why a candidate slot was rejected. Later values are
// deeper in the search, so the largest reason seen for an item is its
// nearest miss.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoDates
	ReasonDailyCap
	ReasonPrerequisite
	ReasonCrossDayRest
	ReasonRest
	ReasonDiamondBusy
	ReasonSlotInvalid
)

func (r Reason) String() string {
	switch r {
	case ReasonNoDates:
		return "no eligible dates"
	case ReasonDailyCap:
		return "daily game cap reached"
	case ReasonPrerequisite:
		return "earlier playoff game not placed"
	case ReasonCrossDayRest:
		return "cross-day rest"
	case ReasonRest:
		return "rest time"
	case ReasonDiamondBusy:
		return "venue conflict: every diamond time is taken"
	case ReasonSlotInvalid:
		return "diamond hours or reserved block"
	default:
		return "none"
	}
}

// Request is the input to AutoPlace.
type Request struct {
	TournamentID  string
	Matchups      []strategy.Matchup
	Games         []tournament.Game // unplaced games and playoff templates
	Diamonds      []tournament.Diamond
	Dates         []time.Time
	Existing      []tournament.Game
	Allocations   []tournament.Allocation
	Rules         tournament.Rules
	TeamDivisions map[string]string
	NewID         func() string // defaults to uuid.NewString
}

// Failure is an item no slot could be found for.
type Failure struct {
	Game   tournament.Game
	Reason Reason
	Detail string
}

func (f Failure) String() string {
	msg := fmt.Sprintf("%s vs %s: %s", Participant(f.Game, true), Participant(f.Game, false), f.Reason)
	if f.Detail != "" {
		msg += " (" + f.Detail + ")"
	}
	return msg
}

// Result holds placed games in commit order and the items that failed.
type Result struct {
	Placed     []tournament.Game
	Failed     []Failure
	Warnings   []tournament.Violation
	Rejections map[Reason]int
}

// Violations reports each failure as an error. Placement warnings stay in
// Warnings.
func (r *Result) Violations() []tournament.Violation {
	vs := make([]tournament.Violation, 0, len(r.Failed))
	for _, f := range r.Failed {
		vs = append(vs, tournament.Violation{
			GameID:   f.Game.ID,
			Message:  "unplaced: " + f.String(),
			Severity: tournament.SeverityError,
		})
	}
	return vs
}

// Participant names the home (or away) side by team ID, falling back to the
// playoff source.
func Participant(g tournament.Game, home bool) string {
	id, src := g.AwayTeamID, g.AwaySource
	if home {
		id, src = g.HomeTeamID, g.HomeSource
	}
	switch {
	case id != "":
		return id
	case src != nil:
		return src.String()
	default:
		return "TBD"
	}
}

// AutoPlace searches dates, then start times, then diamonds for each item
// and commits the first valid slot. Items that cannot be placed are
// reported in Result.Failed; only a missing diamond set or date range is
// an error.
func AutoPlace(req Request) (*Result, error) {
	var diamonds []tournament.Diamond
	for _, d := range req.Diamonds {
		if d.Status != tournament.DiamondClosed {
			diamonds = append(diamonds, d)
		}
	}
	if len(diamonds) == 0 {
		return nil, ErrNoDiamonds
	}
	dates := NormalizeDates(req.Dates)
	if len(dates) == 0 {
		return nil, ErrInvalidDateRange
	}

	p := newPlacer(req, diamonds, dates)
	for _, g := range p.items() {
		p.place(g)
	}
	return p.result, nil
}

type placer struct {
	req      Request
	rules    tournament.Rules
	diamonds []tournament.Diamond
	dayIndex map[time.Time]int
	poolPlay []time.Time
	playoff  []time.Time
	occ      *occupancy
	times    map[int][]clock.Minutes
	result   *Result
}

func newPlacer(req Request, diamonds []tournament.Diamond, dates []time.Time) *placer {
	moving := make(map[string]bool, len(req.Games))
	for _, g := range req.Games {
		if g.ID != "" {
			moving[g.ID] = true
		}
	}
	var existing []tournament.Game
	for _, g := range req.Existing {
		if !moving[g.ID] {
			existing = append(existing, g)
		}
	}

	dayIndex := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		dayIndex[d] = i
	}
	poolPlay, playoff := SplitDates(dates, req.Rules.PoolPlayDays)

	return &placer{
		req:      req,
		rules:    req.Rules,
		diamonds: diamonds,
		dayIndex: dayIndex,
		poolPlay: poolPlay,
		playoff:  playoff,
		occ:      newOccupancy(existing),
		times:    make(map[int][]clock.Minutes),
		result:   &Result{Rejections: make(map[Reason]int)},
	}
}

// items builds the placement queue: pool-play games snake-ordered by pool,
// then playoff games by round. Games without a number are numbered after
// everything already known.
func (p *placer) items() []tournament.Game {
	newID := p.req.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	var poolPlay, playoff []tournament.Game
	for _, g := range p.req.Games {
		if g.ID == "" {
			g.ID = newID()
		}
		if g.TournamentID == "" {
			g.TournamentID = p.req.TournamentID
		}
		if g.DurationMinutes <= 0 {
			g.DurationMinutes = p.rules.GameLength()
		}
		g.DiamondID, g.Date, g.Start = "", time.Time{}, 0
		if g.IsPlayoff {
			playoff = append(playoff, g)
		} else {
			poolPlay = append(poolPlay, g)
		}
	}
	for _, m := range p.req.Matchups {
		poolPlay = append(poolPlay, tournament.Game{
			ID:              newID(),
			TournamentID:    p.req.TournamentID,
			HomeTeamID:      m.HomeTeamID,
			AwayTeamID:      m.AwayTeamID,
			PoolID:          m.PoolID,
			DivisionID:      p.req.TeamDivisions[m.HomeTeamID],
			DurationMinutes: p.rules.GameLength(),
		})
	}

	sort.SliceStable(playoff, func(i, j int) bool {
		if playoff[i].Round != playoff[j].Round {
			return playoff[i].Round < playoff[j].Round
		}
		return playoff[i].Number < playoff[j].Number
	})
	items := append(SnakeOrder(poolPlay), playoff...)

	next := p.occ.maxNumber()
	for _, g := range items {
		if g.Number > next {
			next = g.Number
		}
	}
	for i := range items {
		if items[i].Number == 0 {
			next++
			items[i].Number = next
		}
	}
	return items
}

type search struct {
	reason Reason
	detail string
}

func (p *placer) miss(s *search, r Reason, detail string) {
	p.result.Rejections[r]++
	if r > s.reason {
		s.reason = r
		s.detail = detail
	}
}

func (p *placer) place(g tournament.Game) {
	dates := p.poolPlay
	if g.IsPlayoff {
		dates = p.playoff
	}
	division := g.DivisionID
	if division == "" {
		division = p.req.TeamDivisions[g.HomeTeamID]
	}

	s := &search{reason: ReasonNoDates}
	for _, date := range dates {
		if !p.underCap(g, date) {
			p.miss(s, ReasonDailyCap, "")
			continue
		}
		for _, start := range p.timesFor(g.Duration()) {
			iv := clock.Span(start, g.Duration())
			if !p.prerequisitesDone(g, date, start) {
				p.miss(s, ReasonPrerequisite, "")
				continue
			}
			if !p.crossDayOK(g, date, iv) {
				p.miss(s, ReasonCrossDayRest, "")
				continue
			}
			if !p.restOK(g, date, iv) {
				p.miss(s, ReasonRest, "")
				continue
			}
			for _, d := range p.diamonds {
				// Times spans every diamond's hours; a start outside this
				// diamond's window is not a candidate for it.
				if !iv.Within(d.Window()) {
					continue
				}
				if p.occ.diamondBusy(d.ID, date, iv) {
					p.miss(s, ReasonDiamondBusy, "")
					continue
				}
				res := validator.ValidateSlot(validator.Candidate{
					HomeTeamID: g.HomeTeamID,
					AwayTeamID: g.AwayTeamID,
					Diamond:    d,
					Date:       date,
					Start:      start,
					Duration:   g.Duration(),
				}, p.occ.games, p.req.Allocations, validator.Options{
					SkipGameID:     g.ID,
					TeamDivisionID: division,
					MinRestMinutes: p.rules.MinRestMinutes,
				})
				if !res.Valid {
					p.miss(s, ReasonSlotInvalid, res.Errors[0])
					continue
				}

				g.DiamondID, g.Date, g.Start = d.ID, date, start
				if g.DivisionID == "" {
					g.DivisionID = division
				}
				p.occ.add(g)
				p.result.Placed = append(p.result.Placed, g)
				for _, w := range res.Warnings {
					p.result.Warnings = append(p.result.Warnings, tournament.Violation{
						GameID:   g.ID,
						Message:  w,
						Severity: tournament.SeverityWarning,
					})
				}
				return
			}
		}
	}

	p.result.Failed = append(p.result.Failed, Failure{Game: g, Reason: s.reason, Detail: s.detail})
}

func (p *placer) timesFor(duration int) []clock.Minutes {
	if ts, ok := p.times[duration]; ok {
		return ts
	}
	ts := Times(p.diamonds, p.rules.SlotStep(), duration)
	p.times[duration] = ts
	return ts
}

func (p *placer) underCap(g tournament.Game, date time.Time) bool {
	limit := p.rules.DailyCap(p.dayIndex[date])
	if limit <= 0 {
		return true
	}
	for _, team := range g.Teams() {
		if p.occ.gamesOn(team, date) >= limit {
			return false
		}
	}
	return true
}

// prerequisitesDone requires every winner-sourced feeder game to be placed
// and finished, plus rest, before start.
func (p *placer) prerequisitesDone(g tournament.Game, date time.Time, start clock.Minutes) bool {
	for _, src := range []tournament.Source{g.HomeSource, g.AwaySource} {
		w, ok := src.(tournament.WinnerSource)
		if !ok {
			continue
		}
		feeder, ok := p.occ.numbers[w.GameNumber]
		if !ok || date.Before(feeder.date) {
			return false
		}
		if date.Equal(feeder.date) && start < feeder.end.Add(p.rules.MinRestMinutes) {
			return false
		}
	}
	return true
}

func (p *placer) crossDayOK(g tournament.Game, date time.Time, iv clock.Interval) bool {
	for _, team := range g.Teams() {
		if end, ok := p.occ.lastEnd(team, date.AddDate(0, 0, -1)); ok && !p.rules.OvernightRestOK(end, iv.Start) {
			return false
		}
		if start, ok := p.occ.firstStart(team, date.AddDate(0, 0, 1)); ok && !p.rules.OvernightRestOK(iv.End, start) {
			return false
		}
	}
	return true
}

func (p *placer) restOK(g tournament.Game, date time.Time, iv clock.Interval) bool {
	for _, team := range g.Teams() {
		if !p.occ.restOK(team, date, iv, p.rules.MinRestMinutes) {
			return false
		}
	}
	return true
}
