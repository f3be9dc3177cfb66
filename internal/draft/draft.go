// Package draft builds a complete candidate schedule without writing it
// anywhere, and re-checks a draft against fresh state before commit.
package draft

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/tourney/internal/schedule"
	"github.com/derekprior/tourney/internal/strategy"
	"github.com/derekprior/tourney/internal/tournament"
	"github.com/derekprior/tourney/internal/validator"
)

var (
	ErrNoPools         = errors.New("tournament has no pools")
	ErrUnknownStrategy = errors.New("unknown matchup strategy")
)

// Input is a point-in-time snapshot of a tournament.
type Input struct {
	Tournament  tournament.Tournament
	Teams       []tournament.Team
	Pools       []tournament.Pool
	Diamonds    []tournament.Diamond
	Allocations []tournament.Allocation
	Existing    []tournament.Game
	Playoffs    []tournament.Game // unplaced playoff templates to schedule with pool play
	NewID       func() string
}

// Draft is a generated schedule awaiting review. Games holds placed and
// unplaced games; Existing games are never included.
type Draft struct {
	TournamentID string
	Games        []tournament.Game
	Violations   []tournament.Violation
	Matchups     strategy.Result
	Placement    *schedule.Result
}

// Valid reports whether the draft can be committed.
func (d *Draft) Valid() bool {
	return !tournament.HasErrors(d.Violations)
}

// Placed counts games with a diamond and date.
func (d *Draft) Placed() int {
	n := 0
	for _, g := range d.Games {
		if g.Placed() {
			n++
		}
	}
	return n
}

// Generate runs matchup generation and placement and collects every
// violation for review.
func Generate(in Input) (*Draft, error) {
	if len(in.Pools) == 0 {
		return nil, ErrNoPools
	}
	strat, err := strategy.Get(in.Tournament.Strategy)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownStrategy, "%q", in.Tournament.Strategy)
	}
	if in.Tournament.EndDate.Before(in.Tournament.StartDate) {
		return nil, errors.Wrapf(schedule.ErrInvalidDateRange, "%s is before %s",
			in.Tournament.EndDate.Format(tournament.DateLayout),
			in.Tournament.StartDate.Format(tournament.DateLayout))
	}

	rules := in.Tournament.Rules
	minimum := rules.MinGames
	if minimum <= 0 {
		minimum = strategy.DefaultMinimum
	}
	gen := strat.GenerateMatchups(strategy.Entries(in.Pools, in.Teams), minimum)

	divisions := make(map[string]string, len(in.Teams))
	for _, t := range in.Teams {
		divisions[t.ID] = t.DivisionID
	}

	res, err := schedule.AutoPlace(schedule.Request{
		TournamentID:  in.Tournament.ID,
		Matchups:      gen.Matchups,
		Games:         in.Playoffs,
		Diamonds:      in.Diamonds,
		Dates:         in.Tournament.Dates(),
		Existing:      in.Existing,
		Allocations:   in.Allocations,
		Rules:         rules,
		TeamDivisions: divisions,
		NewID:         in.NewID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "placing matchups")
	}

	d := &Draft{
		TournamentID: in.Tournament.ID,
		Matchups:     gen,
		Placement:    res,
	}
	d.Games = append(d.Games, res.Placed...)
	for _, f := range res.Failed {
		d.Games = append(d.Games, f.Game)
	}

	// Placement warnings resurface from the schedule check below.
	d.Violations = append(d.Violations, res.Violations()...)
	for _, o := range gen.Teams {
		if o.Status == strategy.StatusUnresolved {
			d.Violations = append(d.Violations, tournament.Violation{
				TeamID:   o.TeamID,
				Message:  fmt.Sprintf("team %s has %d games (minimum %d): no opponent left", o.TeamID, o.Games, minimum),
				Severity: tournament.SeverityWarning,
			})
		}
	}
	d.Violations = append(d.Violations, check(d.Games, Snapshot{
		Diamonds:    in.Diamonds,
		Allocations: in.Allocations,
		Existing:    in.Existing,
		Rules:       rules,
		StartDate:   in.Tournament.StartDate,
	}, false)...)
	tournament.SortViolations(d.Violations)
	return d, nil
}

// Snapshot is the state a draft is checked against at commit time.
type Snapshot struct {
	Diamonds    []tournament.Diamond
	Allocations []tournament.Allocation
	Existing    []tournament.Game
	Rules       tournament.Rules
	StartDate   time.Time
}

// Revalidate checks draft games against the snapshot as if they were
// already stored, replacing any stored game with the same ID. Only
// violations on draft games are returned. Unplaced draft games are errors.
func Revalidate(games []tournament.Game, snap Snapshot) []tournament.Violation {
	vs := check(games, snap, true)
	tournament.SortViolations(vs)
	return vs
}

func check(games []tournament.Game, snap Snapshot, requirePlaced bool) []tournament.Violation {
	ids := make(map[string]bool, len(games))
	for _, g := range games {
		ids[g.ID] = true
	}
	all := make([]tournament.Game, 0, len(snap.Existing)+len(games))
	for _, g := range snap.Existing {
		if !ids[g.ID] {
			all = append(all, g)
		}
	}
	all = append(all, games...)

	var vs []tournament.Violation
	if requirePlaced {
		for _, g := range games {
			if !g.Placed() {
				vs = append(vs, tournament.Violation{
					GameID: g.ID,
					Message: fmt.Sprintf("%s vs %s is not placed",
						schedule.Participant(g, true), schedule.Participant(g, false)),
					Severity: tournament.SeverityError,
				})
			}
		}
	}
	for _, v := range validator.ValidateSchedule(validator.Schedule{
		Games:       all,
		Diamonds:    snap.Diamonds,
		Allocations: snap.Allocations,
		Rules:       snap.Rules,
		StartDate:   snap.StartDate,
	}) {
		if ids[v.GameID] {
			vs = append(vs, v)
		}
	}
	return vs
}
