package bracket

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/tourney/internal/tournament"
)

// Resolved is a slot with seed-sourced participants filled in. Winner-sourced
// sides stay empty until the feeder game is decided.
type Resolved struct {
	Slot
	HomeTeamID string
	AwayTeamID string
}

// Resolve fills seed references from standings. Overall seeds index the
// standings by rank; pool seeds index the standings of poolOrder[Pool-1].
func Resolve(standings []tournament.Standing, poolOrder []string, format string) ([]Resolved, error) {
	slots := Slots(format)
	if len(slots) == 0 {
		return nil, errors.Wrapf(ErrUnknownPlayoffFormat, "%q", format)
	}
	if err := CheckDependencies(slots); err != nil {
		return nil, err
	}

	overall := make([]tournament.Standing, len(standings))
	copy(overall, standings)
	sort.SliceStable(overall, func(i, j int) bool { return overall[i].Rank < overall[j].Rank })

	byPool := make(map[string][]tournament.Standing)
	for _, s := range overall {
		byPool[s.PoolID] = append(byPool[s.PoolID], s)
	}

	lookup := func(src tournament.Source) (string, error) {
		ss, ok := src.(tournament.SeedSource)
		if !ok {
			return "", nil
		}
		list := overall
		if ss.Pool > 0 {
			if ss.Pool > len(poolOrder) {
				return "", errors.Wrapf(ErrInsufficientStandings, "%s needs %d pools, have %d", ss, ss.Pool, len(poolOrder))
			}
			list = byPool[poolOrder[ss.Pool-1]]
		}
		if ss.Rank < 1 || ss.Rank > len(list) {
			return "", errors.Wrapf(ErrInsufficientStandings, "no team for %s", ss)
		}
		return list[ss.Rank-1].TeamID, nil
	}

	out := make([]Resolved, 0, len(slots))
	for _, s := range slots {
		home, err := lookup(s.Home)
		if err != nil {
			return nil, err
		}
		away, err := lookup(s.Away)
		if err != nil {
			return nil, err
		}
		out = append(out, Resolved{Slot: s, HomeTeamID: home, AwayTeamID: away})
	}
	return out, nil
}

// GameOptions controls how resolved slots become playoff games.
type GameOptions struct {
	TournamentID string
	DivisionID   string
	Offset       int // added to every game number, including winner references
	Duration     int
	NewID        func() string
}

// Games turns resolved slots into unplaced playoff game templates.
func Games(resolved []Resolved, opts GameOptions) []tournament.Game {
	shift := func(src tournament.Source) tournament.Source {
		if w, ok := src.(tournament.WinnerSource); ok {
			w.GameNumber += opts.Offset
			return w
		}
		return src
	}

	games := make([]tournament.Game, 0, len(resolved))
	for _, r := range resolved {
		g := tournament.Game{
			TournamentID:    opts.TournamentID,
			Number:          r.GameNumber + opts.Offset,
			HomeTeamID:      r.HomeTeamID,
			AwayTeamID:      r.AwayTeamID,
			DivisionID:      opts.DivisionID,
			DurationMinutes: opts.Duration,
			IsPlayoff:       true,
			Round:           r.Round,
			HomeSource:      shift(r.Home),
			AwaySource:      shift(r.Away),
		}
		if opts.NewID != nil {
			g.ID = opts.NewID()
		}
		games = append(games, g)
	}
	return games
}
