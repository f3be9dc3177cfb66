// Package bracket maps seeded standings onto fixed playoff bracket shapes.
package bracket

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/tourney/internal/tournament"
)

var (
	ErrUnknownPlayoffFormat  = errors.New("unknown playoff format")
	ErrInsufficientStandings = errors.New("not enough teams in standings")
	ErrInvalidDependency     = errors.New("bracket slot depends on a later game")
)

// Slot is one playoff game in a bracket shape.
type Slot struct {
	Round      int
	GameNumber int
	Name       string
	Home       tournament.Source
	Away       tournament.Source
}

func seed(rank int) tournament.Source { return tournament.SeedSource{Rank: rank} }

func poolSeed(pool, rank int) tournament.Source {
	return tournament.SeedSource{Rank: rank, Pool: pool}
}

func winner(game, round int) tournament.Source {
	return tournament.WinnerSource{GameNumber: game, Round: round}
}

var formats = map[string][]Slot{
	"top_4": {
		{1, 1, "Semifinal 1", seed(1), seed(4)},
		{1, 2, "Semifinal 2", seed(2), seed(3)},
		{2, 3, "Final", winner(1, 1), winner(2, 1)},
	},
	"top_6": {
		{1, 1, "Quarterfinal 1", seed(3), seed(6)},
		{1, 2, "Quarterfinal 2", seed(4), seed(5)},
		{2, 3, "Semifinal 1", seed(1), winner(2, 1)},
		{2, 4, "Semifinal 2", seed(2), winner(1, 1)},
		{3, 5, "Final", winner(3, 2), winner(4, 2)},
	},
	"top_8": {
		{1, 1, "Quarterfinal 1", seed(1), seed(8)},
		{1, 2, "Quarterfinal 2", seed(4), seed(5)},
		{1, 3, "Quarterfinal 3", seed(2), seed(7)},
		{1, 4, "Quarterfinal 4", seed(3), seed(6)},
		{2, 5, "Semifinal 1", winner(1, 1), winner(2, 1)},
		{2, 6, "Semifinal 2", winner(3, 1), winner(4, 1)},
		{3, 7, "Final", winner(5, 2), winner(6, 2)},
	},
	"cross_pool_4": {
		{1, 1, "Semifinal 1", poolSeed(1, 1), poolSeed(2, 2)},
		{1, 2, "Semifinal 2", poolSeed(2, 1), poolSeed(1, 2)},
		{2, 3, "Final", winner(1, 1), winner(2, 1)},
	},
	"cross_pool_8": {
		{1, 1, "Quarterfinal 1", poolSeed(1, 1), poolSeed(3, 2)},
		{1, 2, "Quarterfinal 2", poolSeed(1, 2), poolSeed(3, 1)},
		{1, 3, "Quarterfinal 3", poolSeed(2, 1), poolSeed(4, 2)},
		{1, 4, "Quarterfinal 4", poolSeed(2, 2), poolSeed(4, 1)},
		{2, 5, "Semifinal 1", winner(1, 1), winner(3, 1)},
		{2, 6, "Semifinal 2", winner(2, 1), winner(4, 1)},
		{3, 7, "Final", winner(5, 2), winner(6, 2)},
	},
}

// Formats lists the known format names.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Slots returns the bracket shape for format. Unknown formats return an
// empty list.
func Slots(format string) []Slot {
	table := formats[format]
	if len(table) == 0 {
		return nil
	}
	out := make([]Slot, len(table))
	copy(out, table)
	return out
}

// PoolsRequired is how many pools a format seeds from; zero means overall
// standings.
func PoolsRequired(format string) int {
	n := 0
	for _, s := range formats[format] {
		for _, src := range []tournament.Source{s.Home, s.Away} {
			if ss, ok := src.(tournament.SeedSource); ok && ss.Pool > n {
				n = ss.Pool
			}
		}
	}
	return n
}

// CheckDependencies verifies every winner source names a game in a strictly
// earlier round.
func CheckDependencies(slots []Slot) error {
	rounds := make(map[int]int, len(slots))
	for _, s := range slots {
		rounds[s.GameNumber] = s.Round
	}
	for _, s := range slots {
		for _, src := range []tournament.Source{s.Home, s.Away} {
			w, ok := src.(tournament.WinnerSource)
			if !ok {
				continue
			}
			round, known := rounds[w.GameNumber]
			if !known || round != w.Round || round >= s.Round {
				return errors.Wrapf(ErrInvalidDependency, "game %d (round %d) uses %s", s.GameNumber, s.Round, w)
			}
		}
	}
	return nil
}
