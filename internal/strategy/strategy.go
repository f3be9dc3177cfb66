package strategy

import (
	"fmt"

	"github.com/derekprior/tourney/internal/tournament"
)

// DefaultMinimum is the game guarantee used when none is configured.
const DefaultMinimum = 3

// Matchup is an unplaced pairing.
type Matchup struct {
	HomeTeamID string
	AwayTeamID string
	PoolID     string
	CrossPool  bool // bridge game between pools
}

type TeamStatus string

const (
	StatusSatisfied  TeamStatus = "satisfied"
	StatusUnresolved TeamStatus = "unresolved"
)

// TeamOutcome is the terminal state of one team after generation.
type TeamOutcome struct {
	TeamID string
	PoolID string
	Games  int
	Extra  int // games beyond the guarantee
	Status TeamStatus
}

// Result is the output of a generation pass.
type Result struct {
	Matchups       []Matchup
	Teams          []TeamOutcome
	CrossPoolGames int
	Attempts       int
}

// Unresolved lists teams left below the guarantee for lack of an opponent.
func (r Result) Unresolved() []string {
	var ids []string
	for _, t := range r.Teams {
		if t.Status == StatusUnresolved {
			ids = append(ids, t.TeamID)
		}
	}
	return ids
}

// GamesFor returns how many matchups include teamID.
func (r Result) GamesFor(teamID string) int {
	for _, t := range r.Teams {
		if t.TeamID == teamID {
			return t.Games
		}
	}
	return 0
}

// Entry is one pool with its members in order.
type Entry struct {
	PoolID string
	Teams  []tournament.Team
}

// Strategy generates the matchups for pool play.
type Strategy interface {
	GenerateMatchups(pools []Entry, minimum int) Result
}

// Get returns a Strategy by name. An empty name selects min_guarantee.
func Get(name string) (Strategy, error) {
	switch name {
	case "", "min_guarantee":
		return &MinGuarantee{}, nil
	case "round_robin":
		return &RoundRobin{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", name)
	}
}

// Entries joins pools with their member teams. Members follow Pool.TeamIDs
// when set, otherwise the order teams appear with a matching PoolID.
func Entries(pools []tournament.Pool, teams []tournament.Team) []Entry {
	byID := make(map[string]tournament.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	entries := make([]Entry, 0, len(pools))
	for _, p := range pools {
		e := Entry{PoolID: p.ID}
		if len(p.TeamIDs) > 0 {
			for _, id := range p.TeamIDs {
				if t, ok := byID[id]; ok {
					e.Teams = append(e.Teams, t)
				}
			}
		} else {
			for _, t := range teams {
				if t.PoolID == p.ID {
					e.Teams = append(e.Teams, t)
				}
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// RoundRobin pairs every team with every other team in its pool once,
// alternating home and away.
type RoundRobin struct{}

func (s *RoundRobin) GenerateMatchups(pools []Entry, minimum int) Result {
	var res Result
	games := make(map[string]int)

	for _, p := range pools {
		for i := 0; i < len(p.Teams); i++ {
			for j := i + 1; j < len(p.Teams); j++ {
				home, away := p.Teams[i].ID, p.Teams[j].ID
				if (i+j)%2 == 1 {
					home, away = away, home
				}
				res.Matchups = append(res.Matchups, Matchup{
					HomeTeamID: home,
					AwayTeamID: away,
					PoolID:     p.PoolID,
				})
				games[home]++
				games[away]++
			}
		}
	}

	for _, p := range pools {
		for _, t := range p.Teams {
			out := TeamOutcome{TeamID: t.ID, PoolID: p.PoolID, Games: games[t.ID], Status: StatusSatisfied}
			if minimum > 0 && out.Games < minimum {
				out.Status = StatusUnresolved
			} else if minimum > 0 {
				out.Extra = out.Games - minimum
			}
			res.Teams = append(res.Teams, out)
		}
	}
	return res
}
