package strategy

import (
	"sort"

	"github.com/derekprior/tourney/internal/tournament"
)

// MinGuarantee greedily pairs the neediest team until every team has played
// the minimum. Opponents are tried in this order: a needy team from the same
// pool, a needy team from any pool (a bridge game), a team willing to play
// extra, and finally any unplayed team that already met the minimum. A team
// with no possible opponent ends Unresolved.
type MinGuarantee struct{}

type teamState struct {
	team   tournament.Team
	pool   string
	order  int
	games  int
	extra  int
	home   int
	played map[string]bool
	stuck  bool
}

func (s *MinGuarantee) GenerateMatchups(pools []Entry, minimum int) Result {
	if minimum <= 0 {
		minimum = DefaultMinimum
	}

	var inputOrder []*teamState
	for _, p := range pools {
		for _, t := range p.Teams {
			inputOrder = append(inputOrder, &teamState{
				team:   t,
				pool:   p.PoolID,
				played: make(map[string]bool),
			})
		}
	}

	// Willing teams are fallback opponents, not first picks.
	states := make([]*teamState, len(inputOrder))
	copy(states, inputOrder)
	sort.SliceStable(states, func(i, j int) bool {
		return !states[i].team.WillingToPlayExtra && states[j].team.WillingToPlayExtra
	})
	for i, st := range states {
		st.order = i
	}

	needy := func(st *teamState) bool {
		return !st.stuck && st.games < minimum
	}

	var res Result
	limit := len(states) * minimum * 2
	for res.Attempts < limit {
		team := pick(states, needy, fewestGames)
		if team == nil {
			break
		}
		res.Attempts++

		opp := findOpponent(states, team, needy)
		if opp == nil {
			team.stuck = true
			continue
		}

		home, away := team, opp
		if opp.home < team.home {
			home, away = opp, team
		}
		m := Matchup{
			HomeTeamID: home.team.ID,
			AwayTeamID: away.team.ID,
			PoolID:     team.pool,
			CrossPool:  team.pool != opp.pool,
		}
		res.Matchups = append(res.Matchups, m)
		if m.CrossPool {
			res.CrossPoolGames++
		}

		home.home++
		for _, st := range []*teamState{team, opp} {
			st.games++
			if st.games > minimum {
				st.extra++
			}
		}
		team.played[opp.team.ID] = true
		opp.played[team.team.ID] = true
	}

	for _, st := range inputOrder {
		out := TeamOutcome{
			TeamID: st.team.ID,
			PoolID: st.pool,
			Games:  st.games,
			Extra:  st.extra,
			Status: StatusSatisfied,
		}
		if st.games < minimum {
			out.Status = StatusUnresolved
		}
		res.Teams = append(res.Teams, out)
	}
	return res
}

func findOpponent(states []*teamState, team *teamState, needy func(*teamState) bool) *teamState {
	available := func(st *teamState) bool {
		return st != team && !team.played[st.team.ID]
	}
	samePool := func(st *teamState) bool { return st.pool == team.pool }

	if opp := pick(states, func(st *teamState) bool {
		return available(st) && needy(st) && samePool(st)
	}, fewestGames); opp != nil {
		return opp
	}
	if opp := pick(states, func(st *teamState) bool {
		return available(st) && needy(st)
	}, fewestGames); opp != nil {
		return opp
	}
	if opp := pick(states, func(st *teamState) bool {
		return available(st) && st.team.WillingToPlayExtra
	}, fewestExtra); opp != nil {
		return opp
	}
	if opp := pick(states, func(st *teamState) bool {
		return available(st) && samePool(st)
	}, fewestExtra); opp != nil {
		return opp
	}
	return pick(states, available, fewestExtra)
}

func fewestGames(a, b *teamState) bool { return a.games < b.games }
func fewestExtra(a, b *teamState) bool { return a.extra < b.extra }

// pick returns the first state matching keep that no later match beats
// under less, so ties resolve to the earlier team.
func pick(states []*teamState, keep func(*teamState) bool, less func(a, b *teamState) bool) *teamState {
	var best *teamState
	for _, st := range states {
		if !keep(st) {
			continue
		}
		if best == nil || less(st, best) {
			best = st
		}
	}
	return best
}
