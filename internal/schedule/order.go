package schedule

import "github.com/derekprior/tourney/internal/tournament"

// SnakeOrder interleaves games one per pool in round-robin fashion, pools in
// order of first appearance, so no pool takes all the early slots. Order
// within a pool is preserved.
func SnakeOrder(games []tournament.Game) []tournament.Game {
	var pools []string
	byPool := make(map[string][]tournament.Game)
	for _, g := range games {
		if _, ok := byPool[g.PoolID]; !ok {
			pools = append(pools, g.PoolID)
		}
		byPool[g.PoolID] = append(byPool[g.PoolID], g)
	}

	out := make([]tournament.Game, 0, len(games))
	for round := 0; len(out) < len(games); round++ {
		for _, pool := range pools {
			if round < len(byPool[pool]) {
				out = append(out, byPool[pool][round])
			}
		}
	}
	return out
}
