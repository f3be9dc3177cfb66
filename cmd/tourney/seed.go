package main

import (
	"github.com/derekprior/tourney/internal/config"
	"github.com/derekprior/tourney/internal/store/memory"
)

// seedFromConfig is the reference data a CLI run works against.
func seedFromConfig(cfg *config.Config) memory.Seed {
	return memory.Seed{
		Tournament:  cfg.BuildTournament(),
		Teams:       cfg.BuildTeams(),
		Pools:       cfg.BuildPools(),
		Diamonds:    cfg.BuildDiamonds(),
		Allocations: cfg.BuildAllocations(),
		Standings:   cfg.BuildStandings(),
	}
}
