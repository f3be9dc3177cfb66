// Package memory is an in-process record store implementing every
// tournament collaborator interface.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/derekprior/tourney/internal/tournament"
)

// Seed is the initial content of one tournament.
type Seed struct {
	Tournament  tournament.Tournament
	Teams       []tournament.Team
	Pools       []tournament.Pool
	Diamonds    []tournament.Diamond
	Allocations []tournament.Allocation
	Games       []tournament.Game
	Standings   map[string][]tournament.Standing // by division
}

type Store struct {
	mu          sync.RWMutex
	tournaments map[string]tournament.Tournament
	teams       map[string][]tournament.Team
	pools       map[string][]tournament.Pool
	diamonds    map[string][]tournament.Diamond
	allocations map[string][]tournament.Allocation
	games       map[string][]tournament.Game
	standings   map[string]map[string][]tournament.Standing
}

func New() *Store {
	return &Store{
		tournaments: make(map[string]tournament.Tournament),
		teams:       make(map[string][]tournament.Team),
		pools:       make(map[string][]tournament.Pool),
		diamonds:    make(map[string][]tournament.Diamond),
		allocations: make(map[string][]tournament.Allocation),
		games:       make(map[string][]tournament.Game),
		standings:   make(map[string]map[string][]tournament.Standing),
	}
}

// Load replaces everything stored for seed.Tournament.ID.
func (s *Store) Load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := seed.Tournament.ID
	s.tournaments[id] = seed.Tournament
	s.teams[id] = append([]tournament.Team(nil), seed.Teams...)
	s.pools[id] = append([]tournament.Pool(nil), seed.Pools...)
	s.diamonds[id] = append([]tournament.Diamond(nil), seed.Diamonds...)
	s.allocations[id] = append([]tournament.Allocation(nil), seed.Allocations...)
	s.games[id] = append([]tournament.Game(nil), seed.Games...)
	s.standings[id] = make(map[string][]tournament.Standing, len(seed.Standings))
	for division, rows := range seed.Standings {
		s.standings[id][division] = append([]tournament.Standing(nil), rows...)
	}
}

func (s *Store) GetTournament(_ context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tournaments[tournamentID]
	return t, ok, nil
}

func (s *Store) ListTeams(_ context.Context, tournamentID string) ([]tournament.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tournament.Team(nil), s.teams[tournamentID]...), nil
}

func (s *Store) ListPools(_ context.Context, tournamentID string) ([]tournament.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tournament.Pool(nil), s.pools[tournamentID]...), nil
}

func (s *Store) ListDiamonds(_ context.Context, tournamentID string) ([]tournament.Diamond, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tournament.Diamond(nil), s.diamonds[tournamentID]...), nil
}

func (s *Store) ListAllocations(_ context.Context, tournamentID string) ([]tournament.Allocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tournament.Allocation(nil), s.allocations[tournamentID]...), nil
}

// AddAllocation reserves a block after load, as another league's booking would.
func (s *Store) AddAllocation(tournamentID string, a tournament.Allocation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allocations[tournamentID] = append(s.allocations[tournamentID], a)
}

func (s *Store) ListGames(_ context.Context, tournamentID string) ([]tournament.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]tournament.Game(nil), s.games[tournamentID]...), nil
}

// SaveGames upserts by game ID. New games are appended in the given order.
func (s *Store) SaveGames(_ context.Context, tournamentID string, games []tournament.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.games[tournamentID]
	index := make(map[string]int, len(stored))
	for i, g := range stored {
		index[g.ID] = i
	}
	for _, g := range games {
		g.TournamentID = tournamentID
		if i, ok := index[g.ID]; ok {
			stored[i] = g
			continue
		}
		index[g.ID] = len(stored)
		stored = append(stored, g)
	}
	s.games[tournamentID] = stored
	return nil
}

// Standings returns the division's rows ordered by rank.
func (s *Store) Standings(_ context.Context, tournamentID, divisionID string) ([]tournament.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := append([]tournament.Standing(nil), s.standings[tournamentID][divisionID]...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Rank < rows[j].Rank })
	return rows, nil
}

func (s *Store) SetStandings(tournamentID, divisionID string, rows []tournament.Standing) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.standings[tournamentID] == nil {
		s.standings[tournamentID] = make(map[string][]tournament.Standing)
	}
	s.standings[tournamentID][divisionID] = append([]tournament.Standing(nil), rows...)
}
