package engine

import "sync"

// tournamentLocks serializes writers per tournament. Placement builds its
// occupancy from a snapshot, so two writers on one tournament could book the
// same slot.
type tournamentLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTournamentLocks() *tournamentLocks {
	return &tournamentLocks{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until the tournament is free and returns the unlock func.
func (t *tournamentLocks) lock(tournamentID string) func() {
	t.mu.Lock()
	m, ok := t.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		t.locks[tournamentID] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m.Unlock
}
