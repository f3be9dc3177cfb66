package tournament

import "context"

// TeamReader exposes rosters and pool membership.
type TeamReader interface {
	ListTeams(ctx context.Context, tournamentID string) ([]Team, error)
	ListPools(ctx context.Context, tournamentID string) ([]Pool, error)
}

type DiamondReader interface {
	ListDiamonds(ctx context.Context, tournamentID string) ([]Diamond, error)
}

type AllocationReader interface {
	ListAllocations(ctx context.Context, tournamentID string) ([]Allocation, error)
}

// GameRepository reads existing games and writes committed ones. SaveGames
// upserts by game ID.
type GameRepository interface {
	ListGames(ctx context.Context, tournamentID string) ([]Game, error)
	SaveGames(ctx context.Context, tournamentID string, games []Game) error
}

// StandingsProvider returns a division's standings ordered by rank.
type StandingsProvider interface {
	Standings(ctx context.Context, tournamentID, divisionID string) ([]Standing, error)
}

// TournamentReader reports ok=false when the tournament does not exist.
type TournamentReader interface {
	GetTournament(ctx context.Context, tournamentID string) (Tournament, bool, error)
}
