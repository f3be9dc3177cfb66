package engine

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/tourney/internal/bracket"
	"github.com/derekprior/tourney/internal/schedule"
	"github.com/derekprior/tourney/internal/tournament"
)

// ResolveBracket fills a playoff format's seed references from the
// division's standings. Pool seeds follow the division's pool order.
func (s *Service) ResolveBracket(ctx context.Context, tournamentID, divisionID, format string) ([]bracket.Resolved, error) {
	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, snap, divisionID, format)
}

func (s *Service) resolve(ctx context.Context, snap *snapshot, divisionID, format string) ([]bracket.Resolved, error) {
	if format == "" {
		format = snap.tournament.PlayoffFormat
	}
	if s.repos.Standings == nil {
		return nil, errors.Wrap(bracket.ErrInsufficientStandings, "no standings provider")
	}
	standings, err := s.repos.Standings.Standings(ctx, snap.tournament.ID, divisionID)
	if err != nil {
		return nil, errors.Wrapf(err, "standings for division %s", divisionID)
	}

	var poolOrder []string
	for _, p := range snap.pools {
		if divisionID == "" || p.DivisionID == divisionID {
			poolOrder = append(poolOrder, p.ID)
		}
	}
	resolved, err := bracket.Resolve(standings, poolOrder, format)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve %s bracket", format)
	}
	return resolved, nil
}

// PlayoffResult holds every created playoff game and how placement went.
type PlayoffResult struct {
	Games     []tournament.Game
	Placement *schedule.Result
}

// SchedulePlayoffs resolves the bracket, numbers its games after every
// stored game, places them and saves all of them, placed or not.
func (s *Service) SchedulePlayoffs(ctx context.Context, tournamentID, divisionID, format string) (*PlayoffResult, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, g := range snap.games {
		if g.IsPlayoff && g.DivisionID == divisionID {
			return nil, errors.Wrapf(ErrAlreadyScheduled, "division %q already has playoff game %d", divisionID, g.Number)
		}
	}
	resolved, err := s.resolve(ctx, snap, divisionID, format)
	if err != nil {
		return nil, err
	}

	offset := 0
	for _, g := range snap.games {
		offset = max(offset, g.Number)
	}
	templates := bracket.Games(resolved, bracket.GameOptions{
		TournamentID: tournamentID,
		DivisionID:   divisionID,
		Offset:       offset,
		Duration:     snap.tournament.Rules.GameLength(),
		NewID:        s.newID,
	})

	// Templates go through placement as stored games so that unplaced
	// ones are still saved below with their numbers and sources.
	placement, err := schedule.AutoPlace(schedule.Request{
		TournamentID:  tournamentID,
		Games:         templates,
		Diamonds:      snap.diamonds,
		Dates:         snap.tournament.Dates(),
		Existing:      snap.games,
		Allocations:   snap.allocations,
		Rules:         snap.tournament.Rules,
		TeamDivisions: snap.divisions(),
		NewID:         s.newID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "auto-place playoffs for %s", tournamentID)
	}

	games := make([]tournament.Game, 0, len(templates))
	games = append(games, placement.Placed...)
	for _, f := range placement.Failed {
		games = append(games, f.Game)
	}
	if err := s.repos.Games.SaveGames(ctx, tournamentID, games); err != nil {
		return nil, errors.Wrap(err, "save playoff games")
	}
	s.logger.Info("scheduled playoffs",
		"tournament_id", tournamentID,
		"division_id", divisionID,
		"format", format,
		"games", len(games),
		"placed", len(placement.Placed),
	)
	return &PlayoffResult{Games: games, Placement: placement}, nil
}
