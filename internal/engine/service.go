// Package engine runs scheduling operations against stored tournament state.
// Each operation loads a fresh snapshot; operations that write hold a
// per-tournament lock from snapshot to save.
package engine

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	playground "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/draft"
	"github.com/derekprior/tourney/internal/logging"
	"github.com/derekprior/tourney/internal/schedule"
	"github.com/derekprior/tourney/internal/strategy"
	"github.com/derekprior/tourney/internal/tournament"
	"github.com/derekprior/tourney/internal/validator"
)

// Repositories are the external collaborators the engine reads and writes.
type Repositories struct {
	Tournaments tournament.TournamentReader
	Teams       tournament.TeamReader
	Diamonds    tournament.DiamondReader
	Allocations tournament.AllocationReader
	Games       tournament.GameRepository
	Standings   tournament.StandingsProvider
}

type Service struct {
	repos    Repositories
	logger   *logging.Logger
	validate *playground.Validate
	locks    *tournamentLocks
	newID    func() string
}

type Option func(*Service)

// WithIDGenerator replaces uuid.NewString for new game IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(repos Repositories, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Service{
		repos:    repos,
		logger:   logger,
		validate: playground.New(),
		locks:    newTournamentLocks(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type snapshot struct {
	tournament  tournament.Tournament
	teams       []tournament.Team
	pools       []tournament.Pool
	diamonds    []tournament.Diamond
	allocations []tournament.Allocation
	games       []tournament.Game
}

func (s *snapshot) divisions() map[string]string {
	m := make(map[string]string, len(s.teams))
	for _, t := range s.teams {
		m[t.ID] = t.DivisionID
	}
	return m
}

func (s *snapshot) diamond(id string) (tournament.Diamond, bool) {
	for _, d := range s.diamonds {
		if d.ID == id {
			return d, true
		}
	}
	return tournament.Diamond{}, false
}

func (s *snapshot) unplaced() []tournament.Game {
	var out []tournament.Game
	for _, g := range s.games {
		if !g.Placed() {
			out = append(out, g)
		}
	}
	return out
}

// load reads every collaborator in parallel.
func (s *Service) load(ctx context.Context, tournamentID string) (*snapshot, error) {
	t, ok, err := s.repos.Tournaments.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, errors.Wrapf(err, "get tournament %s", tournamentID)
	}
	if !ok {
		return nil, errors.Wrapf(ErrTournamentNotFound, "%s", tournamentID)
	}

	snap := &snapshot{tournament: t}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		teams, err := s.repos.Teams.ListTeams(gctx, tournamentID)
		if err != nil {
			return errors.Wrap(err, "list teams")
		}
		snap.teams = teams
		return nil
	})
	g.Go(func() error {
		pools, err := s.repos.Teams.ListPools(gctx, tournamentID)
		if err != nil {
			return errors.Wrap(err, "list pools")
		}
		snap.pools = pools
		return nil
	})
	g.Go(func() error {
		diamonds, err := s.repos.Diamonds.ListDiamonds(gctx, tournamentID)
		if err != nil {
			return errors.Wrap(err, "list diamonds")
		}
		snap.diamonds = diamonds
		return nil
	})
	g.Go(func() error {
		allocations, err := s.repos.Allocations.ListAllocations(gctx, tournamentID)
		if err != nil {
			return errors.Wrap(err, "list allocations")
		}
		snap.allocations = allocations
		return nil
	})
	g.Go(func() error {
		games, err := s.repos.Games.ListGames(gctx, tournamentID)
		if err != nil {
			return errors.Wrap(err, "list games")
		}
		snap.games = games
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// GenerateMatchups runs the tournament's strategy over its pools.
func (s *Service) GenerateMatchups(ctx context.Context, tournamentID string) (strategy.Result, error) {
	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return strategy.Result{}, err
	}
	if len(snap.pools) == 0 {
		return strategy.Result{}, draft.ErrNoPools
	}
	strat, err := strategy.Get(snap.tournament.Strategy)
	if err != nil {
		return strategy.Result{}, errors.Wrapf(draft.ErrUnknownStrategy, "%q", snap.tournament.Strategy)
	}

	minimum := snap.tournament.Rules.MinGames
	if minimum <= 0 {
		minimum = strategy.DefaultMinimum
	}
	res := strat.GenerateMatchups(strategy.Entries(snap.pools, snap.teams), minimum)
	s.logger.Info("generated matchups",
		"tournament_id", tournamentID,
		"matchups", len(res.Matchups),
		"cross_pool", res.CrossPoolGames,
		"unresolved", len(res.Unresolved()),
	)
	return res, nil
}

// SlotRequest asks whether one game fits a slot. Start is "HH:MM".
type SlotRequest struct {
	TournamentID string    `validate:"required"`
	GameID       string    // set when moving an existing game
	HomeTeamID   string    `validate:"required_with=AwayTeamID"`
	AwayTeamID   string    `validate:"omitempty,nefield=HomeTeamID"`
	DiamondID    string    `validate:"required"`
	Date         time.Time `validate:"required"`
	Start        string    `validate:"required"`
	Duration     int       `validate:"gte=0"`
}

// ValidateSlot checks a single placement against current state without
// writing anything.
func (s *Service) ValidateSlot(ctx context.Context, req SlotRequest) (validator.Result, error) {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return validator.Result{}, errors.Wrap(ErrInvalidRequest, err.Error())
	}
	start, err := clock.Parse(req.Start)
	if err != nil {
		return validator.Result{}, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	snap, err := s.load(ctx, req.TournamentID)
	if err != nil {
		return validator.Result{}, err
	}
	d, ok := snap.diamond(req.DiamondID)
	if !ok {
		return validator.Result{}, errors.Wrapf(ErrInvalidRequest, "unknown diamond %s", req.DiamondID)
	}

	duration := req.Duration
	if duration == 0 {
		duration = snap.tournament.Rules.GameLength()
	}
	return validator.ValidateSlot(validator.Candidate{
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		Diamond:    d,
		Date:       req.Date,
		Start:      start,
		Duration:   duration,
	}, snap.games, snap.allocations, validator.Options{
		SkipGameID:     req.GameID,
		TeamDivisionID: snap.divisions()[req.HomeTeamID],
		MinRestMinutes: snap.tournament.Rules.MinRestMinutes,
	}), nil
}

// AutoPlaceRequest names what to place. With no GameIDs and no Matchups,
// every stored unplaced game is placed.
type AutoPlaceRequest struct {
	GameIDs  []string
	Matchups []strategy.Matchup
}

// AutoPlace places games and matchups and saves the placed games.
func (s *Service) AutoPlace(ctx context.Context, tournamentID string, req AutoPlaceRequest) (*schedule.Result, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var games []tournament.Game
	if len(req.GameIDs) > 0 {
		want := make(map[string]bool, len(req.GameIDs))
		for _, id := range req.GameIDs {
			want[id] = true
		}
		for _, g := range snap.games {
			if want[g.ID] {
				games = append(games, g)
				delete(want, g.ID)
			}
		}
		for id := range want {
			return nil, errors.Wrapf(ErrInvalidRequest, "unknown game %s", id)
		}
	} else if len(req.Matchups) == 0 {
		games = snap.unplaced()
	}

	res, err := s.place(ctx, snap, req.Matchups, games)
	if err != nil {
		return nil, err
	}
	s.logger.Info("auto-placed games",
		"tournament_id", tournamentID,
		"placed", len(res.Placed),
		"failed", len(res.Failed),
	)
	return res, nil
}

func (s *Service) place(ctx context.Context, snap *snapshot, matchups []strategy.Matchup, games []tournament.Game) (*schedule.Result, error) {
	tournamentID := snap.tournament.ID
	res, err := schedule.AutoPlace(schedule.Request{
		TournamentID:  tournamentID,
		Matchups:      matchups,
		Games:         games,
		Diamonds:      snap.diamonds,
		Dates:         snap.tournament.Dates(),
		Existing:      snap.games,
		Allocations:   snap.allocations,
		Rules:         snap.tournament.Rules,
		TeamDivisions: snap.divisions(),
		NewID:         s.newID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "auto-place for %s", tournamentID)
	}
	for _, f := range res.Failed {
		s.logger.Debug("unplaceable game",
			"tournament_id", tournamentID,
			"game_id", f.Game.ID,
			"reason", f.Reason.String(),
			"detail", f.Detail,
		)
	}
	if len(res.Placed) > 0 {
		if err := s.repos.Games.SaveGames(ctx, tournamentID, res.Placed); err != nil {
			return nil, errors.Wrap(err, "save placed games")
		}
	}
	return res, nil
}

// GenerateDraft builds a full schedule for review. Nothing is written.
func (s *Service) GenerateDraft(ctx context.Context, tournamentID string) (*draft.Draft, error) {
	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	// A second draft would duplicate every pool-play matchup.
	pool := 0
	for _, g := range snap.games {
		if !g.IsPlayoff {
			pool++
		}
	}
	if pool > 0 {
		return nil, errors.Wrapf(ErrAlreadyScheduled, "%s has %d pool play games", tournamentID, pool)
	}

	var playoffs []tournament.Game
	for _, g := range snap.unplaced() {
		if g.IsPlayoff {
			playoffs = append(playoffs, g)
		}
	}
	d, err := draft.Generate(draft.Input{
		Tournament:  snap.tournament,
		Teams:       snap.teams,
		Pools:       snap.pools,
		Diamonds:    snap.diamonds,
		Allocations: snap.allocations,
		Existing:    snap.games,
		Playoffs:    playoffs,
		NewID:       s.newID,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "draft for %s", tournamentID)
	}
	s.logger.Info("generated draft",
		"tournament_id", tournamentID,
		"games", len(d.Games),
		"placed", d.Placed(),
		"violations", len(d.Violations),
		"valid", d.Valid(),
	)
	return d, nil
}

// CommitDraft re-validates draft games against freshly loaded state and
// saves them only when no error-severity violation remains. A rejection is
// a *CommitRejection.
func (s *Service) CommitDraft(ctx context.Context, tournamentID string, games []tournament.Game) ([]tournament.Game, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	committed := make([]tournament.Game, len(games))
	for i, g := range games {
		g.TournamentID = tournamentID
		committed[i] = g
	}

	violations := revalidate(snap, committed)
	if tournament.HasErrors(violations) {
		s.logger.Warn("commit rejected",
			"tournament_id", tournamentID,
			"games", len(games),
			"errors", len(tournament.Errors(violations)),
		)
		return nil, &CommitRejection{Violations: violations}
	}

	if err := s.repos.Games.SaveGames(ctx, tournamentID, committed); err != nil {
		return nil, errors.Wrap(err, "save committed games")
	}
	s.logger.Info("committed draft",
		"tournament_id", tournamentID,
		"games", len(committed),
		"warnings", len(violations),
	)
	return committed, nil
}

// CheckDraft reports what CommitDraft would find for games without
// writing anything.
func (s *Service) CheckDraft(ctx context.Context, tournamentID string, games []tournament.Game) ([]tournament.Violation, error) {
	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return revalidate(snap, games), nil
}

func revalidate(snap *snapshot, games []tournament.Game) []tournament.Violation {
	return draft.Revalidate(games, draft.Snapshot{
		Diamonds:    snap.diamonds,
		Allocations: snap.allocations,
		Existing:    snap.games,
		Rules:       snap.tournament.Rules,
		StartDate:   snap.tournament.StartDate,
	})
}

// ValidateSchedule checks every stored game.
func (s *Service) ValidateSchedule(ctx context.Context, tournamentID string) ([]tournament.Violation, error) {
	snap, err := s.load(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return validator.ValidateSchedule(validator.Schedule{
		Games:       snap.games,
		Diamonds:    snap.diamonds,
		Allocations: snap.allocations,
		Rules:       snap.tournament.Rules,
		StartDate:   snap.tournament.StartDate,
	}), nil
}
