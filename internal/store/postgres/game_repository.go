// Package postgres stores committed games in PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/derekprior/tourney/internal/tournament"
)

//go:embed schema.sql
var schema string

const upsertGameQuery = `INSERT INTO games (
	id, tournament_id, number, home_team_id, away_team_id, pool_id, division_id,
	diamond_id, game_date, start_minute, duration_minutes, is_playoff, round,
	home_source, away_source
) VALUES (
	:id, :tournament_id, :number, :home_team_id, :away_team_id, :pool_id, :division_id,
	:diamond_id, :game_date, :start_minute, :duration_minutes, :is_playoff, :round,
	:home_source, :away_source
) ON CONFLICT (id) DO UPDATE SET
	number = EXCLUDED.number,
	home_team_id = EXCLUDED.home_team_id,
	away_team_id = EXCLUDED.away_team_id,
	pool_id = EXCLUDED.pool_id,
	division_id = EXCLUDED.division_id,
	diamond_id = EXCLUDED.diamond_id,
	game_date = EXCLUDED.game_date,
	start_minute = EXCLUDED.start_minute,
	duration_minutes = EXCLUDED.duration_minutes,
	is_playoff = EXCLUDED.is_playoff,
	round = EXCLUDED.round,
	home_source = EXCLUDED.home_source,
	away_source = EXCLUDED.away_source,
	updated_at = NOW()`

const listGamesQuery = `SELECT id, tournament_id, number, home_team_id, away_team_id, pool_id,
	division_id, diamond_id, game_date, start_minute, duration_minutes, is_playoff, round,
	home_source, away_source
FROM games
WHERE tournament_id = $1
ORDER BY game_date NULLS LAST, start_minute, number, id`

// Open connects with the lib/pq driver.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Migrate creates the games table when missing.
func (r *GameRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply games schema: %w", err)
	}
	return nil
}

func (r *GameRepository) ListGames(ctx context.Context, tournamentID string) ([]tournament.Game, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, listGamesQuery, tournamentID); err != nil {
		return nil, fmt.Errorf("select games by tournament: %w", err)
	}

	out := make([]tournament.Game, 0, len(rows))
	for _, row := range rows {
		g, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// SaveGames upserts every game in one transaction.
func (r *GameRepository) SaveGames(ctx context.Context, tournamentID string, games []tournament.Game) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save games tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, g := range games {
		if _, err := tx.NamedExecContext(ctx, upsertGameQuery, toGameModel(tournamentID, g)); err != nil {
			return fmt.Errorf("upsert game %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save games tx: %w", err)
	}
	return nil
}
