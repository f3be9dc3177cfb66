package postgres

import (
	"database/sql"
	"fmt"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

type gameTableModel struct {
	ID              string       `db:"id"`
	TournamentID    string       `db:"tournament_id"`
	Number          int          `db:"number"`
	HomeTeamID      string       `db:"home_team_id"`
	AwayTeamID      string       `db:"away_team_id"`
	PoolID          string       `db:"pool_id"`
	DivisionID      string       `db:"division_id"`
	DiamondID       string       `db:"diamond_id"`
	GameDate        sql.NullTime `db:"game_date"`
	StartMinute     int          `db:"start_minute"`
	DurationMinutes int          `db:"duration_minutes"`
	IsPlayoff       bool         `db:"is_playoff"`
	Round           int          `db:"round"`
	HomeSource      string       `db:"home_source"`
	AwaySource      string       `db:"away_source"`
}

func toGameModel(tournamentID string, g tournament.Game) gameTableModel {
	m := gameTableModel{
		ID:              g.ID,
		TournamentID:    tournamentID,
		Number:          g.Number,
		HomeTeamID:      g.HomeTeamID,
		AwayTeamID:      g.AwayTeamID,
		PoolID:          g.PoolID,
		DivisionID:      g.DivisionID,
		DiamondID:       g.DiamondID,
		StartMinute:     int(g.Start),
		DurationMinutes: g.Duration(),
		IsPlayoff:       g.IsPlayoff,
		Round:           g.Round,
		HomeSource:      tournament.EncodeSource(g.HomeSource),
		AwaySource:      tournament.EncodeSource(g.AwaySource),
	}
	if !g.Date.IsZero() {
		m.GameDate = sql.NullTime{Time: tournament.Day(g.Date), Valid: true}
	}
	return m
}

func (m gameTableModel) toDomain() (tournament.Game, error) {
	home, err := tournament.DecodeSource(m.HomeSource)
	if err != nil {
		return tournament.Game{}, fmt.Errorf("game %s home source: %w", m.ID, err)
	}
	away, err := tournament.DecodeSource(m.AwaySource)
	if err != nil {
		return tournament.Game{}, fmt.Errorf("game %s away source: %w", m.ID, err)
	}

	g := tournament.Game{
		ID:              m.ID,
		TournamentID:    m.TournamentID,
		Number:          m.Number,
		HomeTeamID:      m.HomeTeamID,
		AwayTeamID:      m.AwayTeamID,
		PoolID:          m.PoolID,
		DivisionID:      m.DivisionID,
		DiamondID:       m.DiamondID,
		Start:           clock.Minutes(m.StartMinute),
		DurationMinutes: m.DurationMinutes,
		IsPlayoff:       m.IsPlayoff,
		Round:           m.Round,
		HomeSource:      home,
		AwaySource:      away,
	}
	if m.GameDate.Valid {
		g.Date = tournament.Day(m.GameDate.Time)
	}
	return g, nil
}
