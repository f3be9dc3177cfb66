package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	playground "github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/tourney/internal/bracket"
	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

// DatabaseURLEnv overrides storage.database_url when set.
const DatabaseURLEnv = "TOURNEY_DATABASE_URL"

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := tournament.ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

func (d Date) IsZero() bool { return d.Time.IsZero() }

// Time is an "HH:MM" wall-clock time.
type Time struct {
	Minutes clock.Minutes
	Set     bool
}

func (t *Time) UnmarshalYAML(value *yaml.Node) error {
	m, err := clock.Parse(value.Value)
	if err != nil {
		return err
	}
	t.Minutes, t.Set = m, true
	return nil
}

type TournamentSection struct {
	ID           string `yaml:"id" validate:"required"`
	Name         string `yaml:"name"`
	StartDate    Date   `yaml:"start_date"`
	EndDate      Date   `yaml:"end_date"`
	PoolPlayDays int    `yaml:"pool_play_days" validate:"gte=0"`
}

type Team struct {
	ID                 string `yaml:"id" validate:"required"`
	Name               string `yaml:"name"`
	WillingToPlayExtra bool   `yaml:"willing_to_play_extra"`
}

type Pool struct {
	ID    string `yaml:"id" validate:"required"`
	Name  string `yaml:"name"`
	Teams []Team `yaml:"teams" validate:"dive"`
}

type Division struct {
	ID    string `yaml:"id" validate:"required"`
	Name  string `yaml:"name"`
	Pools []Pool `yaml:"pools" validate:"required,min=1,dive"`
}

type Diamond struct {
	ID             string `yaml:"id" validate:"required"`
	Name           string `yaml:"name"`
	AvailableStart Time   `yaml:"available_start"`
	AvailableEnd   Time   `yaml:"available_end"`
	Status         string `yaml:"status" validate:"omitempty,oneof=open closed delayed unknown"`
}

type Allocation struct {
	Diamond  string `yaml:"diamond" validate:"required"`
	Date     Date   `yaml:"date"`
	Start    Time   `yaml:"start"`
	End      Time   `yaml:"end"`
	Division string `yaml:"division"`
	Reason   string `yaml:"reason"`
}

// Rules left at zero take the defaults. Rest and cross-day rest are
// pointers so that an explicit 0 disables them.
type Rules struct {
	GameMinutes       int   `yaml:"game_minutes" validate:"gte=0"`
	MinRestMinutes    *int  `yaml:"min_rest_minutes" validate:"omitempty,gte=0"`
	DailyCaps         []int `yaml:"daily_caps" validate:"dive,gte=0"`
	CrossDayRestHours *int  `yaml:"cross_day_rest_hours" validate:"omitempty,gte=0,lte=24"`
	LateGameCutoff    Time  `yaml:"late_game_cutoff"`
	SlotMinutes       int   `yaml:"slot_minutes" validate:"gte=0"`
	MinGames          int   `yaml:"min_games" validate:"gte=0"`
}

type Playoffs struct {
	Format   string `yaml:"format"`
	Division string `yaml:"division"`
}

type Standing struct {
	Team string `yaml:"team" validate:"required"`
	Rank int    `yaml:"rank" validate:"gte=1"`
	Pool string `yaml:"pool"`
}

type Storage struct {
	DatabaseURL string `yaml:"database_url"`
}

type Config struct {
	Tournament  TournamentSection     `yaml:"tournament"`
	Divisions   []Division            `yaml:"divisions" validate:"required,min=1,dive"`
	Diamonds    []Diamond             `yaml:"diamonds" validate:"required,min=1,dive"`
	Allocations []Allocation          `yaml:"allocations" validate:"dive"`
	Rules       Rules                 `yaml:"rules"`
	Strategy    string                `yaml:"strategy" validate:"omitempty,oneof=min_guarantee round_robin"`
	Playoffs    Playoffs              `yaml:"playoffs"`
	Standings   map[string][]Standing `yaml:"standings" validate:"dive,dive"`
	Storage     Storage               `yaml:"storage"`
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if err := playground.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	t := c.Tournament
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("tournament start_date and end_date are required")
	}
	if t.EndDate.Time.Before(t.StartDate.Time) {
		return fmt.Errorf("end date %s must not be before start date %s",
			t.EndDate.Time.Format(tournament.DateLayout),
			t.StartDate.Time.Format(tournament.DateLayout))
	}

	divisions := make(map[string]bool)
	poolCounts := make(map[string]int)
	pools := make(map[string]bool)
	teams := make(map[string]string)
	for _, div := range c.Divisions {
		if divisions[div.ID] {
			return fmt.Errorf("division %q is defined twice", div.ID)
		}
		divisions[div.ID] = true
		poolCounts[div.ID] = len(div.Pools)
		for _, p := range div.Pools {
			if pools[p.ID] {
				return fmt.Errorf("pool %q is defined twice", p.ID)
			}
			pools[p.ID] = true
			for _, team := range p.Teams {
				if prev, ok := teams[team.ID]; ok {
					return fmt.Errorf("team %q appears in both %q and %q pools", team.ID, prev, p.ID)
				}
				teams[team.ID] = p.ID
			}
		}
	}

	diamonds := make(map[string]bool)
	for _, d := range c.Diamonds {
		if diamonds[d.ID] {
			return fmt.Errorf("diamond %q is defined twice", d.ID)
		}
		diamonds[d.ID] = true
		if !d.AvailableStart.Set || !d.AvailableEnd.Set {
			return fmt.Errorf("diamond %q: available_start and available_end are required", d.ID)
		}
		if d.AvailableEnd.Minutes <= d.AvailableStart.Minutes {
			return fmt.Errorf("diamond %q: available_end %s must be after available_start %s",
				d.ID, d.AvailableEnd.Minutes, d.AvailableStart.Minutes)
		}
	}

	for i, a := range c.Allocations {
		if !diamonds[a.Diamond] {
			return fmt.Errorf("allocation %d: unknown diamond %q", i+1, a.Diamond)
		}
		if a.Date.IsZero() || !a.Start.Set || !a.End.Set {
			return fmt.Errorf("allocation %d: date, start and end are required", i+1)
		}
		if a.End.Minutes <= a.Start.Minutes {
			return fmt.Errorf("allocation %d: end %s must be after start %s", i+1, a.End.Minutes, a.Start.Minutes)
		}
		if a.Division != "" && !divisions[a.Division] {
			return fmt.Errorf("allocation %d: unknown division %q", i+1, a.Division)
		}
	}

	if f := c.Playoffs.Format; f != "" && !slices.Contains(bracket.Formats(), f) {
		return fmt.Errorf("unknown playoff format %q (want one of %s)", f, strings.Join(bracket.Formats(), ", "))
	}
	if d := c.Playoffs.Division; d != "" {
		if !divisions[d] {
			return fmt.Errorf("playoffs: unknown division %q", d)
		}
		if n := bracket.PoolsRequired(c.Playoffs.Format); n > poolCounts[d] {
			return fmt.Errorf("playoffs: %s needs %d pools, division %q has %d", c.Playoffs.Format, n, d, poolCounts[d])
		}
	}

	for div, rows := range c.Standings {
		if !divisions[div] {
			return fmt.Errorf("standings: unknown division %q", div)
		}
		for _, r := range rows {
			pool, ok := teams[r.Team]
			if !ok {
				return fmt.Errorf("standings for %q: unknown team %q", div, r.Team)
			}
			if r.Pool != "" && r.Pool != pool {
				return fmt.Errorf("standings for %q: team %q is in pool %q, not %q", div, r.Team, pool, r.Pool)
			}
		}
	}
	return nil
}

// DatabaseURL prefers the environment over the file.
func (c *Config) DatabaseURL() string {
	if v := os.Getenv(DatabaseURLEnv); v != "" {
		return v
	}
	return c.Storage.DatabaseURL
}

// TournamentRules applies defaults to the configured rules.
func (c *Config) TournamentRules() tournament.Rules {
	r := tournament.DefaultRules()
	cr := c.Rules
	if cr.GameMinutes > 0 {
		r.GameMinutes = cr.GameMinutes
	}
	if cr.MinRestMinutes != nil {
		r.MinRestMinutes = *cr.MinRestMinutes
	}
	if len(cr.DailyCaps) > 0 {
		r.DailyCaps = slices.Clone(cr.DailyCaps)
	}
	if cr.CrossDayRestHours != nil {
		r.CrossDayRestHours = *cr.CrossDayRestHours
	}
	if cr.LateGameCutoff.Set {
		r.LateGameCutoff = cr.LateGameCutoff.Minutes
	}
	if cr.SlotMinutes > 0 {
		r.SlotMinutes = cr.SlotMinutes
	}
	if cr.MinGames > 0 {
		r.MinGames = cr.MinGames
	}
	r.PoolPlayDays = c.Tournament.PoolPlayDays
	return r
}

func (c *Config) BuildTournament() tournament.Tournament {
	strategy := c.Strategy
	if strategy == "" {
		strategy = "min_guarantee"
	}
	return tournament.Tournament{
		ID:            c.Tournament.ID,
		Name:          c.Tournament.Name,
		StartDate:     c.Tournament.StartDate.Time,
		EndDate:       c.Tournament.EndDate.Time,
		Rules:         c.TournamentRules(),
		Strategy:      strategy,
		PlayoffFormat: c.Playoffs.Format,
	}
}

// BuildTeams returns every team with its division and pool filled in.
func (c *Config) BuildTeams() []tournament.Team {
	var out []tournament.Team
	for _, div := range c.Divisions {
		for _, p := range div.Pools {
			for _, t := range p.Teams {
				out = append(out, tournament.Team{
					ID:                 t.ID,
					Name:               nameOr(t.Name, t.ID),
					DivisionID:         div.ID,
					PoolID:             p.ID,
					WillingToPlayExtra: t.WillingToPlayExtra,
				})
			}
		}
	}
	return out
}

func (c *Config) BuildPools() []tournament.Pool {
	var out []tournament.Pool
	for _, div := range c.Divisions {
		for _, p := range div.Pools {
			pool := tournament.Pool{ID: p.ID, Name: nameOr(p.Name, p.ID), DivisionID: div.ID}
			for _, t := range p.Teams {
				pool.TeamIDs = append(pool.TeamIDs, t.ID)
			}
			out = append(out, pool)
		}
	}
	return out
}

func (c *Config) BuildDiamonds() []tournament.Diamond {
	out := make([]tournament.Diamond, 0, len(c.Diamonds))
	for _, d := range c.Diamonds {
		status := tournament.DiamondStatus(d.Status)
		if status == "" {
			status = tournament.DiamondOpen
		}
		out = append(out, tournament.Diamond{
			ID:             d.ID,
			Name:           nameOr(d.Name, d.ID),
			AvailableStart: d.AvailableStart.Minutes,
			AvailableEnd:   d.AvailableEnd.Minutes,
			Status:         status,
		})
	}
	return out
}

func (c *Config) BuildAllocations() []tournament.Allocation {
	out := make([]tournament.Allocation, 0, len(c.Allocations))
	for i, a := range c.Allocations {
		out = append(out, tournament.Allocation{
			ID:         fmt.Sprintf("allocation-%d", i+1),
			DiamondID:  a.Diamond,
			Date:       a.Date.Time,
			Start:      a.Start.Minutes,
			End:        a.End.Minutes,
			DivisionID: a.Division,
			Reason:     a.Reason,
		})
	}
	return out
}

// BuildStandings returns the configured rows keyed by division.
func (c *Config) BuildStandings() map[string][]tournament.Standing {
	teamPool := make(map[string]string)
	for _, t := range c.BuildTeams() {
		teamPool[t.ID] = t.PoolID
	}
	out := make(map[string][]tournament.Standing, len(c.Standings))
	for div, rows := range c.Standings {
		for _, r := range rows {
			out[div] = append(out[div], tournament.Standing{
				TeamID: r.Team,
				Rank:   r.Rank,
				PoolID: nameOr(r.Pool, teamPool[r.Team]),
			})
		}
	}
	return out
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
