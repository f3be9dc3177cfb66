package config

import (
	"strings"
	"testing"
	"time"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testConfigYAML = `
tournament:
  id: summer-2025
  name: Summer Classic
  start_date: "2025-07-11"
  end_date: "2025-07-13"

divisions:
  - id: u12
    name: 12U
    pools:
      - id: A
        teams:
          - {id: hawks, name: Hawks}
          - {id: owls, name: Owls}
          - {id: jays, name: Jays, willing_to_play_extra: true}
      - id: B
        name: Pool B
        teams:
          - {id: bears}
          - {id: wolves}
          - {id: foxes}

diamonds:
  - id: d1
    name: Riverside 1
    available_start: "08:00"
    available_end: "20:00"
  - id: d2
    available_start: "09:00"
    available_end: "18:00"
    status: delayed

allocations:
  - diamond: d1
    date: "2025-07-12"
    start: "12:00"
    end: "14:00"
    reason: Maintenance

rules:
  min_rest_minutes: 0
  daily_caps: [2, 3]
  late_game_cutoff: "19:00"

strategy: round_robin

playoffs:
  format: top_4
  division: u12

standings:
  u12:
    - {team: hawks, rank: 1}
    - {team: bears, rank: 2, pool: B}
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("tournament", func(t *testing.T) {
		tr := cfg.BuildTournament()
		if tr.ID != "summer-2025" || tr.Strategy != "round_robin" || tr.PlayoffFormat != "top_4" {
			t.Errorf("tournament = %+v", tr)
		}
		if !tr.StartDate.Equal(mustDate("2025-07-11")) || !tr.EndDate.Equal(mustDate("2025-07-13")) {
			t.Errorf("dates = %v..%v", tr.StartDate, tr.EndDate)
		}
		if len(tr.Dates()) != 3 {
			t.Errorf("dates = %d, want 3", len(tr.Dates()))
		}
	})

	t.Run("rules with defaults", func(t *testing.T) {
		r := cfg.TournamentRules()
		if r.GameMinutes != 90 || r.SlotMinutes != 30 || r.MinGames != 3 || r.CrossDayRestHours != 10 {
			t.Errorf("defaults not applied: %+v", r)
		}
		if r.MinRestMinutes != 0 {
			t.Errorf("explicit zero rest = %d, want 0", r.MinRestMinutes)
		}
		if r.DailyCap(0) != 2 || r.DailyCap(5) != 3 {
			t.Errorf("daily caps = %v", r.DailyCaps)
		}
		if r.LateGameCutoff != clock.MustParse("19:00") {
			t.Errorf("late cutoff = %s", r.LateGameCutoff)
		}
	})

	t.Run("teams and pools", func(t *testing.T) {
		teams := cfg.BuildTeams()
		if len(teams) != 6 {
			t.Fatalf("teams = %d, want 6", len(teams))
		}
		if teams[2].ID != "jays" || !teams[2].WillingToPlayExtra || teams[2].PoolID != "A" || teams[2].DivisionID != "u12" {
			t.Errorf("jays = %+v", teams[2])
		}
		if teams[3].Name != "bears" {
			t.Errorf("unnamed team should use its id, got %q", teams[3].Name)
		}

		pools := cfg.BuildPools()
		if len(pools) != 2 || pools[1].Name != "Pool B" || strings.Join(pools[0].TeamIDs, ",") != "hawks,owls,jays" {
			t.Errorf("pools = %+v", pools)
		}
	})

	t.Run("diamonds", func(t *testing.T) {
		ds := cfg.BuildDiamonds()
		if ds[0].Status != tournament.DiamondOpen || ds[0].AvailableStart != clock.MustParse("08:00") {
			t.Errorf("d1 = %+v", ds[0])
		}
		if ds[1].Status != tournament.DiamondDelayed || ds[1].Name != "d2" {
			t.Errorf("d2 = %+v", ds[1])
		}
	})

	t.Run("allocations", func(t *testing.T) {
		as := cfg.BuildAllocations()
		if len(as) != 1 {
			t.Fatalf("allocations = %d, want 1", len(as))
		}
		a := as[0]
		if a.DiamondID != "d1" || !a.Date.Equal(mustDate("2025-07-12")) || a.Start != clock.MustParse("12:00") || a.End != clock.MustParse("14:00") {
			t.Errorf("allocation = %+v", a)
		}
	})

	t.Run("standings", func(t *testing.T) {
		rows := cfg.BuildStandings()["u12"]
		if len(rows) != 2 {
			t.Fatalf("standings = %d, want 2", len(rows))
		}
		if rows[0].PoolID != "A" {
			t.Errorf("pool should be inferred from the team, got %q", rows[0].PoolID)
		}
	})
}

func TestDatabaseURL(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testConfigYAML + `
storage:
  database_url: postgres://file/tourney
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Setenv(DatabaseURLEnv, "")
	if got := cfg.DatabaseURL(); got != "postgres://file/tourney" {
		t.Errorf("DatabaseURL() = %q", got)
	}

	t.Setenv(DatabaseURLEnv, "postgres://env/tourney")
	if got := cfg.DatabaseURL(); got != "postgres://env/tourney" {
		t.Errorf("DatabaseURL() = %q, want env override", got)
	}
}

func TestDefaultStrategy(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(strings.Replace(testConfigYAML, "strategy: round_robin", "", 1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.BuildTournament().Strategy; got != "min_guarantee" {
		t.Errorf("strategy = %q, want min_guarantee", got)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		old     string
		new     string
		wantErr string
	}{
		{"end before start", `end_date: "2025-07-13"`, `end_date: "2025-07-10"`, "must not be before"},
		{"bad date", `end_date: "2025-07-13"`, `end_date: "July 13"`, "invalid date"},
		{"bad time", `available_end: "20:00"`, `available_end: "8pm"`, "invalid time"},
		{"window reversed", `available_end: "20:00"`, `available_end: "07:00"`, "must be after available_start"},
		{"duplicate team", `{id: foxes}`, `{id: owls}`, "appears in both"},
		{"unknown strategy", "strategy: round_robin", "strategy: swiss", "invalid config"},
		{"unknown status", "status: delayed", "status: flooded", "invalid config"},
		{"unknown playoff format", "format: top_4", "format: top_5", "unknown playoff format"},
		{"too few pools for format", "format: top_4", "format: cross_pool_8", "needs 4 pools"},
		{"allocation diamond", "  - diamond: d1", "  - diamond: d9", "unknown diamond"},
		{"allocation reversed", `end: "14:00"`, `end: "11:00"`, "must be after start"},
		{"standings team", "{team: hawks, rank: 1}", "{team: eagles, rank: 1}", "unknown team"},
		{"standings pool", "{team: bears, rank: 2, pool: B}", "{team: bears, rank: 2, pool: A}", "not \"A\""},
		{"standings rank", "{team: hawks, rank: 1}", "{team: hawks, rank: 0}", "invalid config"},
		{"missing id", "  id: summer-2025\n", "", "invalid config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := strings.Replace(testConfigYAML, tt.old, tt.new, 1)
			if yaml == testConfigYAML {
				t.Fatalf("fixture did not change; %q not found", tt.old)
			}
			_, err := LoadFromBytes([]byte(yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidationRequiresDivisionsAndDiamonds(t *testing.T) {
	yaml := `
tournament:
  id: t
  start_date: "2025-07-11"
  end_date: "2025-07-11"
`
	if _, err := LoadFromBytes([]byte(yaml)); err == nil {
		t.Error("expected error for empty config")
	}
}

func TestLoadFromFile(t *testing.T) {
	if _, err := LoadFromFile("does-not-exist.yaml"); err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Errorf("err = %v", err)
	}
}
