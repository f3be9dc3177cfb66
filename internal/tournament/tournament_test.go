package tournament

import (
	"testing"
	"time"
)

func TestSourceRoundTrip(t *testing.T) {
	sources := []Source{
		SeedSource{Rank: 1},
		SeedSource{Rank: 2, Pool: 3},
		WinnerSource{GameNumber: 4, Round: 1},
	}
	for _, s := range sources {
		t.Run(s.String(), func(t *testing.T) {
			got, err := DecodeSource(EncodeSource(s))
			if err != nil {
				t.Fatalf("DecodeSource error: %v", err)
			}
			if got != s {
				t.Errorf("round trip = %#v, want %#v", got, s)
			}
		})
	}

	t.Run("empty is nil", func(t *testing.T) {
		got, err := DecodeSource("")
		if err != nil || got != nil {
			t.Errorf("DecodeSource(\"\") = %v, %v", got, err)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		for _, in := range []string{"seed", "winner:1", "loser:1:2", "seed:x"} {
			if _, err := DecodeSource(in); err == nil {
				t.Errorf("DecodeSource(%q) should fail", in)
			}
		}
	})
}

func TestSeedSourceString(t *testing.T) {
	if s := (SeedSource{Rank: 2, Pool: 3}).String(); s != "C2" {
		t.Errorf("String() = %q, want C2", s)
	}
	if s := (SeedSource{Rank: 4}).String(); s != "Seed 4" {
		t.Errorf("String() = %q, want Seed 4", s)
	}
}

func TestDailyCap(t *testing.T) {
	r := Rules{DailyCaps: []int{2, 3}}
	if r.DailyCap(0) != 2 {
		t.Errorf("day 0 cap = %d, want 2", r.DailyCap(0))
	}
	if r.DailyCap(1) != 3 {
		t.Errorf("day 1 cap = %d, want 3", r.DailyCap(1))
	}
	if r.DailyCap(5) != 3 {
		t.Errorf("day 5 cap = %d, want last entry 3", r.DailyCap(5))
	}
	if (Rules{}).DailyCap(0) != 0 {
		t.Error("empty caps should mean uncapped")
	}
}

func TestDateRange(t *testing.T) {
	start := time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)
	end := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	dates := DateRange(start, end)
	if len(dates) != 3 {
		t.Fatalf("len = %d, want 3", len(dates))
	}
	if !dates[0].Equal(Day(start)) {
		t.Errorf("first date = %v, want truncated start", dates[0])
	}
}

func TestSortViolations(t *testing.T) {
	vs := []Violation{
		{GameID: "g2", Severity: SeverityWarning, Message: "w"},
		{GameID: "g2", Severity: SeverityError, Message: "b"},
		{GameID: "g1", Severity: SeverityError, Message: "a"},
	}
	SortViolations(vs)
	if vs[0].GameID != "g1" || vs[1].GameID != "g2" || vs[2].Severity != SeverityWarning {
		t.Errorf("unexpected order: %+v", vs)
	}
	if !HasErrors(vs) || len(Errors(vs)) != 2 {
		t.Errorf("error helpers disagree: %+v", vs)
	}
}

func TestGameHelpers(t *testing.T) {
	g := Game{HomeTeamID: "a", Start: 600}
	if g.Duration() != DefaultGameMinutes {
		t.Errorf("Duration() = %d, want default", g.Duration())
	}
	if g.Involves("") {
		t.Error("empty team id must never match")
	}
	if len(g.Teams()) != 1 {
		t.Errorf("Teams() = %v, want only home", g.Teams())
	}
	if g.Placed() {
		t.Error("game without diamond should not be placed")
	}
}
