package memory

import (
	"context"
	"testing"

	"github.com/derekprior/tourney/internal/tournament"
)

func TestSaveGamesUpserts(t *testing.T) {
	s := New()
	s.Load(Seed{
		Tournament: tournament.Tournament{ID: "t1"},
		Games:      []tournament.Game{{ID: "g1", HomeTeamID: "a"}},
	})
	ctx := context.Background()

	err := s.SaveGames(ctx, "t1", []tournament.Game{
		{ID: "g1", HomeTeamID: "b"},
		{ID: "g2", HomeTeamID: "c"},
	})
	if err != nil {
		t.Fatalf("SaveGames() error: %v", err)
	}

	games, err := s.ListGames(ctx, "t1")
	if err != nil {
		t.Fatalf("ListGames() error: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len = %d, want 2", len(games))
	}
	if games[0].HomeTeamID != "b" || games[1].ID != "g2" {
		t.Errorf("games = %+v", games)
	}
	if games[1].TournamentID != "t1" {
		t.Errorf("tournament id not stamped: %+v", games[1])
	}
}

func TestListReturnsCopies(t *testing.T) {
	s := New()
	s.Load(Seed{
		Tournament: tournament.Tournament{ID: "t1"},
		Teams:      []tournament.Team{{ID: "a"}},
	})

	teams, _ := s.ListTeams(context.Background(), "t1")
	teams[0].ID = "mutated"

	again, _ := s.ListTeams(context.Background(), "t1")
	if again[0].ID != "a" {
		t.Errorf("store was mutated through a returned slice")
	}
}

func TestStandingsSortedByRank(t *testing.T) {
	s := New()
	s.SetStandings("t1", "u12", []tournament.Standing{
		{TeamID: "c", Rank: 3}, {TeamID: "a", Rank: 1}, {TeamID: "b", Rank: 2},
	})
	rows, err := s.Standings(context.Background(), "t1", "u12")
	if err != nil {
		t.Fatalf("Standings() error: %v", err)
	}
	if rows[0].TeamID != "a" || rows[2].TeamID != "c" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestGetTournament(t *testing.T) {
	s := New()
	s.Load(Seed{Tournament: tournament.Tournament{ID: "t1", Name: "Summer Classic"}})

	got, ok, err := s.GetTournament(context.Background(), "t1")
	if err != nil || !ok || got.Name != "Summer Classic" {
		t.Errorf("GetTournament(t1) = %+v, %v, %v", got, ok, err)
	}
	if _, ok, _ := s.GetTournament(context.Background(), "nope"); ok {
		t.Error("missing tournament reported as found")
	}
}

func TestAddAllocation(t *testing.T) {
	s := New()
	s.AddAllocation("t1", tournament.Allocation{ID: "a1"})
	got, _ := s.ListAllocations(context.Background(), "t1")
	if len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("allocations = %+v", got)
	}
}
