package excel

import (
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testData() Workbook {
	return Workbook{
		Tournament: tournament.Tournament{
			ID:        "t1",
			StartDate: date(2025, 7, 11),
			EndDate:   date(2025, 7, 12),
			Rules:     tournament.DefaultRules(),
		},
		Teams: []tournament.Team{
			{ID: "hawks", Name: "Hawks"},
			{ID: "owls", Name: "Owls"},
			{ID: "bears", Name: "Bears"},
			{ID: "wolves", Name: "Wolves/Pack"},
		},
		Diamonds: []tournament.Diamond{
			{ID: "d1", Name: "Field A", AvailableStart: clock.MustParse("09:00"), AvailableEnd: clock.MustParse("13:30")},
			{ID: "d2", Name: "Field B", AvailableStart: clock.MustParse("09:00"), AvailableEnd: clock.MustParse("13:30")},
		},
		Allocations: []tournament.Allocation{
			{ID: "a1", DiamondID: "d2", Date: date(2025, 7, 12), Start: clock.MustParse("09:00"), End: clock.MustParse("12:00"), Reason: "Clinic"},
		},
		Games: []tournament.Game{
			{ID: "g2", Number: 2, HomeTeamID: "bears", AwayTeamID: "wolves", PoolID: "B", DivisionID: "u12",
				DiamondID: "d2", Date: date(2025, 7, 11), Start: clock.MustParse("09:00"), DurationMinutes: 90},
			{ID: "g1", Number: 1, HomeTeamID: "hawks", AwayTeamID: "owls", PoolID: "A", DivisionID: "u12",
				DiamondID: "d1", Date: date(2025, 7, 11), Start: clock.MustParse("09:00"), DurationMinutes: 90},
			{ID: "g3", Number: 3, DivisionID: "u12", IsPlayoff: true, Round: 2, DurationMinutes: 90,
				DiamondID: "d1", Date: date(2025, 7, 12), Start: clock.MustParse("10:45"),
				HomeSource: tournament.WinnerSource{GameNumber: 1, Round: 1}, AwaySource: tournament.WinnerSource{GameNumber: 2, Round: 1}},
			{ID: "g4", Number: 4, HomeTeamID: "hawks", AwayTeamID: "bears", DurationMinutes: 60},
		},
		Violations: []tournament.Violation{
			{GameID: "g4", Message: "unplaced: hawks vs bears", Severity: tournament.SeverityError},
			{TeamID: "owls", Message: "team owls has 1 games (minimum 3)", Severity: tournament.SeverityWarning},
		},
	}
}

func TestGenerateWorkbook(t *testing.T) {
	f, err := Generate(testData())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	t.Run("has sheets", func(t *testing.T) {
		for _, sheet := range []string{MasterSheet, GamesSheet, ViolationsSheet, "Hawks", "Owls", "Bears", "Wolves-Pack"} {
			idx, err := f.GetSheetIndex(sheet)
			if err != nil {
				t.Fatalf("GetSheetIndex error: %v", err)
			}
			if idx < 0 {
				t.Errorf("%s sheet not found", sheet)
			}
		}
	})

	t.Run("master sheet has headers", func(t *testing.T) {
		for cell, want := range map[string]string{"A1": "Date", "C1": "Time", "D1": "Field A", "E1": "Field B"} {
			val, _ := f.GetCellValue(MasterSheet, cell)
			if val != want {
				t.Errorf("%s = %q, want %q", cell, val, want)
			}
		}
	})

	t.Run("master sheet grid", func(t *testing.T) {
		rows, _ := f.GetRows(MasterSheet)
		// Two days of 09:00..12:00 starts every 30 minutes, plus the
		// off-grid 10:45 start.
		if len(rows) != 1+7+8 {
			t.Fatalf("rows = %d, want 16", len(rows))
		}
		first := rows[1]
		if first[0] != "07/11/2025" || first[2] != "09:00" || first[3] != "Owls @ Hawks" || first[4] != "Wolves/Pack @ Bears" {
			t.Errorf("first row = %q", first)
		}
	})

	t.Run("master sheet shows playoff sources and allocations", func(t *testing.T) {
		rows, _ := f.GetRows(MasterSheet)
		var playoff, clinic bool
		for _, row := range rows[1:] {
			if row[0] != "07/12/2025" {
				continue
			}
			if row[2] == "10:45" && len(row) > 3 && strings.Contains(row[3], "Winner of Game 1") {
				playoff = true
			}
			if row[2] == "09:00" && len(row) > 4 && row[4] == "Clinic" {
				clinic = true
			}
		}
		if !playoff {
			t.Error("playoff game not shown with its sources")
		}
		if !clinic {
			t.Error("allocation not shown")
		}
	})

	t.Run("team sheet has placed games", func(t *testing.T) {
		rows, _ := f.GetRows("Hawks")
		if len(rows) != 2 {
			t.Fatalf("Hawks rows = %d, want header + 1 placed game", len(rows))
		}
		if rows[1][4] != "Owls" || rows[1][5] != "Home" || rows[1][6] != "Game 1" {
			t.Errorf("Hawks game = %q", rows[1])
		}
	})

	t.Run("violations sheet", func(t *testing.T) {
		rows, _ := f.GetRows(ViolationsSheet)
		if len(rows) != 3 {
			t.Fatalf("violation rows = %d, want 3", len(rows))
		}
		if rows[1][0] != "error" || rows[1][1] != "Game 4" {
			t.Errorf("first violation = %q", rows[1])
		}
		if rows[2][2] != "Owls" {
			t.Errorf("second violation = %q", rows[2])
		}
	})

	t.Run("default Sheet1 removed", func(t *testing.T) {
		idx, _ := f.GetSheetIndex("Sheet1")
		if idx >= 0 {
			t.Error("Sheet1 should be removed")
		}
	})
}

func TestGamesRoundTrip(t *testing.T) {
	wb := testData()
	f, err := Generate(wb)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	path := t.TempDir() + "/draft.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}

	games, err := ReadGames(path)
	if err != nil {
		t.Fatalf("ReadGames() error: %v", err)
	}
	if len(games) != len(wb.Games) {
		t.Fatalf("games = %d, want %d", len(games), len(wb.Games))
	}

	byID := make(map[string]tournament.Game)
	for _, g := range wb.Games {
		byID[g.ID] = g
	}
	for i, got := range games {
		if got.Number != i+1 {
			t.Errorf("row %d number = %d, want sorted by number", i, got.Number)
		}
		want := byID[got.ID]
		if got.Number != want.Number || got.HomeTeamID != want.HomeTeamID || got.AwayTeamID != want.AwayTeamID ||
			got.PoolID != want.PoolID || got.DivisionID != want.DivisionID || got.DiamondID != want.DiamondID ||
			!got.Date.Equal(want.Date) || got.Start != want.Start || got.DurationMinutes != want.DurationMinutes ||
			got.IsPlayoff != want.IsPlayoff || got.Round != want.Round {
			t.Errorf("game %s = %+v, want %+v", got.ID, got, want)
		}
		if tournament.EncodeSource(got.HomeSource) != tournament.EncodeSource(want.HomeSource) ||
			tournament.EncodeSource(got.AwaySource) != tournament.EncodeSource(want.AwaySource) {
			t.Errorf("game %s sources = %v/%v", got.ID, got.HomeSource, got.AwaySource)
		}
	}
	if games[3].Placed() {
		t.Error("unplaced game came back placed")
	}
}

func TestGamesFromEditedWorkbook(t *testing.T) {
	f, err := Generate(testData())
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	// A reviewer moves game 1 by hand.
	f.SetCellValue(GamesSheet, "D2", "11:00")
	f.SetCellValue(GamesSheet, "F2", "d2")

	games, err := GamesFrom(f)
	if err != nil {
		t.Fatalf("GamesFrom() error: %v", err)
	}
	if games[0].Start != clock.MustParse("11:00") || games[0].DiamondID != "d2" {
		t.Errorf("edited game = %+v", games[0])
	}

	t.Run("bad time", func(t *testing.T) {
		f.SetCellValue(GamesSheet, "D2", "eleven")
		if _, err := GamesFrom(f); err == nil || !strings.Contains(err.Error(), "row 2") {
			t.Errorf("err = %v, want row 2 error", err)
		}
	})
}

func TestReadGamesMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	path := t.TempDir() + "/empty.xlsx"
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if _, err := ReadGames(path); err == nil {
		t.Error("expected error for workbook without a Games sheet")
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{"games": true}
	tests := []struct {
		in, want string
	}{
		{"Hawks", "Hawks"},
		{"hawks", "hawks (2)"},
		{"Games", "Games (2)"},
		{"A:B", "A-B"},
		{"The Extraordinarily Long Team Name", "The Extraordinarily Long Team N"},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in, used); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
