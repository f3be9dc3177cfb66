package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

var july1 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func diamond(id string) tournament.Diamond {
	return tournament.Diamond{
		ID:             id,
		Name:           "Diamond " + id,
		AvailableStart: clock.MustParse("09:00"),
		AvailableEnd:   clock.MustParse("17:00"),
		Status:         tournament.DiamondOpen,
	}
}

func game(id, diamondID, start, home, away string) tournament.Game {
	return tournament.Game{
		ID:              id,
		HomeTeamID:      home,
		AwayTeamID:      away,
		DiamondID:       diamondID,
		Date:            july1,
		Start:           clock.MustParse(start),
		DurationMinutes: 90,
	}
}

func candidate(d tournament.Diamond, start, home, away string) Candidate {
	return Candidate{
		HomeTeamID: home,
		AwayTeamID: away,
		Diamond:    d,
		Date:       july1,
		Start:      clock.MustParse(start),
		Duration:   90,
	}
}

func containsMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateSlotHours(t *testing.T) {
	d := diamond("1")

	t.Run("ending past closing is rejected", func(t *testing.T) {
		res := ValidateSlot(candidate(d, "16:30", "a", "b"), nil, nil, Options{})
		if res.Valid {
			t.Fatal("16:30 + 90 should run past 17:00")
		}
		if !containsMessage(res.Errors, "outside") {
			t.Errorf("errors = %v, want hours error", res.Errors)
		}
	})

	t.Run("starting at opening is valid", func(t *testing.T) {
		res := ValidateSlot(candidate(d, "09:00", "a", "b"), nil, nil, Options{})
		if !res.Valid {
			t.Errorf("errors = %v", res.Errors)
		}
	})

	t.Run("ending exactly at closing is valid", func(t *testing.T) {
		res := ValidateSlot(candidate(d, "15:30", "a", "b"), nil, nil, Options{})
		if !res.Valid {
			t.Errorf("errors = %v", res.Errors)
		}
	})

	t.Run("starting at closing is invalid", func(t *testing.T) {
		c := candidate(d, "17:00", "a", "b")
		c.Duration = 1
		if ValidateSlot(c, nil, nil, Options{}).Valid {
			t.Error("start at available end must be rejected")
		}
	})

	t.Run("starting before opening is invalid", func(t *testing.T) {
		if ValidateSlot(candidate(d, "08:30", "a", "b"), nil, nil, Options{}).Valid {
			t.Error("08:30 is before opening")
		}
	})
}

func TestValidateSlotStatus(t *testing.T) {
	closed := diamond("1")
	closed.Status = tournament.DiamondClosed
	res := ValidateSlot(candidate(closed, "10:00", "a", "b"), nil, nil, Options{})
	if res.Valid || !containsMessage(res.Errors, "closed") {
		t.Errorf("closed diamond: %+v", res)
	}

	delayed := diamond("1")
	delayed.Status = tournament.DiamondDelayed
	res = ValidateSlot(candidate(delayed, "10:00", "a", "b"), nil, nil, Options{})
	if !res.Valid || !containsMessage(res.Warnings, "delayed") {
		t.Errorf("delayed diamond should only warn: %+v", res)
	}
}

func TestValidateSlotDiamondOverlap(t *testing.T) {
	d := diamond("1")
	games := []tournament.Game{
		game("g1", "1", "10:00", "a", "b"),
		game("g2", "1", "12:00", "c", "d"),
	}

	res := ValidateSlot(candidate(d, "11:00", "e", "f"), games, nil, Options{})
	if res.Valid {
		t.Fatal("11:00-12:30 overlaps both games")
	}
	if len(res.Errors) != 2 || !containsMessage(res.Errors, "overlap") {
		t.Errorf("errors = %v, want two overlap errors", res.Errors)
	}

	t.Run("touching intervals do not overlap", func(t *testing.T) {
		res := ValidateSlot(candidate(d, "13:30", "e", "f"), games, nil, Options{})
		if !res.Valid {
			t.Errorf("errors = %v", res.Errors)
		}
	})

	t.Run("other diamonds and dates are ignored", func(t *testing.T) {
		other := game("g3", "2", "11:00", "x", "y")
		later := game("g4", "1", "11:00", "x", "y")
		later.Date = july1.AddDate(0, 0, 1)
		res := ValidateSlot(candidate(d, "13:30", "e", "f"), append(games, other, later), nil, Options{})
		if !res.Valid {
			t.Errorf("errors = %v", res.Errors)
		}
	})

	t.Run("moving a game ignores itself", func(t *testing.T) {
		res := ValidateSlot(candidate(d, "10:30", "a", "b"), games[:1], nil, Options{SkipGameID: "g1"})
		if !res.Valid {
			t.Errorf("errors = %v", res.Errors)
		}
	})
}

func TestValidateSlotTeamOverlap(t *testing.T) {
	games := []tournament.Game{game("g1", "2", "10:00", "a", "b")}
	res := ValidateSlot(candidate(diamond("1"), "11:00", "c", "a"), games, nil, Options{})
	if res.Valid {
		t.Fatal("team a is already playing on diamond 2")
	}
	if !containsMessage(res.Errors, "team a already has a game that overlaps") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestValidateSlotRest(t *testing.T) {
	games := []tournament.Game{game("g1", "1", "10:00", "a", "b")}

	res := ValidateSlot(candidate(diamond("2"), "11:50", "a", "c"), games, nil, Options{MinRestMinutes: 30})
	if res.Valid {
		t.Fatal("20 minutes rest is below the minimum")
	}
	if !containsMessage(res.Errors, "only 20 minutes rest") {
		t.Errorf("errors = %v", res.Errors)
	}

	res = ValidateSlot(candidate(diamond("2"), "12:00", "a", "c"), games, nil, Options{MinRestMinutes: 30})
	if !res.Valid {
		t.Errorf("30 minutes rest should pass: %v", res.Errors)
	}

	res = ValidateSlot(candidate(diamond("2"), "11:50", "a", "c"), games, nil, Options{})
	if !res.Valid {
		t.Errorf("rest check disabled: %v", res.Errors)
	}
}

func TestValidateSlotAllocations(t *testing.T) {
	d := diamond("1")
	block := func(division string) []tournament.Allocation {
		return []tournament.Allocation{{
			DiamondID:  "1",
			Date:       july1,
			Start:      clock.MustParse("12:00"),
			End:        clock.MustParse("14:00"),
			DivisionID: division,
			Reason:     "Rec league",
		}}
	}

	tests := []struct {
		name       string
		division   string
		start      string
		wantValid  bool
		wantErrors int
		wantWarns  int
	}{
		{"other division blocks", "u10", "11:00", false, 1, 0},
		{"unscoped blocks everyone", "", "11:00", false, 1, 0},
		{"same division warns", "u12", "11:00", true, 0, 1},
		{"no overlap", "u10", "14:00", true, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSlot(candidate(d, tt.start, "a", "b"), nil, block(tt.division), Options{TeamDivisionID: "u12"})
			if res.Valid != tt.wantValid || len(res.Errors) != tt.wantErrors || len(res.Warnings) != tt.wantWarns {
				t.Errorf("got %+v", res)
			}
			if tt.wantErrors > 0 && !containsMessage(res.Errors, "reserved time block") {
				t.Errorf("errors = %v", res.Errors)
			}
		})
	}
}

func TestValidateSlotIsIdempotent(t *testing.T) {
	games := []tournament.Game{
		game("g1", "1", "10:00", "a", "b"),
		game("g2", "1", "12:00", "c", "d"),
	}
	c := candidate(diamond("1"), "11:00", "a", "c")
	first := ValidateSlot(c, games, nil, Options{MinRestMinutes: 30})
	second := ValidateSlot(c, games, nil, Options{MinRestMinutes: 30})
	if strings.Join(first.Errors, "|") != strings.Join(second.Errors, "|") || first.Valid != second.Valid {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}
