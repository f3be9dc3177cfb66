package schedule

import (
	"testing"
	"time"

	"github.com/derekprior/tourney/internal/clock"
	"github.com/derekprior/tourney/internal/tournament"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func testDiamond(id, open, close string) tournament.Diamond {
	return tournament.Diamond{
		ID:             id,
		Name:           "Diamond " + id,
		AvailableStart: clock.MustParse(open),
		AvailableEnd:   clock.MustParse(close),
		Status:         tournament.DiamondOpen,
	}
}

func TestNormalizeDates(t *testing.T) {
	got := NormalizeDates([]time.Time{
		date(2025, 7, 3),
		date(2025, 7, 1).Add(15 * time.Hour),
		date(2025, 7, 1),
	})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Equal(date(2025, 7, 1)) || !got[1].Equal(date(2025, 7, 3)) {
		t.Errorf("got %v", got)
	}
}

func TestSplitDates(t *testing.T) {
	four := []time.Time{date(2025, 7, 1), date(2025, 7, 2), date(2025, 7, 3), date(2025, 7, 4)}

	tests := []struct {
		name        string
		dates       []time.Time
		days        int
		wantPool    int
		wantPlayoff int
	}{
		{"two dates do not split", four[:2], 0, 2, 2},
		{"default keeps the last day for playoffs", four, 0, 3, 1},
		{"explicit pool play days", four, 2, 2, 2},
		{"too many pool play days falls back", four, 4, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, playoff := SplitDates(tt.dates, tt.days)
			if len(pool) != tt.wantPool || len(playoff) != tt.wantPlayoff {
				t.Errorf("split = %d/%d, want %d/%d", len(pool), len(playoff), tt.wantPool, tt.wantPlayoff)
			}
		})
	}
}

func TestTimes(t *testing.T) {
	diamonds := []tournament.Diamond{
		testDiamond("1", "09:00", "15:00"),
		testDiamond("2", "10:00", "16:00"),
	}

	times := Times(diamonds, 90, 90)
	want := []string{"09:00", "10:30", "12:00", "13:30"}
	if len(times) != len(want) {
		t.Fatalf("times = %v, want %v", times, want)
	}
	for i, w := range want {
		if times[i].String() != w {
			t.Errorf("times[%d] = %s, want %s", i, times[i], w)
		}
	}

	t.Run("closed diamonds are ignored", func(t *testing.T) {
		closed := testDiamond("3", "06:00", "22:00")
		closed.Status = tournament.DiamondClosed
		got := Times(append(diamonds, closed), 90, 90)
		if got[0].String() != "09:00" {
			t.Errorf("first time = %s, want 09:00", got[0])
		}
	})

	t.Run("no usable diamonds", func(t *testing.T) {
		if got := Times(nil, 30, 90); got != nil {
			t.Errorf("got %v", got)
		}
	})
}

func TestGenerateSlots(t *testing.T) {
	diamonds := []tournament.Diamond{
		testDiamond("1", "09:00", "12:00"),
		testDiamond("2", "10:30", "12:00"),
	}
	slots := GenerateSlots([]time.Time{date(2025, 7, 1)}, diamonds, 90, 90)

	// 09:00 and 10:30 on diamond 1; only 10:30 on diamond 2.
	if len(slots) != 3 {
		t.Fatalf("slots = %+v", slots)
	}
	if slots[1].Start.String() != "10:30" || slots[1].Diamond.ID != "1" {
		t.Errorf("slots not in time then diamond order: %+v", slots)
	}
	if slots[2].Diamond.ID != "2" {
		t.Errorf("last slot = %+v", slots[2])
	}
}
