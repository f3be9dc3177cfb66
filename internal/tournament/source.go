package tournament

import (
	"fmt"
	"strconv"
	"strings"
)

// Source says where a playoff participant comes from. It is either a
// SeedSource or a WinnerSource.
type Source interface {
	isSource()
	String() string
}

// SeedSource is a direct standings reference. Pool is the 1-based pool
// position for cross-pool formats; zero means overall seeding.
type SeedSource struct {
	Rank int
	Pool int
}

func (SeedSource) isSource() {}

func (s SeedSource) String() string {
	if s.Pool > 0 {
		return fmt.Sprintf("%c%d", 'A'+rune(s.Pool-1), s.Rank)
	}
	return fmt.Sprintf("Seed %d", s.Rank)
}

// WinnerSource refers to the winner of an earlier playoff game.
type WinnerSource struct {
	GameNumber int
	Round      int
}

func (WinnerSource) isSource() {}

func (w WinnerSource) String() string {
	return fmt.Sprintf("Winner of Game %d (Round %d)", w.GameNumber, w.Round)
}

// EncodeSource renders a source for storage: "seed:<rank>[:<pool>]" or
// "winner:<game>:<round>". A nil source encodes as "".
func EncodeSource(s Source) string {
	switch v := s.(type) {
	case SeedSource:
		if v.Pool > 0 {
			return fmt.Sprintf("seed:%d:%d", v.Rank, v.Pool)
		}
		return fmt.Sprintf("seed:%d", v.Rank)
	case WinnerSource:
		return fmt.Sprintf("winner:%d:%d", v.GameNumber, v.Round)
	default:
		return ""
	}
}

// DecodeSource is the inverse of EncodeSource.
func DecodeSource(s string) (Source, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ":")
	nums := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid source %q: %w", s, err)
		}
		nums = append(nums, n)
	}
	switch {
	case parts[0] == "seed" && len(nums) == 1:
		return SeedSource{Rank: nums[0]}, nil
	case parts[0] == "seed" && len(nums) == 2:
		return SeedSource{Rank: nums[0], Pool: nums[1]}, nil
	case parts[0] == "winner" && len(nums) == 2:
		return WinnerSource{GameNumber: nums[0], Round: nums[1]}, nil
	}
	return nil, fmt.Errorf("invalid source %q", s)
}
