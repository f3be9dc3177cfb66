package tournament

import "sort"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Violation is a constraint failure attached to a game and optionally a team.
// Errors block commit; warnings are informational.
type Violation struct {
	GameID   string
	TeamID   string
	Message  string
	Severity Severity
}

// HasErrors reports whether any violation blocks commit.
func HasErrors(vs []Violation) bool {
	for _, v := range vs {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors filters vs down to error-severity violations.
func Errors(vs []Violation) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.Severity == SeverityError {
			out = append(out, v)
		}
	}
	return out
}

// SortViolations orders errors before warnings, then by game, team and
// message, so reports are stable across runs.
func SortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Severity != b.Severity {
			return a.Severity == SeverityError
		}
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		return a.Message < b.Message
	})
}
