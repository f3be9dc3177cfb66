package engine

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/derekprior/tourney/internal/tournament"
)

var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCommitRejected     = errors.New("commit rejected")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrAlreadyScheduled   = errors.New("games already scheduled")
)

// CommitRejection carries the violations that blocked a commit. It matches
// ErrCommitRejected with errors.Is.
type CommitRejection struct {
	Violations []tournament.Violation
}

func (e *CommitRejection) Error() string {
	n := len(tournament.Errors(e.Violations))
	if n == 1 {
		return fmt.Sprintf("%s: %s", ErrCommitRejected, tournament.Errors(e.Violations)[0].Message)
	}
	return fmt.Sprintf("%s: %d violations", ErrCommitRejected, n)
}

func (e *CommitRejection) Unwrap() error { return ErrCommitRejected }
