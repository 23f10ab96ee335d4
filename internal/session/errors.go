package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when an operation needs a baseline that has not been fetched.
	ErrNotLoaded = errors.New("session: specification not loaded")
	// ErrNotEditing is returned when a mutation is attempted outside edit mode.
	ErrNotEditing = errors.New("session: not in edit mode")
	// ErrEditInProgress is returned when a reload or mode switch would drop staged edits.
	ErrEditInProgress = errors.New("session: edit in progress")
	// ErrCommitInProgress is returned when a load or commit action is already outstanding.
	ErrCommitInProgress = errors.New("session: commit in progress")
	// ErrCommitFailed matches every CommitFailedError.
	ErrCommitFailed = errors.New("session: commit failed")
)

// CommitFailedError reports a save, accept, or discard call that failed at the
// transport. The session is back in edit mode when it is returned.
type CommitFailedError struct {
	Action Action
	Err    error
}

func (e *CommitFailedError) Error() string {
	return fmt.Sprintf("session: %s failed: %v", e.Action, e.Err)
}

// Unwrap exposes the transport error.
func (e *CommitFailedError) Unwrap() error { return e.Err }

// Is reports ErrCommitFailed as a match.
func (e *CommitFailedError) Is(target error) bool { return target == ErrCommitFailed }
