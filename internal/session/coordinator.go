package session

import (
	"context"

	"profilereview/pkg/domain"
)

// Action names a commit action.
type Action string

// Commit actions.
const (
	ActionSave    Action = "save"
	ActionAccept  Action = "accept"
	ActionDiscard Action = "discard"
)

var commitStates = map[Action]State{
	ActionSave:    StateSaving,
	ActionAccept:  StateAccepting,
	ActionDiscard: StateDiscarding,
}

// Save submits the full change log as a draft, even when it is empty, then
// leaves edit mode and reloads the baseline.
func (s *Session) Save(ctx context.Context) error {
	return s.commit(ctx, ActionSave, func(ctx context.Context, records []domain.ChangeRecord) error {
		return s.transport.SubmitChangeLog(ctx, s.email, records)
	})
}

// Accept promotes the profile's pending changes to committed and reloads.
func (s *Session) Accept(ctx context.Context) error {
	return s.commit(ctx, ActionAccept, func(ctx context.Context, _ []domain.ChangeRecord) error {
		return s.transport.AcceptPending(ctx, s.email)
	})
}

// Discard clears the local change log immediately, abandons the profile's
// pending changes on the backend, and reloads.
func (s *Session) Discard(ctx context.Context) error {
	return s.commit(ctx, ActionDiscard, func(ctx context.Context, _ []domain.ChangeRecord) error {
		return s.transport.DiscardPending(ctx, s.email)
	})
}

// commit runs one commit action. Only one load or commit may be outstanding;
// others are rejected with ErrCommitInProgress. The call is detached from
// caller cancellation. A transport failure returns the session to edit mode
// with the log intact and yields a *CommitFailedError. Whenever the log is
// cleared the view falls back to the last loaded baseline.
func (s *Session) commit(ctx context.Context, action Action, call func(context.Context, []domain.ChangeRecord) error) error {
	s.mu.Lock()
	switch s.state {
	case StateReady, StateEditing:
	case StateUnloaded:
		s.mu.Unlock()
		return ErrNotLoaded
	default:
		s.mu.Unlock()
		return ErrCommitInProgress
	}
	s.state = commitStates[action]
	records := s.log.Records()
	if action == ActionDiscard {
		s.resetView()
	}
	diff := s.diffMode
	s.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	s.logger.Info("commit started", "email", s.email, "action", action, "records", len(records))
	if err := s.observe(ctx, string(action), func(ctx context.Context) error {
		return call(ctx, records)
	}); err != nil {
		s.mu.Lock()
		s.state = StateEditing
		s.mu.Unlock()
		return &CommitFailedError{Action: action, Err: err}
	}

	s.mu.Lock()
	s.resetView()
	s.state = StateLoading
	s.mu.Unlock()
	return s.reload(ctx, StateReady, diff)
}
