// Package session implements the staged-edit session: a baseline fetched from
// the backend, a change log of operator intent, the projected view, and the
// commit actions that flush the log.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"profilereview/pkg/domain"
)

// State is the session lifecycle position.
type State string

// Session states.
const (
	StateUnloaded   State = "UNLOADED"
	StateLoading    State = "LOADING"
	StateReady      State = "READY"
	StateEditing    State = "EDITING"
	StateSaving     State = "SAVING"
	StateAccepting  State = "ACCEPTING"
	StateDiscarding State = "DISCARDING"
)

// busy reports whether a network round trip owns the session.
func (s State) busy() bool {
	switch s {
	case StateLoading, StateSaving, StateAccepting, StateDiscarding:
		return true
	}
	return false
}

// Session is the editing context for one profile. It owns its collections and
// change log exclusively; collaborators only see copies.
type Session struct {
	email     string
	transport Transport

	logger     Logger
	metrics    MetricsRecorder
	tracer     Tracer
	clock      Clock
	loc        *time.Location
	serverEcho bool

	mu        sync.Mutex
	state     State
	diffMode  bool
	projector *Projector
	baseline  domain.ProfileSpecification
	log       ChangeLog
}

// New constructs an unloaded session for email.
func New(email string, transport Transport, opts ...Option) *Session {
	s := &Session{
		email:      email,
		transport:  transport,
		logger:     noopLogger{},
		metrics:    noopMetrics{},
		tracer:     noopTracer{},
		clock:      ClockFunc(time.Now),
		loc:        time.UTC,
		serverEcho: true,
		state:      StateUnloaded,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Email returns the profile key the session is scoped to.
func (s *Session) Email() string { return s.email }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Records returns a copy of the change log.
func (s *Session) Records() []domain.ChangeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Records()
}

// Load fetches the baseline and replaces the current view. Staged edits must be
// committed or cancelled first. On failure the session keeps its previous state
// and view.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	prev := s.state
	if prev.busy() {
		s.mu.Unlock()
		return ErrCommitInProgress
	}
	if s.log.Len() > 0 {
		s.mu.Unlock()
		return ErrEditInProgress
	}
	s.state = StateLoading
	diff := s.diffMode
	s.mu.Unlock()
	return s.reload(ctx, prev, diff)
}

// reload fetches the baseline for a session already in StateLoading. fallback
// is restored when the fetch fails.
func (s *Session) reload(ctx context.Context, fallback State, diff bool) error {
	var spec domain.ProfileSpecification
	err := s.observe(ctx, "load", func(ctx context.Context) error {
		var err error
		spec, err = s.transport.FetchSpecification(ctx, s.email, diff)
		return err
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = fallback
		return fmt.Errorf("load specification for %s: %w", s.email, err)
	}
	s.baseline = spec
	s.resetView()
	s.state = StateReady
	s.logger.Info("profile loaded", "email", s.email, "diff", diff,
		"projects", len(spec.ProjectExperience), "skills", len(spec.Skills))
	return nil
}

// resetView clears the log and re-projects the last loaded baseline, so the
// view never shows records the log no longer holds. Callers hold s.mu.
func (s *Session) resetView() {
	s.log.Clear()
	s.projector = NewProjector(s.baseline)
}

// BeginEdit enters edit mode. Calling it while already editing is a no-op.
func (s *Session) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEditing:
		return nil
	case StateReady:
		s.state = StateEditing
		return nil
	case StateUnloaded:
		return ErrNotLoaded
	}
	return ErrCommitInProgress
}

// CancelEdit leaves edit mode without committing. The change log and the
// projected view are kept so editing can resume.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateEditing:
		s.state = StateReady
		return nil
	case StateReady:
		return nil
	}
	return ErrNotEditing
}

// DiffMode reports whether loads include pending server-side changes.
func (s *Session) DiffMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diffMode
}

// SetDiffMode switches the read mode and reloads when it changes. It is
// rejected while staged edits exist.
func (s *Session) SetDiffMode(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	if s.diffMode == enabled {
		s.mu.Unlock()
		return nil
	}
	prev := s.state
	if prev.busy() {
		s.mu.Unlock()
		return ErrCommitInProgress
	}
	if s.log.Len() > 0 {
		s.mu.Unlock()
		return ErrEditInProgress
	}
	if prev == StateUnloaded {
		s.diffMode = enabled
		s.mu.Unlock()
		return nil
	}
	previous := s.diffMode
	s.diffMode = enabled
	s.state = StateLoading
	s.mu.Unlock()

	if err := s.reload(ctx, prev, enabled); err != nil {
		s.mu.Lock()
		s.diffMode = previous
		s.mu.Unlock()
		return err
	}
	return nil
}

// View returns the current projection. It fails with ErrNotLoaded before the
// first successful load.
func (s *Session) View() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.projector == nil {
		return View{}, ErrNotLoaded
	}
	projects := s.projector.Projects()
	entries := make([]domain.ProjectExperienceEntry, 0, len(projects))
	for _, tr := range projects {
		entries = append(entries, domain.ToEntry(tr, s.loc))
	}
	local := make(map[domain.Field]bool)
	for _, field := range domain.ScalarFields {
		if s.projector.LocallyModified(field) {
			local[field] = true
		}
	}
	return View{
		State:    s.state,
		EditMode: s.state == StateEditing,
		DiffMode: s.diffMode,
		Header:   s.projector.Header(),
		Projects: entries,
		Skills:   s.projector.Skills(),
		Areas:    s.projector.Areas(),
		Local:    local,
		Pending:  s.log.Len(),
	}, nil
}
