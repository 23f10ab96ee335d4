// Package profile implements the profile backend: committed baselines, the
// pending change log awaiting approval and provisional entities echoed to
// editing sessions.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"profilereview/internal/archive"
	"profilereview/pkg/domain"
)

const defaultLockTTL = 30 * time.Second

// Locker serialises commits per profile. Acquire returns ErrLocked when the
// key is already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// Option configures a Service.
type Option func(*Service)

// WithArchiver records every submit, accept and discard in the archive.
func WithArchiver(a *archive.Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

// WithLocker installs the per-profile commit lock.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRules replaces the default rules engine.
func WithRules(engine *domain.RulesEngine) Option {
	return func(s *Service) { s.engine = engine }
}

// WithIDGenerator overrides the id source for provisional entities.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Service exposes the profile workflow over a persistent store.
type Service struct {
	store    domain.PersistentStore
	engine   *domain.RulesEngine
	archiver *archive.Archiver
	locker   Locker
	lockTTL  time.Duration
	logger   *slog.Logger
	newID    func() string
}

// NewService constructs a service backed by store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		engine:  NewDefaultRulesEngine(),
		lockTTL: defaultLockTTL,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// Seed stores spec as the committed baseline of its profile. Pending changes
// already recorded for the profile are kept.
func (s *Service) Seed(ctx context.Context, specs ...domain.ProfileSpecification) error {
	return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, spec := range specs {
			record, _ := tx.GetProfile(spec.Email)
			record.Email = spec.Email
			record.Baseline = committed(spec)
			if _, err := tx.PutProfile(record); err != nil {
				return fmt.Errorf("seed %s: %w", spec.Email, err)
			}
		}
		return nil
	})
}

// Profiles lists the emails of every stored profile.
func (s *Service) Profiles() []string {
	records := s.store.ListProfiles()
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Email)
	}
	return out
}

// Specification returns the profile for email. With diff the pending change
// log is overlaid and tagged; without it only committed data is returned.
func (s *Service) Specification(_ context.Context, email string, diff bool) (domain.ProfileSpecification, error) {
	record, ok := s.store.GetProfile(email)
	if !ok {
		return domain.ProfileSpecification{}, profileNotFound(email)
	}
	if diff {
		return overlay(record), nil
	}
	return committed(record.Baseline), nil
}

// SubmitChangeLog validates records, evaluates the rules engine against the
// pending view and appends the records to the pending log. Blocking
// violations reject the whole log with domain.RuleViolationError.
func (s *Service) SubmitChangeLog(ctx context.Context, email string, records []domain.ChangeRecord) (domain.Result, error) {
	for i, record := range records {
		if err := record.Validate(); err != nil {
			return domain.Result{}, fmt.Errorf("record %d: %w", i, err)
		}
	}
	var result domain.Result
	err := s.withLock(ctx, email, func() error {
		return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			record, ok := tx.GetProfile(email)
			if !ok {
				return profileNotFound(email)
			}
			res, err := s.engine.Evaluate(ctx, newRuleView(record), records)
			if err != nil {
				return fmt.Errorf("evaluate rules: %w", err)
			}
			result = res
			if res.HasBlocking() {
				return domain.RuleViolationError{Result: res}
			}
			record.Pending = append(record.Pending, records...)
			_, err = tx.PutProfile(record)
			return err
		})
	})
	if err != nil {
		return result, err
	}
	s.logger.Info("change log submitted", "email", email, "records", len(records), "violations", len(result.Violations))
	s.archive(ctx, email, archive.ActionSubmit, records)
	return result, nil
}

// AcceptPending folds the pending log into the baseline and clears it.
// Provisional entities consumed by an ADD are dropped.
func (s *Service) AcceptPending(ctx context.Context, email string) error {
	var accepted []domain.ChangeRecord
	err := s.withLock(ctx, email, func() error {
		return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			record, ok := tx.GetProfile(email)
			if !ok {
				return profileNotFound(email)
			}
			accepted = record.Pending
			record.Baseline = applyChanges(record)
			for _, change := range record.Pending {
				if change.Type != domain.ChangeAdd {
					continue
				}
				delete(record.ProvisionalProjects, change.EntityID())
				delete(record.ProvisionalSkills, change.EntityID())
			}
			record.Pending = nil
			_, err := tx.PutProfile(record)
			return err
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("pending changes accepted", "email", email, "records", len(accepted))
	s.archive(ctx, email, archive.ActionAccept, accepted)
	return nil
}

// DiscardPending drops the pending log and every provisional entity.
func (s *Service) DiscardPending(ctx context.Context, email string) error {
	var discarded []domain.ChangeRecord
	err := s.withLock(ctx, email, func() error {
		return s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			record, ok := tx.GetProfile(email)
			if !ok {
				return profileNotFound(email)
			}
			discarded = record.Pending
			record.Pending = nil
			record.ProvisionalProjects = nil
			record.ProvisionalSkills = nil
			_, err := tx.PutProfile(record)
			return err
		})
	})
	if err != nil {
		return err
	}
	s.logger.Info("pending changes discarded", "email", email, "records", len(discarded))
	s.archive(ctx, email, archive.ActionDiscard, discarded)
	return nil
}

// AddProjectEntry allocates an id for a new project entry and keeps it as a
// provisional entity until a submitted ADD references it. The echo is tagged
// PATCHED.
func (s *Service) AddProjectEntry(ctx context.Context, email string, args domain.AddProjectArgs) (domain.ProjectExperienceTransport, error) {
	entry := domain.ProjectExperienceTransport{
		ID:              s.newID(),
		StartDate:       args.StartDate,
		EndDate:         args.EndDate,
		ConsultingLevel: args.ConsultingLevelID,
		Description:     args.Description,
		ProjectName:     args.ProjectID,
		ItemState:       domain.TagPatched,
	}
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		record, ok := tx.GetProfile(email)
		if !ok {
			return profileNotFound(email)
		}
		if record.ProvisionalProjects == nil {
			record.ProvisionalProjects = make(map[string]domain.ProjectExperienceTransport)
		}
		record.ProvisionalProjects[entry.ID] = entry
		_, err := tx.PutProfile(record)
		return err
	})
	if err != nil {
		return domain.ProjectExperienceTransport{}, err
	}
	s.logger.Debug("provisional project entry", "email", email, "id", entry.ID)
	return entry, nil
}

// AddSkill allocates an id for a new skill and keeps it provisional. The echo
// is tagged PATCHED.
func (s *Service) AddSkill(ctx context.Context, email string, args domain.AddSkillArgs) (domain.Skill, error) {
	skill := domain.Skill{
		ID:        s.newID(),
		Name:      strings.TrimSpace(args.Name),
		Area:      strings.TrimSpace(args.Area),
		ItemState: domain.TagPatched,
	}
	err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		record, ok := tx.GetProfile(email)
		if !ok {
			return profileNotFound(email)
		}
		if record.ProvisionalSkills == nil {
			record.ProvisionalSkills = make(map[string]domain.Skill)
		}
		record.ProvisionalSkills[skill.ID] = skill
		_, err := tx.PutProfile(record)
		return err
	})
	if err != nil {
		return domain.Skill{}, err
	}
	s.logger.Debug("provisional skill", "email", email, "id", skill.ID)
	return skill, nil
}

// History returns the archived operations for email, oldest first. Without an
// archiver it is always empty.
func (s *Service) History(ctx context.Context, email string) ([]archive.Entry, error) {
	if s.archiver == nil {
		return []archive.Entry{}, nil
	}
	if _, ok := s.store.GetProfile(email); !ok {
		return nil, profileNotFound(email)
	}
	return s.archiver.History(ctx, email)
}

func (s *Service) withLock(ctx context.Context, email string, fn func() error) error {
	if s.locker == nil {
		return fn()
	}
	release, err := s.locker.Acquire(ctx, "profilereview:commit:"+strings.ToLower(strings.TrimSpace(email)), s.lockTTL)
	if err != nil {
		if errors.Is(err, ErrLocked) {
			return err
		}
		return fmt.Errorf("acquire commit lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("release commit lock", "email", email, "error", err)
		}
	}()
	return fn()
}

// archive failures are logged; the state change they describe is already
// committed.
func (s *Service) archive(ctx context.Context, email string, action archive.Action, records []domain.ChangeRecord) {
	if s.archiver == nil {
		return
	}
	entry, err := s.archiver.Record(context.WithoutCancel(ctx), email, action, records)
	if err != nil {
		s.logger.Warn("archive change log", "email", email, "action", action, "error", err)
		return
	}
	s.logger.Debug("change log archived", "key", entry.Key, "driver", s.archiver.Driver())
}
