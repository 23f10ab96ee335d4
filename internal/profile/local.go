package profile

import (
	"context"

	"profilereview/pkg/domain"
)

// Local adapts a Service to the session transport so an editing session can
// run in-process against the backend without HTTP.
type Local struct {
	Service *Service
}

// FetchSpecification returns the profile, overlaid with pending changes when diff is set.
func (l Local) FetchSpecification(ctx context.Context, email string, diff bool) (domain.ProfileSpecification, error) {
	return l.Service.Specification(ctx, email, diff)
}

// SubmitChangeLog submits records, discarding the non-blocking rule result.
func (l Local) SubmitChangeLog(ctx context.Context, email string, records []domain.ChangeRecord) error {
	_, err := l.Service.SubmitChangeLog(ctx, email, records)
	return err
}

// AcceptPending accepts the pending change log.
func (l Local) AcceptPending(ctx context.Context, email string) error {
	return l.Service.AcceptPending(ctx, email)
}

// DiscardPending discards the pending change log.
func (l Local) DiscardPending(ctx context.Context, email string) error {
	return l.Service.DiscardPending(ctx, email)
}

// AddProjectEntry echoes a provisional project entry.
func (l Local) AddProjectEntry(ctx context.Context, email string, args domain.AddProjectArgs) (domain.ProjectExperienceTransport, error) {
	return l.Service.AddProjectEntry(ctx, email, args)
}

// AddSkill echoes a provisional skill.
func (l Local) AddSkill(ctx context.Context, email string, args domain.AddSkillArgs) (domain.Skill, error) {
	return l.Service.AddSkill(ctx, email, args)
}
