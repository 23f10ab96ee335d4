package session

import (
	"context"

	"profilereview/pkg/domain"
)

// Transport is the backend boundary a session talks to. Every call is scoped
// to one profile email.
type Transport interface {
	FetchSpecification(ctx context.Context, email string, diff bool) (domain.ProfileSpecification, error)
	SubmitChangeLog(ctx context.Context, email string, records []domain.ChangeRecord) error
	AcceptPending(ctx context.Context, email string) error
	DiscardPending(ctx context.Context, email string) error
	AddProjectEntry(ctx context.Context, email string, args domain.AddProjectArgs) (domain.ProjectExperienceTransport, error)
	AddSkill(ctx context.Context, email string, args domain.AddSkillArgs) (domain.Skill, error)
}
