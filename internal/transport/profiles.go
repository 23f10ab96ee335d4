package transport

import (
	"context"
	"net/url"
	"strconv"

	"profilereview/pkg/domain"
)

// Backend routes, relative to the client base URL.
const (
	profilesPath          = "api/v1/profiles/"
	projectExperiencePath = "api/v1/project-experience"
	skillsPath            = "api/v1/skills"
)

func profilePath(email, suffix string) string {
	return profilesPath + url.PathEscape(email) + "/" + suffix
}

func emailParam(email string) url.Values {
	return url.Values{"email": []string{email}}
}

// FetchSpecification loads the profile, overlaying pending changes when diff is set.
func (c *Client) FetchSpecification(ctx context.Context, email string, diff bool) (domain.ProfileSpecification, error) {
	var spec domain.ProfileSpecification
	params := url.Values{"diff": []string{strconv.FormatBool(diff)}}
	if err := c.Get(ctx, profilePath(email, "specification"), params, &spec); err != nil {
		return domain.ProfileSpecification{}, err
	}
	return spec, nil
}

// SubmitChangeLog sends records as the profile's pending draft.
func (c *Client) SubmitChangeLog(ctx context.Context, email string, records []domain.ChangeRecord) error {
	if records == nil {
		records = []domain.ChangeRecord{}
	}
	return c.Put(ctx, profilePath(email, "changes"), records, nil)
}

// AcceptPending promotes the profile's pending changes.
func (c *Client) AcceptPending(ctx context.Context, email string) error {
	return c.Post(ctx, profilePath(email, "accept"), nil, nil)
}

// DiscardPending abandons the profile's pending changes.
func (c *Client) DiscardPending(ctx context.Context, email string) error {
	return c.Delete(ctx, profilePath(email, "pending"), nil)
}

// AddProjectEntry asks the backend to allocate a project-experience entry and
// returns it with its server id.
func (c *Client) AddProjectEntry(ctx context.Context, email string, args domain.AddProjectArgs) (domain.ProjectExperienceTransport, error) {
	var entry domain.ProjectExperienceTransport
	if err := c.Patch(ctx, projectExperiencePath, args, emailParam(email), &entry); err != nil {
		return domain.ProjectExperienceTransport{}, err
	}
	return entry, nil
}

// AddSkill asks the backend to allocate a skill and returns it with its server id.
func (c *Client) AddSkill(ctx context.Context, email string, args domain.AddSkillArgs) (domain.Skill, error) {
	var skill domain.Skill
	if err := c.Patch(ctx, skillsPath, args, emailParam(email), &skill); err != nil {
		return domain.Skill{}, err
	}
	return skill, nil
}
