package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"profilereview/pkg/domain"
)

// ProjectForm is the operator input for a new project-experience entry.
// Every field is required.
type ProjectForm struct {
	StartDate       time.Time
	EndDate         time.Time
	ConsultingLevel string
	Project         string
	Description     string
}

func (f ProjectForm) complete() bool {
	return !f.StartDate.IsZero() && !f.EndDate.IsZero() &&
		f.ConsultingLevel != "" && f.Project != "" && f.Description != ""
}

// SkillForm is the operator input for a new skill.
type SkillForm struct {
	Name string
	Area string
}

func (f SkillForm) complete() bool {
	return strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Area) != ""
}

// editing returns ErrNotEditing unless the session is in edit mode. Callers
// hold s.mu.
func (s *Session) editing() error {
	if s.state != StateEditing {
		return ErrNotEditing
	}
	return nil
}

// stage appends record and folds it into the view. Callers hold s.mu.
func (s *Session) stage(record domain.ChangeRecord) {
	s.log.Append(record)
	s.projector.Fold(record)
	s.logger.Debug("change staged", "email", s.email, "change", record.Type,
		"resource", record.Resource(), "id", record.EntityID(), "pending", s.log.Len())
}

// DeleteProject hides project id and stages its deletion. A project added in
// this session is withdrawn instead: its own ADD record is removed and no
// DELETE is appended.
func (s *Session) DeleteProject(id string) error {
	return s.deleteEntity(domain.ResourceProject, id)
}

// DeleteSkill hides skill id and stages its deletion, withdrawing same-session
// additions the way DeleteProject does.
func (s *Session) DeleteSkill(id string) error {
	return s.deleteEntity(domain.ResourceSkill, id)
}

func (s *Session) deleteEntity(resource domain.Resource, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return err
	}
	if removed := s.log.RemoveMatching(addedIn(resource, id)); removed > 0 {
		s.projector.Unstage(resource, id)
		s.logger.Debug("staged addition withdrawn", "email", s.email, "resource", resource, "id", id)
		return nil
	}
	if resource == domain.ResourceProject {
		s.stage(domain.NewDeleteProject(id))
	} else {
		s.stage(domain.NewDeleteSkill(id))
	}
	return nil
}

// AddProject stages a new project-experience entry. An incomplete form is a
// silent no-op reported as (false, nil). With server echo enabled the backend
// allocates the id first and the echoed entry is shown tagged PATCHED; an echo
// failure is returned and nothing is staged.
func (s *Session) AddProject(ctx context.Context, form ProjectForm) (bool, error) {
	s.mu.Lock()
	if err := s.editing(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !form.complete() {
		s.mu.Unlock()
		return false, nil
	}
	args := domain.AddProjectArgs{
		ConsultingLevelID: form.ConsultingLevel,
		Description:       form.Description,
		StartDate:         form.StartDate.Unix(),
		EndDate:           form.EndDate.Unix(),
		ProjectID:         form.Project,
	}
	if !s.serverEcho {
		defer s.mu.Unlock()
		args.NewID = s.temporaryID(domain.ResourceProject)
		s.stage(domain.NewAddProject(args))
		return true, nil
	}
	s.mu.Unlock()

	var echoed domain.ProjectExperienceTransport
	err := s.observe(ctx, "add_project", func(ctx context.Context) error {
		var err error
		echoed, err = s.transport.AddProjectEntry(ctx, s.email, args)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("add project: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return false, err
	}
	args.NewID = echoed.ID
	echoed.ItemState = domain.TagPatched
	s.log.Append(domain.NewAddProject(args))
	s.projector.FoldProject(echoed)
	s.logger.Debug("change staged", "email", s.email, "change", domain.ChangeAdd,
		"resource", domain.ResourceProject, "id", echoed.ID, "pending", s.log.Len())
	return true, nil
}

// AddSkill stages a new skill following the same rules as AddProject.
func (s *Session) AddSkill(ctx context.Context, form SkillForm) (bool, error) {
	s.mu.Lock()
	if err := s.editing(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if !form.complete() {
		s.mu.Unlock()
		return false, nil
	}
	args := domain.AddSkillArgs{Name: strings.TrimSpace(form.Name), Area: strings.TrimSpace(form.Area)}
	if !s.serverEcho {
		defer s.mu.Unlock()
		args.NewID = s.temporaryID(domain.ResourceSkill)
		s.stage(domain.NewAddSkill(args))
		return true, nil
	}
	s.mu.Unlock()

	var echoed domain.Skill
	err := s.observe(ctx, "add_skill", func(ctx context.Context) error {
		var err error
		echoed, err = s.transport.AddSkill(ctx, s.email, args)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("add skill: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return false, err
	}
	args.NewID = echoed.ID
	echoed.ItemState = domain.TagPatched
	s.log.Append(domain.NewAddSkill(args))
	s.projector.FoldSkill(echoed)
	s.logger.Debug("change staged", "email", s.email, "change", domain.ChangeAdd,
		"resource", domain.ResourceSkill, "id", echoed.ID, "pending", s.log.Len())
	return true, nil
}

// UpdateFirstName stages a first-name change. An empty value is ignored.
func (s *Session) UpdateFirstName(value string) error {
	return s.updateScalar(domain.FieldFirstName, value)
}

// UpdateLastName stages a last-name change. An empty value is ignored.
func (s *Session) UpdateLastName(value string) error {
	return s.updateScalar(domain.FieldLastName, value)
}

// UpdateConsultingLevel stages a consulting-level change. An empty value is ignored.
func (s *Session) UpdateConsultingLevel(value string) error {
	return s.updateScalar(domain.FieldConsultingLevel, value)
}

// UpdateRegion stages a region change. An empty value is ignored.
func (s *Session) UpdateRegion(value string) error {
	return s.updateScalar(domain.FieldRegion, value)
}

func (s *Session) updateScalar(field domain.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	s.stage(domain.NewScalarUpdate(field, value))
	return nil
}

// Apply stages a mutation descriptor produced by a dialog or other
// collaborator. Deletes follow DeleteProject/DeleteSkill, adds are staged
// locally tagged ADDED (a temporary id is minted when NewID is empty), and
// empty scalar values are ignored. It never contacts the backend.
func (s *Session) Apply(record domain.ChangeRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	switch args := record.Args.(type) {
	case domain.DeleteProjectArgs:
		return s.DeleteProject(args.ID)
	case domain.DeleteSkillArgs:
		return s.DeleteSkill(args.ID)
	case domain.AddProjectArgs:
		return s.applyAdd(domain.ResourceProject, func(id string) domain.ChangeRecord {
			if args.NewID == "" {
				args.NewID = id
			}
			return domain.NewAddProject(args)
		})
	case domain.AddSkillArgs:
		return s.applyAdd(domain.ResourceSkill, func(id string) domain.ChangeRecord {
			if args.NewID == "" {
				args.NewID = id
			}
			return domain.NewAddSkill(args)
		})
	}
	field, value, _ := record.ScalarValue()
	return s.updateScalar(field, value)
}

func (s *Session) applyAdd(resource domain.Resource, build func(tempID string) domain.ChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.editing(); err != nil {
		return err
	}
	s.stage(build(s.temporaryID(resource)))
	return nil
}

// temporaryID mints a local id from the clock's epoch seconds, suffixed when
// it collides with a visible entity. Callers hold s.mu.
func (s *Session) temporaryID(resource domain.Resource) string {
	base := strconv.FormatInt(s.clock.Now().Unix(), 10)
	taken := func(id string) bool {
		if resource == domain.ResourceProject {
			_, ok := s.projector.Project(id)
			return ok
		}
		_, ok := s.projector.Skill(id)
		return ok
	}
	id := base
	for n := 1; taken(id); n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}
