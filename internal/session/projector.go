package session

import "profilereview/pkg/domain"

// Projector holds the displayed collections and folds change records into them
// one at a time, in append order. The fold is incremental: each record is
// applied to the current collections, never replayed from the baseline.
type Projector struct {
	header   domain.ProfileHeader
	projects []domain.ProjectExperienceTransport
	skills   []domain.Skill
	modified map[domain.Field]bool
	areas    []AreaCount
}

// NewProjector seeds a projector with a server specification. Server lifecycle
// tags are kept as reported.
func NewProjector(spec domain.ProfileSpecification) *Projector {
	spec = spec.Clone()
	p := &Projector{
		header:   spec.ProfileHeader,
		projects: spec.ProjectExperience,
		skills:   spec.Skills,
		modified: make(map[domain.Field]bool),
	}
	if p.header.Metadata == nil {
		p.header.Metadata = domain.Metadata{}
	}
	p.areas = GroupByArea(p.skills)
	return p
}

// Fold applies record to the view. ADD records build their entity from the
// record args and tag it ADDED.
func (p *Projector) Fold(record domain.ChangeRecord) {
	switch args := record.Args.(type) {
	case domain.AddProjectArgs:
		p.putProject(projectFromArgs(args, domain.TagAdded))
	case domain.AddSkillArgs:
		p.putSkill(domain.Skill{ID: args.NewID, Name: args.Name, Area: args.Area, ItemState: domain.TagAdded})
	case domain.DeleteProjectArgs:
		p.removeProject(args.ID)
	case domain.DeleteSkillArgs:
		p.removeSkill(args.ID)
	default:
		if field, value, ok := record.ScalarValue(); ok {
			p.header.Set(field, value)
			p.modified[field] = true
		}
	}
}

// FoldProject shows entry in place of the entity an ADD PROJECT record would
// derive from its args. Used when the server echoed the full entry.
func (p *Projector) FoldProject(entry domain.ProjectExperienceTransport) {
	p.putProject(entry)
}

// FoldSkill shows an echoed skill.
func (p *Projector) FoldSkill(skill domain.Skill) {
	p.putSkill(skill)
}

// Unstage hides an entity whose ADD record was withdrawn from the log.
func (p *Projector) Unstage(resource domain.Resource, id string) {
	switch resource {
	case domain.ResourceProject:
		p.removeProject(id)
	case domain.ResourceSkill:
		p.removeSkill(id)
	}
}

// Project returns the visible project with id.
func (p *Projector) Project(id string) (domain.ProjectExperienceTransport, bool) {
	for _, entry := range p.projects {
		if entry.ID == id {
			return entry, true
		}
	}
	return domain.ProjectExperienceTransport{}, false
}

// Skill returns the visible skill with id.
func (p *Projector) Skill(id string) (domain.Skill, bool) {
	for _, skill := range p.skills {
		if skill.ID == id {
			return skill, true
		}
	}
	return domain.Skill{}, false
}

// Projects returns a copy of the visible projects in wire form.
func (p *Projector) Projects() []domain.ProjectExperienceTransport {
	return append([]domain.ProjectExperienceTransport(nil), p.projects...)
}

// Skills returns a copy of the visible skills.
func (p *Projector) Skills() []domain.Skill {
	return append([]domain.Skill(nil), p.skills...)
}

// Areas returns the current skill grouping.
func (p *Projector) Areas() []AreaCount {
	return append([]AreaCount(nil), p.areas...)
}

// Header returns the current header values.
func (p *Projector) Header() domain.ProfileHeader {
	h := p.header
	h.Metadata = p.header.Metadata.Clone()
	return h
}

// LocallyModified reports whether field was updated in this session.
func (p *Projector) LocallyModified(field domain.Field) bool {
	return p.modified[field]
}

// putProject appends entry, replacing any visible entry with the same id so
// the later record wins and the id stays unique.
func (p *Projector) putProject(entry domain.ProjectExperienceTransport) {
	p.projects = append(withoutProject(p.projects, entry.ID), entry)
}

func (p *Projector) removeProject(id string) {
	p.projects = withoutProject(p.projects, id)
}

func (p *Projector) putSkill(skill domain.Skill) {
	p.skills = append(withoutSkill(p.skills, skill.ID), skill)
	p.areas = GroupByArea(p.skills)
}

func (p *Projector) removeSkill(id string) {
	p.skills = withoutSkill(p.skills, id)
	p.areas = GroupByArea(p.skills)
}

func withoutProject(in []domain.ProjectExperienceTransport, id string) []domain.ProjectExperienceTransport {
	out := make([]domain.ProjectExperienceTransport, 0, len(in))
	for _, entry := range in {
		if entry.ID != id {
			out = append(out, entry)
		}
	}
	return out
}

func withoutSkill(in []domain.Skill, id string) []domain.Skill {
	out := make([]domain.Skill, 0, len(in))
	for _, skill := range in {
		if skill.ID != id {
			out = append(out, skill)
		}
	}
	return out
}

func projectFromArgs(args domain.AddProjectArgs, tag domain.LifecycleTag) domain.ProjectExperienceTransport {
	return domain.ProjectExperienceTransport{
		ID:              args.NewID,
		StartDate:       args.StartDate,
		EndDate:         args.EndDate,
		ConsultingLevel: args.ConsultingLevelID,
		Description:     args.Description,
		ProjectName:     args.ProjectID,
		ItemState:       tag,
	}
}
