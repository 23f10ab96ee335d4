package profile

import "profilereview/pkg/domain"

// committed returns spec with every entity and field tagged PERSISTED.
func committed(spec domain.ProfileSpecification) domain.ProfileSpecification {
	out := spec.Clone()
	out.Metadata = domain.Metadata{}
	for _, field := range domain.ScalarFields {
		out.Metadata[field] = domain.TagPersisted
	}
	for i := range out.ProjectExperience {
		out.ProjectExperience[i].ItemState = domain.TagPersisted
	}
	for i := range out.Skills {
		out.Skills[i].ItemState = domain.TagPersisted
	}
	return out
}

// applyChanges folds records into the baseline the way acceptance does:
// adds append, deletes remove, scalar updates overwrite.
func applyChanges(record domain.ProfileRecord) domain.ProfileSpecification {
	spec := committed(record.Baseline)
	for _, change := range record.Pending {
		switch args := change.Args.(type) {
		case domain.AddProjectArgs:
			entry := projectForAdd(record, args)
			entry.ItemState = domain.TagPersisted
			spec.ProjectExperience = append(withoutProject(spec.ProjectExperience, entry.ID), entry)
		case domain.DeleteProjectArgs:
			spec.ProjectExperience = withoutProject(spec.ProjectExperience, args.ID)
		case domain.AddSkillArgs:
			skill := skillForAdd(record, args)
			skill.ItemState = domain.TagPersisted
			spec.Skills = append(withoutSkill(spec.Skills, skill.ID), skill)
		case domain.DeleteSkillArgs:
			spec.Skills = withoutSkill(spec.Skills, args.ID)
		default:
			if field, value, ok := change.ScalarValue(); ok {
				spec.Set(field, value)
			}
		}
	}
	return spec
}

// overlay renders the baseline with the pending log visible: added entities
// are ADDED, deleted entities stay listed as DELETED and updated header fields
// are flagged UPDATED in metadata.
func overlay(record domain.ProfileRecord) domain.ProfileSpecification {
	spec := committed(record.Baseline)
	for _, change := range record.Pending {
		switch args := change.Args.(type) {
		case domain.AddProjectArgs:
			entry := projectForAdd(record, args)
			entry.ItemState = domain.TagAdded
			spec.ProjectExperience = append(withoutProject(spec.ProjectExperience, entry.ID), entry)
		case domain.DeleteProjectArgs:
			for i := range spec.ProjectExperience {
				if spec.ProjectExperience[i].ID != args.ID {
					continue
				}
				if spec.ProjectExperience[i].ItemState == domain.TagAdded {
					spec.ProjectExperience = withoutProject(spec.ProjectExperience, args.ID)
				} else {
					spec.ProjectExperience[i].ItemState = domain.TagDeleted
				}
				break
			}
		case domain.AddSkillArgs:
			skill := skillForAdd(record, args)
			skill.ItemState = domain.TagAdded
			spec.Skills = append(withoutSkill(spec.Skills, skill.ID), skill)
		case domain.DeleteSkillArgs:
			for i := range spec.Skills {
				if spec.Skills[i].ID != args.ID {
					continue
				}
				if spec.Skills[i].ItemState == domain.TagAdded {
					spec.Skills = withoutSkill(spec.Skills, args.ID)
				} else {
					spec.Skills[i].ItemState = domain.TagDeleted
				}
				break
			}
		default:
			if field, value, ok := change.ScalarValue(); ok {
				spec.Set(field, value)
				spec.Metadata[field] = domain.TagUpdated
			}
		}
	}
	return spec
}

// projectForAdd prefers the provisional entity echoed earlier for the same id,
// which carries the project details the ADD args lack.
func projectForAdd(record domain.ProfileRecord, args domain.AddProjectArgs) domain.ProjectExperienceTransport {
	if entry, ok := record.ProvisionalProjects[args.NewID]; ok {
		return entry
	}
	return domain.ProjectExperienceTransport{
		ID:              args.NewID,
		StartDate:       args.StartDate,
		EndDate:         args.EndDate,
		ConsultingLevel: args.ConsultingLevelID,
		Description:     args.Description,
		ProjectName:     args.ProjectID,
	}
}

func skillForAdd(record domain.ProfileRecord, args domain.AddSkillArgs) domain.Skill {
	if skill, ok := record.ProvisionalSkills[args.NewID]; ok {
		return skill
	}
	return domain.Skill{ID: args.NewID, Name: args.Name, Area: args.Area}
}

func withoutProject(in []domain.ProjectExperienceTransport, id string) []domain.ProjectExperienceTransport {
	out := in[:0:0]
	for _, entry := range in {
		if entry.ID != id {
			out = append(out, entry)
		}
	}
	return out
}

func withoutSkill(in []domain.Skill, id string) []domain.Skill {
	out := in[:0:0]
	for _, skill := range in {
		if skill.ID != id {
			out = append(out, skill)
		}
	}
	return out
}

// ruleView exposes the pending-applied profile to rules.
type ruleView struct {
	spec domain.ProfileSpecification
}

func newRuleView(record domain.ProfileRecord) ruleView {
	return ruleView{spec: applyChanges(record)}
}

func (v ruleView) Header() domain.ProfileHeader { return v.spec.ProfileHeader }

func (v ruleView) FindProject(id string) (domain.ProjectExperienceTransport, bool) {
	for _, entry := range v.spec.ProjectExperience {
		if entry.ID == id {
			return entry, true
		}
	}
	return domain.ProjectExperienceTransport{}, false
}

func (v ruleView) FindSkill(id string) (domain.Skill, bool) {
	for _, skill := range v.spec.Skills {
		if skill.ID == id {
			return skill, true
		}
	}
	return domain.Skill{}, false
}
