// Package domain defines the profile entities, lifecycle tags, change records,
// and rule evaluation primitives shared by the review session and the profile
// backend.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// LifecycleTag marks whether an entity or field is committed, staged in the
// current session, or awaiting approval from a previous session.
type LifecycleTag string

// Lifecycle tags reported by the backend and produced by session folding.
const (
	// TagPersisted marks committed, unchanged data.
	TagPersisted LifecycleTag = "PERSISTED"
	// TagAdded marks a new entity that is not yet committed.
	TagAdded LifecycleTag = "ADDED"
	// TagUpdated marks an existing entity modified but not yet committed.
	TagUpdated LifecycleTag = "UPDATED"
	// TagPatched marks an entity added inside the current session whose id
	// was echoed back by the server.
	TagPatched LifecycleTag = "PATCHED"
	// TagDeleted marks an entity scheduled for removal.
	TagDeleted LifecycleTag = "DELETED"
)

// legacyTagOrdinals preserves the numeric encoding used by older clients.
var legacyTagOrdinals = []LifecycleTag{TagDeleted, TagAdded, TagUpdated, TagPersisted, TagPatched}

var tagAliases = map[string]LifecycleTag{
	"PERSISTED": TagPersisted,
	"ADDED":     TagAdded,
	"ADD":       TagAdded,
	"UPDATED":   TagUpdated,
	"UPDATE":    TagUpdated,
	"PATCHED":   TagPatched,
	"PATCH":     TagPatched,
	"DELETED":   TagDeleted,
	"DELETE":    TagDeleted,
}

// ParseLifecycleTag resolves a tag from its name, verb alias, or legacy ordinal.
func ParseLifecycleTag(value string) (LifecycleTag, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if tag, ok := tagAliases[trimmed]; ok {
		return tag, nil
	}
	if n, err := strconv.Atoi(trimmed); err == nil && n >= 0 && n < len(legacyTagOrdinals) {
		return legacyTagOrdinals[n], nil
	}
	return "", fmt.Errorf("unknown lifecycle tag %q", value)
}

// Valid reports whether the tag is one of the canonical values.
func (t LifecycleTag) Valid() bool {
	switch t {
	case TagPersisted, TagAdded, TagUpdated, TagPatched, TagDeleted:
		return true
	}
	return false
}

// Pending reports whether the tag describes data that is not yet committed.
func (t LifecycleTag) Pending() bool {
	return t.Valid() && t != TagPersisted
}

// UnmarshalJSON accepts string names, verb aliases, and legacy numeric ordinals.
func (t *LifecycleTag) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var n int
		if numErr := json.Unmarshal(data, &n); numErr != nil {
			return fmt.Errorf("decode lifecycle tag: %w", err)
		}
		raw = strconv.Itoa(n)
	}
	if raw == "" {
		*t = ""
		return nil
	}
	tag, err := ParseLifecycleTag(raw)
	if err != nil {
		return err
	}
	*t = tag
	return nil
}

// Field names the scalar profile header fields tracked in metadata.
type Field string

// Scalar header fields.
const (
	FieldFirstName       Field = "FIRST_NAME"
	FieldLastName        Field = "LAST_NAME"
	FieldConsultingLevel Field = "CONSULTING_LEVEL"
	FieldRegion          Field = "REGION"
)

// ScalarFields lists the header fields in display order.
var ScalarFields = []Field{FieldFirstName, FieldLastName, FieldConsultingLevel, FieldRegion}

// Metadata maps a scalar field to the lifecycle tag reported by the server.
type Metadata map[Field]LifecycleTag

// Tag returns the tag for field, defaulting to TagPersisted.
func (m Metadata) Tag(field Field) LifecycleTag {
	if tag, ok := m[field]; ok && tag != "" {
		return tag
	}
	return TagPersisted
}

// Clone returns an independent copy of the metadata map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return Metadata{}
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ProjectExperienceTransport is the wire form of a project-experience entry.
// Dates are seconds since the Unix epoch.
type ProjectExperienceTransport struct {
	ID               string       `json:"id"`
	StartDate        int64        `json:"startDate"`
	EndDate          int64        `json:"endDate"`
	ConsultingLevel  string       `json:"consultingLevel"`
	Description      string       `json:"description"`
	ProjectStartDate int64        `json:"projectStartDate"`
	ProjectEndDate   int64        `json:"projectEndDate"`
	ProjectName      string       `json:"projectName"`
	Industry         string       `json:"industry"`
	ClientName       string       `json:"clientName"`
	ClientAddress    string       `json:"clientAddress"`
	ItemState        LifecycleTag `json:"itemState"`
}

// ProjectExperienceEntry is the display form of a project-experience entry.
type ProjectExperienceEntry struct {
	ID               string       `json:"id"`
	StartDate        string       `json:"startDate"`
	EndDate          string       `json:"endDate"`
	ConsultingLevel  string       `json:"consultingLevel"`
	Description      string       `json:"description"`
	ProjectStartDate string       `json:"projectStartDate"`
	ProjectEndDate   string       `json:"projectEndDate"`
	ProjectName      string       `json:"projectName"`
	Industry         string       `json:"industry"`
	ClientName       string       `json:"clientName"`
	ClientAddress    string       `json:"clientAddress"`
	ItemState        LifecycleTag `json:"itemState"`
}

// Skill is a named capability grouped by area.
type Skill struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Area      string       `json:"area"`
	ItemState LifecycleTag `json:"itemState"`
}

// ProfileHeader carries the scalar identity fields of a profile.
type ProfileHeader struct {
	Email           string   `json:"email"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Region          string   `json:"region"`
	ConsultingLevel string   `json:"consultingLevel"`
	Metadata        Metadata `json:"metadata"`
}

// Value returns the current value of a scalar field.
func (h ProfileHeader) Value(field Field) string {
	switch field {
	case FieldFirstName:
		return h.FirstName
	case FieldLastName:
		return h.LastName
	case FieldConsultingLevel:
		return h.ConsultingLevel
	case FieldRegion:
		return h.Region
	}
	return ""
}

// Set overwrites a scalar field. Unknown fields are ignored.
func (h *ProfileHeader) Set(field Field, value string) {
	switch field {
	case FieldFirstName:
		h.FirstName = value
	case FieldLastName:
		h.LastName = value
	case FieldConsultingLevel:
		h.ConsultingLevel = value
	case FieldRegion:
		h.Region = value
	}
}

// ProfileSpecification is the full profile as reported by the backend.
type ProfileSpecification struct {
	ProfileHeader
	ProjectExperience []ProjectExperienceTransport `json:"projectExperience"`
	Skills            []Skill                      `json:"skills"`
}

// Clone returns a deep copy of the specification.
func (s ProfileSpecification) Clone() ProfileSpecification {
	cp := s
	cp.Metadata = s.Metadata.Clone()
	cp.ProjectExperience = append([]ProjectExperienceTransport(nil), s.ProjectExperience...)
	cp.Skills = append([]Skill(nil), s.Skills...)
	return cp
}
