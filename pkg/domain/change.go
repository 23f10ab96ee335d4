package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ChangeType is the kind of mutation a change record describes.
type ChangeType string

// Supported change types.
const (
	ChangeAdd    ChangeType = "ADD"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Resource names the entity class a change record mutates.
type Resource string

// Resources accepted in change records. Scalar resources share their names
// with the header fields they update.
const (
	ResourceProject         Resource = "PROJECT"
	ResourceSkill           Resource = "SKILL"
	ResourceFirstName       Resource = Resource(FieldFirstName)
	ResourceLastName        Resource = Resource(FieldLastName)
	ResourceConsultingLevel Resource = Resource(FieldConsultingLevel)
	ResourceRegion          Resource = Resource(FieldRegion)
)

// Scalar reports whether the resource is a header field.
func (r Resource) Scalar() bool {
	switch r {
	case ResourceFirstName, ResourceLastName, ResourceConsultingLevel, ResourceRegion:
		return true
	}
	return false
}

// ErrInvalidChange is returned when a record's change type and args disagree.
var ErrInvalidChange = errors.New("invalid change record")

// ChangeArgs is the resource-specific payload of a change record. Each
// implementation carries exactly the fields its resource requires.
type ChangeArgs interface {
	Resource() Resource
	changeArgs()
}

// AddProjectArgs creates a project-experience entry. Dates are epoch seconds.
type AddProjectArgs struct {
	NewID             string `json:"newId"`
	ConsultingLevelID string `json:"consultingLevelId"`
	Description       string `json:"description"`
	StartDate         int64  `json:"startDate"`
	EndDate           int64  `json:"endDate"`
	ProjectID         string `json:"projectId"`
}

// DeleteProjectArgs removes a project-experience entry.
type DeleteProjectArgs struct {
	ID string `json:"id"`
}

// AddSkillArgs creates a skill.
type AddSkillArgs struct {
	NewID string `json:"newId"`
	Name  string `json:"name"`
	Area  string `json:"area"`
}

// DeleteSkillArgs removes a skill.
type DeleteSkillArgs struct {
	ID string `json:"id"`
}

// FirstNameArgs updates the first name.
type FirstNameArgs struct {
	FirstName string `json:"firstName"`
}

// LastNameArgs updates the last name.
type LastNameArgs struct {
	LastName string `json:"lastName"`
}

// ConsultingLevelArgs updates the consulting level.
type ConsultingLevelArgs struct {
	ConsultingLevel string `json:"consultingLevel"`
}

// RegionArgs updates the region.
type RegionArgs struct {
	Region string `json:"region"`
}

func (AddProjectArgs) Resource() Resource      { return ResourceProject }
func (DeleteProjectArgs) Resource() Resource   { return ResourceProject }
func (AddSkillArgs) Resource() Resource        { return ResourceSkill }
func (DeleteSkillArgs) Resource() Resource     { return ResourceSkill }
func (FirstNameArgs) Resource() Resource       { return ResourceFirstName }
func (LastNameArgs) Resource() Resource        { return ResourceLastName }
func (ConsultingLevelArgs) Resource() Resource { return ResourceConsultingLevel }
func (RegionArgs) Resource() Resource          { return ResourceRegion }

func (AddProjectArgs) changeArgs()      {}
func (DeleteProjectArgs) changeArgs()   {}
func (AddSkillArgs) changeArgs()        {}
func (DeleteSkillArgs) changeArgs()     {}
func (FirstNameArgs) changeArgs()       {}
func (LastNameArgs) changeArgs()        {}
func (ConsultingLevelArgs) changeArgs() {}
func (RegionArgs) changeArgs()          {}

// ChangeRecord is one atomic unit of operator intent.
type ChangeRecord struct {
	Type ChangeType
	Args ChangeArgs
}

// NewAddProject builds an ADD PROJECT record.
func NewAddProject(args AddProjectArgs) ChangeRecord {
	return ChangeRecord{Type: ChangeAdd, Args: args}
}

// NewDeleteProject builds a DELETE PROJECT record.
func NewDeleteProject(id string) ChangeRecord {
	return ChangeRecord{Type: ChangeDelete, Args: DeleteProjectArgs{ID: id}}
}

// NewAddSkill builds an ADD SKILL record.
func NewAddSkill(args AddSkillArgs) ChangeRecord {
	return ChangeRecord{Type: ChangeAdd, Args: args}
}

// NewDeleteSkill builds a DELETE SKILL record.
func NewDeleteSkill(id string) ChangeRecord {
	return ChangeRecord{Type: ChangeDelete, Args: DeleteSkillArgs{ID: id}}
}

// NewScalarUpdate builds an UPDATE record for a header field. Unknown fields
// yield a record that fails Validate.
func NewScalarUpdate(field Field, value string) ChangeRecord {
	var args ChangeArgs
	switch field {
	case FieldFirstName:
		args = FirstNameArgs{FirstName: value}
	case FieldLastName:
		args = LastNameArgs{LastName: value}
	case FieldConsultingLevel:
		args = ConsultingLevelArgs{ConsultingLevel: value}
	case FieldRegion:
		args = RegionArgs{Region: value}
	}
	return ChangeRecord{Type: ChangeUpdate, Args: args}
}

// Resource returns the resource targeted by the record.
func (r ChangeRecord) Resource() Resource {
	if r.Args == nil {
		return ""
	}
	return r.Args.Resource()
}

// EntityID returns the id of the project or skill the record refers to. Scalar
// updates have no entity id.
func (r ChangeRecord) EntityID() string {
	switch a := r.Args.(type) {
	case AddProjectArgs:
		return a.NewID
	case DeleteProjectArgs:
		return a.ID
	case AddSkillArgs:
		return a.NewID
	case DeleteSkillArgs:
		return a.ID
	}
	return ""
}

// ScalarValue returns the header field and new value carried by an UPDATE
// record. ok is false for non-scalar records.
func (r ChangeRecord) ScalarValue() (field Field, value string, ok bool) {
	switch a := r.Args.(type) {
	case FirstNameArgs:
		return FieldFirstName, a.FirstName, true
	case LastNameArgs:
		return FieldLastName, a.LastName, true
	case ConsultingLevelArgs:
		return FieldConsultingLevel, a.ConsultingLevel, true
	case RegionArgs:
		return FieldRegion, a.Region, true
	}
	return "", "", false
}

// Validate checks that the change type matches the args variant.
func (r ChangeRecord) Validate() error {
	switch r.Args.(type) {
	case AddProjectArgs, AddSkillArgs:
		if r.Type == ChangeAdd {
			return nil
		}
	case DeleteProjectArgs, DeleteSkillArgs:
		if r.Type == ChangeDelete {
			return nil
		}
	case FirstNameArgs, LastNameArgs, ConsultingLevelArgs, RegionArgs:
		if r.Type == ChangeUpdate {
			return nil
		}
	case nil:
		return fmt.Errorf("%w: missing args", ErrInvalidChange)
	}
	return fmt.Errorf("%w: %s not supported for %s", ErrInvalidChange, r.Type, r.Resource())
}

type wireChangeRecord struct {
	ChangeType ChangeType      `json:"changeType"`
	Resource   Resource        `json:"resource"`
	Args       json.RawMessage `json:"args"`
}

// MarshalJSON encodes the record as {changeType, resource, args}.
func (r ChangeRecord) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	args, err := json.Marshal(r.Args)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireChangeRecord{ChangeType: r.Type, Resource: r.Resource(), Args: args})
}

// UnmarshalJSON decodes the wire shape into the matching args variant.
func (r *ChangeRecord) UnmarshalJSON(data []byte) error {
	var wire wireChangeRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	args, err := decodeArgs(wire.ChangeType, wire.Resource, wire.Args)
	if err != nil {
		return err
	}
	decoded := ChangeRecord{Type: wire.ChangeType, Args: args}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*r = decoded
	return nil
}

func decodeArgs(changeType ChangeType, resource Resource, raw json.RawMessage) (ChangeArgs, error) {
	switch {
	case resource == ResourceProject && changeType == ChangeAdd:
		return decodeVariant[AddProjectArgs](raw)
	case resource == ResourceProject && changeType == ChangeDelete:
		return decodeVariant[DeleteProjectArgs](raw)
	case resource == ResourceSkill && changeType == ChangeAdd:
		return decodeVariant[AddSkillArgs](raw)
	case resource == ResourceSkill && changeType == ChangeDelete:
		return decodeVariant[DeleteSkillArgs](raw)
	case resource == ResourceFirstName:
		return decodeVariant[FirstNameArgs](raw)
	case resource == ResourceLastName:
		return decodeVariant[LastNameArgs](raw)
	case resource == ResourceConsultingLevel:
		return decodeVariant[ConsultingLevelArgs](raw)
	case resource == ResourceRegion:
		return decodeVariant[RegionArgs](raw)
	}
	return nil, fmt.Errorf("%w: %s not supported for %q", ErrInvalidChange, changeType, resource)
}

func decodeVariant[T ChangeArgs](raw json.RawMessage) (ChangeArgs, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %T args: %w", v, err)
	}
	return v, nil
}
