package session

import "profilereview/pkg/domain"

// View is a read-only projection of the session for display. It holds nothing
// that cannot be recomputed from the baseline and the change log.
type View struct {
	State    State                           `json:"state"`
	EditMode bool                            `json:"editMode"`
	DiffMode bool                            `json:"diffMode"`
	Header   domain.ProfileHeader            `json:"header"`
	Projects []domain.ProjectExperienceEntry `json:"projects"`
	Skills   []domain.Skill                  `json:"skills"`
	Areas    []AreaCount                     `json:"areas"`
	Local    map[domain.Field]bool           `json:"locallyModified"`
	Pending  int                             `json:"pendingChanges"`
}

// LocallyModified reports whether field was changed in the current session.
func (v View) LocallyModified(field domain.Field) bool {
	return v.Local[field]
}

// Modified reports whether field differs from the committed value, either from
// this session or from a pending change reported by the server.
func (v View) Modified(field domain.Field) bool {
	return v.Local[field] || v.Header.Metadata.Tag(field).Pending()
}
