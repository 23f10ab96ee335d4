package domain

import (
	"context"
	"fmt"
	"time"
)

// ProfileRecord is the backend's stored state for one profile: the committed
// baseline, the pending change log awaiting approval, and provisional entities
// created by immediate-echo adds that no submitted record references yet.
type ProfileRecord struct {
	Email               string                                `json:"email"`
	Baseline            ProfileSpecification                  `json:"baseline"`
	Pending             []ChangeRecord                        `json:"pending"`
	ProvisionalProjects map[string]ProjectExperienceTransport `json:"provisionalProjects"`
	ProvisionalSkills   map[string]Skill                      `json:"provisionalSkills"`
	UpdatedAt           time.Time                             `json:"updatedAt"`
}

// Clone returns a deep copy of the record.
func (r ProfileRecord) Clone() ProfileRecord {
	cp := r
	cp.Baseline = r.Baseline.Clone()
	cp.Pending = append([]ChangeRecord(nil), r.Pending...)
	cp.ProvisionalProjects = make(map[string]ProjectExperienceTransport, len(r.ProvisionalProjects))
	for k, v := range r.ProvisionalProjects {
		cp.ProvisionalProjects[k] = v
	}
	cp.ProvisionalSkills = make(map[string]Skill, len(r.ProvisionalSkills))
	for k, v := range r.ProvisionalSkills {
		cp.ProvisionalSkills[k] = v
	}
	return cp
}

// Transaction exposes the profile operations a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	GetProfile(email string) (ProfileRecord, bool)
	PutProfile(record ProfileRecord) (ProfileRecord, error)
	DeleteProfile(email string) error
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	GetProfile(email string) (ProfileRecord, bool)
	ListProfiles() []ProfileRecord
}

// PersistentStore is a minimal abstraction over durable backends.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) error
	View(ctx context.Context, fn func(TransactionView) error) error
	GetProfile(email string) (ProfileRecord, bool)
	ListProfiles() []ProfileRecord
}

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}
