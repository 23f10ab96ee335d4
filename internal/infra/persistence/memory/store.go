// Package memory provides an in-memory implementation of the profile
// persistence store used for tests and ephemeral environments.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"profilereview/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

// ErrMissingEmail is returned when a profile record has no key.
var ErrMissingEmail = errors.New("profile email required")

type memoryState struct {
	profiles map[string]domain.ProfileRecord
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Profiles map[string]domain.ProfileRecord `json:"profiles"`
}

func newMemoryState() memoryState {
	return memoryState{profiles: make(map[string]domain.ProfileRecord)}
}

func (s memoryState) clone() memoryState {
	out := memoryState{profiles: make(map[string]domain.ProfileRecord, len(s.profiles))}
	for k, v := range s.profiles {
		out.profiles[k] = v.Clone()
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{Profiles: state.clone().profiles}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, record := range s.Profiles {
		if record.Email == "" {
			continue
		}
		state.profiles[Key(record.Email)] = record.Clone()
	}
	return state
}

// Key normalises an email into the store key.
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Store is an in-memory implementation of domain.PersistentStore. Every
// transaction works on a clone that replaces the live state only when the
// callback succeeds.
type Store struct {
	mu    sync.RWMutex
	state memoryState
	nowFn func() time.Time
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{state: newMemoryState(), nowFn: time.Now}
}

// SetClock overrides the time source used for UpdatedAt stamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

// ExportState returns a deep copy of the store state.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(snapshot)
}

type transaction struct {
	state memoryState
	now   time.Time
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) domain.TransactionView {
	return transactionView{state: state}
}

func (v transactionView) GetProfile(email string) (domain.ProfileRecord, bool) {
	record, ok := v.state.profiles[Key(email)]
	if !ok {
		return domain.ProfileRecord{}, false
	}
	return record.Clone(), true
}

func (v transactionView) ListProfiles() []domain.ProfileRecord {
	return listProfiles(v.state)
}

func listProfiles(state *memoryState) []domain.ProfileRecord {
	out := make([]domain.ProfileRecord, 0, len(state.profiles))
	for _, record := range state.profiles {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return Key(out[i].Email) < Key(out[j].Email) })
	return out
}

// RunInTransaction executes fn within a transactional snapshot of the store.
func (s *Store) RunInTransaction(_ context.Context, fn func(tx domain.Transaction) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{state: s.state.clone(), now: s.nowFn()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

// GetProfile returns the stored record for email.
func (s *Store) GetProfile(email string) (domain.ProfileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newTransactionView(&s.state).GetProfile(email)
}

// ListProfiles returns every stored record ordered by email.
func (s *Store) ListProfiles() []domain.ProfileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listProfiles(&s.state)
}

func (tx *transaction) Snapshot() domain.TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) GetProfile(email string) (domain.ProfileRecord, bool) {
	return newTransactionView(&tx.state).GetProfile(email)
}

func (tx *transaction) PutProfile(record domain.ProfileRecord) (domain.ProfileRecord, error) {
	key := Key(record.Email)
	if key == "" {
		return domain.ProfileRecord{}, ErrMissingEmail
	}
	record = record.Clone()
	record.UpdatedAt = tx.now.UTC()
	if record.Baseline.Email == "" {
		record.Baseline.Email = record.Email
	}
	tx.state.profiles[key] = record
	return record.Clone(), nil
}

func (tx *transaction) DeleteProfile(email string) error {
	key := Key(email)
	if _, ok := tx.state.profiles[key]; !ok {
		return domain.ErrNotFound{Entity: "profile", ID: email}
	}
	delete(tx.state.profiles, key)
	return nil
}
