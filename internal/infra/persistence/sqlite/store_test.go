package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"profilereview/pkg/domain"
)

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "profiles.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("unexpected path %s", store.Path())
	}
	err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.PutProfile(domain.ProfileRecord{
			Email:    "ana@example.com",
			Baseline: domain.ProfileSpecification{ProfileHeader: domain.ProfileHeader{FirstName: "Ana"}},
			Pending:  []domain.ChangeRecord{domain.NewDeleteSkill("s1")},
		})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, ok := reopened.GetProfile("ana@example.com")
	if !ok {
		t.Fatalf("expected profile hydrated from sqlite")
	}
	if got.Baseline.FirstName != "Ana" || len(got.Pending) != 1 {
		t.Fatalf("unexpected hydrated record: %+v", got)
	}
	if got.Pending[0].EntityID() != "s1" {
		t.Fatalf("expected pending delete of s1, got %+v", got.Pending[0])
	}
}

func TestFailedTransactionIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profiles.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	boom := errors.New("boom")
	err = store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.PutProfile(domain.ProfileRecord{Email: "ana@example.com"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no snapshot rows, got %d", count)
	}
	_ = store.Close()
}
