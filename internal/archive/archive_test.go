package archive_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"profilereview/internal/archive"
	"profilereview/internal/infra/blob/memory"
	"profilereview/pkg/domain"
)

func TestRecordAndHistory(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := archive.New(memory.New(), func() time.Time { return ts })
	ctx := context.Background()

	records := []domain.ChangeRecord{
		domain.NewDeleteProject("p1"),
		domain.NewScalarUpdate(domain.FieldRegion, "Cluj"),
	}
	first, err := a.Record(ctx, "Ana@Example.com", archive.ActionSubmit, records)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.HasPrefix(first.Key, "changelogs/ana@example.com/20240501T120000") {
		t.Fatalf("unexpected key %s", first.Key)
	}

	// Same instant: the key is suffixed instead of overwritten.
	second, err := a.Record(ctx, "ana@example.com", archive.ActionSubmit, nil)
	if err != nil {
		t.Fatalf("record second: %v", err)
	}
	if second.Key == first.Key {
		t.Fatalf("expected distinct keys")
	}

	history, err := a.History(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if len(history[0].Records) != 2 || history[0].Records[1].Resource() != domain.ResourceRegion {
		t.Fatalf("records not round-tripped: %+v", history[0].Records)
	}
	if history[1].Records == nil || len(history[1].Records) != 0 {
		t.Fatalf("empty submission should archive an empty list")
	}
	if history[0].URL != "" {
		t.Fatalf("memory store cannot presign")
	}
	if a.Driver() != archive.DriverMemory {
		t.Fatalf("unexpected driver %s", a.Driver())
	}
}

func TestHistoryKeepsInsertionOrderWithinOneInstant(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := memory.New()
	a := archive.New(store, func() time.Time { return ts })
	ctx := context.Background()

	// A stray blob already holds the first sequence slot of this instant.
	stray := "changelogs/ana@example.com/20240501T120000.000000000Z-0000-accept.json"
	if _, err := store.Put(ctx, stray, strings.NewReader(`{"action":"accept","records":[]}`), archive.PutOptions{}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	for _, action := range []archive.Action{archive.ActionSubmit, archive.ActionSubmit, archive.ActionAccept} {
		if _, err := a.Record(ctx, "ana@example.com", action, nil); err != nil {
			t.Fatalf("record %s: %v", action, err)
		}
	}

	history, err := a.History(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []archive.Action{archive.ActionAccept, archive.ActionSubmit, archive.ActionSubmit, archive.ActionAccept}
	if len(history) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(history))
	}
	for i, entry := range history {
		if entry.Action != want[i] {
			t.Fatalf("entry %d: got %s (%s), want %s", i, entry.Action, entry.Key, want[i])
		}
	}
	if !strings.HasSuffix(history[3].Key, "-0003-accept.json") {
		t.Fatalf("unexpected key %s", history[3].Key)
	}
}

type failingStore struct{ archive.Store }

func (failingStore) Put(context.Context, string, io.Reader, archive.PutOptions) (archive.Info, error) {
	return archive.Info{}, errors.New("disk full")
}

func TestRecordPropagatesStoreErrors(t *testing.T) {
	a := archive.New(failingStore{memory.New()}, nil)
	if _, err := a.Record(context.Background(), "x@y.z", archive.ActionAccept, nil); err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected store error, got %v", err)
	}
}
