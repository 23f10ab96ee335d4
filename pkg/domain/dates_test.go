package domain

import (
	"testing"
	"time"
)

func TestFormatViewDateAddsOneToDay(t *testing.T) {
	// 2021-01-01T00:00:00Z
	if got := FormatViewDate(1609459200, nil); got != "2021-1-2" {
		t.Fatalf("expected 2021-1-2, got %s", got)
	}
}

func TestFormatViewDateDoesNotRollOver(t *testing.T) {
	jan31 := time.Date(2021, time.January, 31, 12, 0, 0, 0, time.UTC).Unix()
	if got := FormatViewDate(jan31, time.UTC); got != "2021-1-32" {
		t.Fatalf("expected day to overflow without rollover, got %s", got)
	}
}

func TestFormatViewDateHonoursLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// Midnight UTC is still the previous day five hours west.
	if got := FormatViewDate(1609459200, loc); got != "2020-12-32" {
		t.Fatalf("unexpected date in fixed zone: %s", got)
	}
}

func TestToEntryCopiesFields(t *testing.T) {
	tr := ProjectExperienceTransport{
		ID:               "p-1",
		StartDate:        1609459200,
		EndDate:          1612137600, // 2021-02-01
		ProjectStartDate: 1609459200,
		ProjectEndDate:   1612137600,
		ConsultingLevel:  "L2",
		Description:      "migration",
		ProjectName:      "Atlas",
		Industry:         "Banking",
		ClientName:       "ACME",
		ClientAddress:    "Main St 1",
		ItemState:        TagAdded,
	}
	entry := ToEntry(tr, time.UTC)
	if entry.ID != "p-1" || entry.ItemState != TagAdded {
		t.Fatalf("identity fields not copied: %+v", entry)
	}
	if entry.StartDate != "2021-1-2" || entry.EndDate != "2021-2-2" {
		t.Fatalf("unexpected engagement window %s..%s", entry.StartDate, entry.EndDate)
	}
	if entry.ProjectStartDate != "2021-1-2" || entry.ProjectEndDate != "2021-2-2" {
		t.Fatalf("unexpected project window %s..%s", entry.ProjectStartDate, entry.ProjectEndDate)
	}
	if entry.ClientName != "ACME" || entry.ClientAddress != "Main St 1" || entry.Industry != "Banking" {
		t.Fatalf("client fields not copied: %+v", entry)
	}
}
