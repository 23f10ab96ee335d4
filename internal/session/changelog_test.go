package session

import (
	"testing"

	"profilereview/pkg/domain"
)

func TestChangeLogAppendKeepsOrderAndDuplicates(t *testing.T) {
	var log ChangeLog
	log.Append(domain.NewScalarUpdate(domain.FieldRegion, "Cluj"))
	log.Append(domain.NewDeleteProject("p1"))
	log.Append(domain.NewDeleteProject("p1"))

	records := log.Records()
	if len(records) != 3 || log.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Resource() != domain.ResourceRegion || records[2].EntityID() != "p1" {
		t.Fatalf("records reordered: %+v", records)
	}

	records[0] = domain.NewDeleteSkill("mutated")
	if log.Records()[0].Resource() != domain.ResourceRegion {
		t.Fatalf("Records must return a copy")
	}
}

func TestChangeLogRemoveMatching(t *testing.T) {
	var log ChangeLog
	log.Append(domain.NewAddSkill(domain.AddSkillArgs{NewID: "s1", Name: "Go", Area: "backend"}))
	log.Append(domain.NewScalarUpdate(domain.FieldFirstName, "Ana"))
	log.Append(domain.NewAddSkill(domain.AddSkillArgs{NewID: "s2", Name: "SQL", Area: "data"}))

	if n := log.RemoveMatching(addedIn(domain.ResourceSkill, "s1")); n != 1 {
		t.Fatalf("expected one removal, got %d", n)
	}
	records := log.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 remaining records, got %d", len(records))
	}
	if records[0].Resource() != domain.ResourceFirstName || records[1].EntityID() != "s2" {
		t.Fatalf("unexpected remaining order: %+v", records)
	}
	if n := log.RemoveMatching(addedIn(domain.ResourceProject, "s2")); n != 0 {
		t.Fatalf("resource must be part of the match, removed %d", n)
	}
}

func TestChangeLogClearYieldsEmptyArray(t *testing.T) {
	var log ChangeLog
	log.Append(domain.NewDeleteSkill("s1"))
	log.Clear()
	records := log.Records()
	if records == nil || len(records) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", records)
	}
}
