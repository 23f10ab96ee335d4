package session

import "profilereview/pkg/domain"

// ChangeLog is the ordered record of operator intent for one session. It is
// never reordered or compacted; contradictory records for the same entity are
// resolved at projection time.
type ChangeLog struct {
	records []domain.ChangeRecord
}

// Append adds record to the end of the log.
func (l *ChangeLog) Append(record domain.ChangeRecord) {
	l.records = append(l.records, record)
}

// Clear empties the log.
func (l *ChangeLog) Clear() {
	l.records = nil
}

// RemoveMatching drops every record for which match returns true and reports
// how many were removed. Remaining records keep their relative order.
func (l *ChangeLog) RemoveMatching(match func(domain.ChangeRecord) bool) int {
	kept := l.records[:0]
	removed := 0
	for _, rec := range l.records {
		if match(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	for i := len(kept); i < len(l.records); i++ {
		l.records[i] = domain.ChangeRecord{}
	}
	l.records = kept
	return removed
}

// Records returns a copy of the log in append order. An empty log yields an
// empty, non-nil slice so it encodes as a JSON array.
func (l *ChangeLog) Records() []domain.ChangeRecord {
	out := make([]domain.ChangeRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of records.
func (l *ChangeLog) Len() int {
	return len(l.records)
}

// addedIn matches the ADD record that introduced entity id of the given resource.
func addedIn(resource domain.Resource, id string) func(domain.ChangeRecord) bool {
	return func(rec domain.ChangeRecord) bool {
		return rec.Type == domain.ChangeAdd && rec.Resource() == resource && rec.EntityID() == id
	}
}
