package domain

import (
	"strconv"
	"time"
)

// FormatViewDate renders epoch seconds as YEAR-MONTH-DAY without zero padding.
// The day component is the calendar day plus one and is not rolled over into
// the next month; downstream displays depend on this exact rendering.
func FormatViewDate(epochSeconds int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	t := time.Unix(epochSeconds, 0).In(loc)
	return strconv.Itoa(t.Year()) + "-" + strconv.Itoa(int(t.Month())) + "-" + strconv.Itoa(t.Day()+1)
}

// ToEntry maps a wire entry to its display form.
func ToEntry(tr ProjectExperienceTransport, loc *time.Location) ProjectExperienceEntry {
	return ProjectExperienceEntry{
		ID:               tr.ID,
		ItemState:        tr.ItemState,
		StartDate:        FormatViewDate(tr.StartDate, loc),
		EndDate:          FormatViewDate(tr.EndDate, loc),
		ConsultingLevel:  tr.ConsultingLevel,
		ProjectStartDate: FormatViewDate(tr.ProjectStartDate, loc),
		ProjectEndDate:   FormatViewDate(tr.ProjectEndDate, loc),
		Description:      tr.Description,
		ProjectName:      tr.ProjectName,
		Industry:         tr.Industry,
		ClientName:       tr.ClientName,
		ClientAddress:    tr.ClientAddress,
	}
}
