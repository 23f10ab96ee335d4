package session

import "profilereview/pkg/domain"

// AreaCount is the number of visible skills in one area.
type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// GroupByArea counts skills per area. Areas appear in the order they are first
// seen; no further sorting is applied.
func GroupByArea(skills []domain.Skill) []AreaCount {
	out := make([]AreaCount, 0)
	index := make(map[string]int)
	for _, skill := range skills {
		if i, ok := index[skill.Area]; ok {
			out[i].Count++
			continue
		}
		index[skill.Area] = len(out)
		out = append(out, AreaCount{Area: skill.Area, Count: 1})
	}
	return out
}
