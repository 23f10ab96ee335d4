package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"profilereview/internal/session"
)

var barStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

// renderAreaChart draws one horizontal bar per skill area, scaled so the
// largest area fills width cells.
func renderAreaChart(areas []session.AreaCount, width int) string {
	if len(areas) == 0 {
		return dimStyle.Render("no skills")
	}
	labelWidth, maxCount := 0, 0
	for _, a := range areas {
		labelWidth = max(labelWidth, lipgloss.Width(a.Area))
		maxCount = max(maxCount, a.Count)
	}
	barWidth := width - labelWidth - 6
	if barWidth < 1 {
		barWidth = 1
	}
	var b strings.Builder
	for i, a := range areas {
		n := a.Count * barWidth / maxCount
		if n == 0 {
			n = 1
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-*s %s %d", labelWidth, a.Area, barStyle.Render(strings.Repeat("█", n)), a.Count)
	}
	return b.String()
}
