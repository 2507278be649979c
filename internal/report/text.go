package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	epochStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// column widths of the per-epoch op table
var widths = []int{24, 8, 4, 10, 6, 26}

func row(cells ...string) string {
	var b strings.Builder
	b.WriteString("  ")
	for i, cell := range cells {
		fmt.Fprintf(&b, "%-*s ", widths[i]-1, cell)
	}
	return strings.TrimRight(b.String(), " ")
}

func renderText(r *Report) string {
	lines := []string{
		titleStyle.Render("Balancing report") + " " + mutedStyle.Render("run "+r.RunID),
		fmt.Sprintf("policy %s, capacity %d cores, %d epochs, %d total cycles",
			r.Policy, r.Capacity, len(r.Epochs), r.TotalCycles),
	}
	for _, e := range r.Epochs {
		lines = append(lines,
			epochStyle.Render(fmt.Sprintf("Epoch %d", e.Index))+
				mutedStyle.Render(fmt.Sprintf("  footprint %d/%d  cycles %d  ribbon %d", e.Footprint, r.Capacity, e.Cycles, e.RibbonSize)),
			headerStyle.Render(row("NODE", "GRID", "T", "CYCLES", "CORE", "CLASSES")),
		)
		for _, op := range e.Ops {
			lines = append(lines, row(
				op.Node,
				fmt.Sprintf("%dx%d", op.GridR, op.GridC),
				fmt.Sprint(op.T),
				fmt.Sprint(op.Cycles),
				fmt.Sprint(op.FirstCore),
				op.Classes,
			))
		}
	}
	return strings.Join(lines, "\n") + "\n"
}
