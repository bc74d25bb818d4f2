package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	if len(m.runs) == 0 && m.err == nil {
		sections = append(sections, labelStyle.Render(fmt.Sprintf("No runs recorded in %s", m.config.TrackingURI)))
	} else {
		sections = append(sections, m.renderRunTable())
		if m.selected < len(m.runs) {
			sections = append(sections, m.renderRunDetails())
		}
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("MLTRACK RUNS")

	state := ""
	if m.loading {
		state = "loading..."
	} else if !m.lastUpdated.IsZero() {
		state = fmt.Sprintf("updated %s", m.lastUpdated.Format("15:04:05"))
	}

	help := helpStyle.Render("q:quit r:refresh ↑↓:select")
	rightPart := fmt.Sprintf("%s | %s", state, help)

	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(rightPart) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), helpStyle.Render(rightPart))
}

func (m Model) renderRunTable() string {
	header := fmt.Sprintf("  %-10s %-24s %-10s %-20s %s", "RUN", "NAME", "STATUS", "STARTED", "METRICS")

	rows := []string{tableHeaderStyle.Render(header)}
	for i, run := range m.runs {
		line := fmt.Sprintf("  %-10s %-24s %-10s %-20s %s",
			shortID(run.RunID),
			run.RunName,
			statusStyle(run.Status).Render(run.Status),
			run.StartTime.Format("2006-01-02 15:04:05"),
			formatFloats(run.Metrics),
		)
		if i == m.selected {
			line = selectedRowStyle.Render("›" + line[1:])
		} else {
			line = tableCellStyle.Render(line)
		}
		rows = append(rows, line)
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderRunDetails() string {
	run := m.runs[m.selected]

	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("Parameters") + "\n")

	names := make([]string, 0, len(run.Params))
	for name := range run.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render(name+":"), run.Params[name]))
	}

	return b.String()
}

func (m Model) renderFooter() string {
	return helpStyle.Render(fmt.Sprintf("%d runs | store: %s", len(m.runs), m.config.TrackingURI))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatFloats(metrics map[string]float64) string {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%.3f", name, metrics[name]))
	}
	return strings.Join(parts, " ")
}
