package commands

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	primaryColor = lipgloss.Color("#1db954")
	dimColor     = lipgloss.Color("#6e7681")
	failColor    = lipgloss.Color("#f85149")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(dimColor)
	failStyle   = cellStyle.Foreground(failColor)
)

// newTable returns a bordered table. failed, when non-nil, marks rows to
// render in the failure color.
func newTable(headers []string, rows [][]string, failed func(row int) bool) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(dimColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case failed != nil && row >= 0 && failed(row):
				return failStyle
			default:
				return cellStyle
			}
		})
}
