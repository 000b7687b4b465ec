package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/noah-isme/logistik-admin-api/internal/attendance"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Center)
	nameStyle    = lipgloss.NewStyle().Padding(0, 1)
	deleteStyle  = cellStyle.Foreground(lipgloss.Color("196")).Strikethrough(true)

	statusColors = map[attendance.Status]lipgloss.Color{
		attendance.StatusPresent: lipgloss.Color("42"),
		attendance.StatusLeave:   lipgloss.Color("39"),
		attendance.StatusSick:    lipgloss.Color("214"),
		attendance.StatusAbsent:  lipgloss.Color("196"),
	}
)

func renderGrid(grid attendance.Grid) string {
	headers := make([]string, 0, len(grid.Columns)+1)
	headers = append(headers, "Nama")
	for _, col := range grid.Columns {
		headers = append(headers, columnHeader(grid.Mode, col))
	}

	rows := make([][]string, 0, len(grid.Rows))
	for _, row := range grid.Rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, row.Employee.Name)
		for _, status := range row.Cells {
			cells = append(cells, status.Short())
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return nameStyle
			}
			if col-1 < len(grid.Columns) && grid.Columns[col-1].Deleting {
				return deleteStyle
			}
			if r := dataRow(row); r >= 0 && r < len(grid.Rows) && col-1 < len(grid.Rows[r].Cells) {
				if color, ok := statusColors[grid.Rows[r].Cells[col-1]]; ok {
					return cellStyle.Foreground(color)
				}
			}
			return cellStyle
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Absensi %s (%s)", grid.Window.Label(), grid.Mode)))
	b.WriteString("\n")
	if len(grid.Rows) == 0 {
		b.WriteString(mutedStyle.Render("belum ada karyawan"))
		return b.String()
	}
	b.WriteString(t.String())
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(legend()))
	return b.String()
}

// dataRow maps a StyleFunc row index onto grid.Rows.
func dataRow(row int) int {
	if table.HeaderRow == 0 {
		return row - 1
	}
	return row
}

func columnHeader(mode attendance.Mode, col attendance.GridColumn) string {
	switch {
	case col.Deleting:
		return col.Label + " (hapus)"
	case mode == attendance.ModeEdit && col.Active:
		return col.Label + " *"
	default:
		return col.Label
	}
}

func legend() string {
	parts := make([]string, 0, len(attendance.Statuses)+1)
	for _, s := range attendance.Statuses {
		parts = append(parts, s.Short()+" = "+s.Label())
	}
	parts = append(parts, attendance.StatusUnset.Short()+" = belum diisi")
	return strings.Join(parts, "  ")
}
