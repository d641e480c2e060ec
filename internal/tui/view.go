package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"apptcal/internal/appointment"
	"apptcal/internal/calendar"
)

const cellWidth = 5

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	weekdayStyle = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center).Foreground(lipgloss.Color("245"))
	dayStyle     = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	bookedStyle  = dayStyle.Foreground(lipgloss.Color("39")).Bold(true)
	cursorStyle  = dayStyle.Reverse(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Width(38)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func (m *Model) View() string {
	snap := m.store.Snapshot()

	grid, err := snap.Grid()
	if err != nil {
		return "error: " + err.Error() + "\n"
	}

	body := m.renderGrid(snap, grid)
	if panel := m.renderPanel(snap); panel != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", panel)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("‹ " + snap.Visible.String() + " ›"))
	b.WriteString("\n\n")
	b.WriteString(body)
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help(snap.Panel)))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderGrid(snap appointment.Snapshot, grid calendar.Grid) string {
	var rows []string

	var head []string
	for _, wd := range calendar.Weekdays {
		head = append(head, weekdayStyle.Render(wd))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, head...))

	for _, row := range grid.Rows {
		cells := make([]string, 0, calendar.DaysPerWeek)
		for _, c := range row {
			cells = append(cells, m.renderCell(snap, c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCell(snap appointment.Snapshot, c calendar.Cell) string {
	if c.Blank() {
		return dayStyle.Render("")
	}
	label := fmt.Sprintf("%d", c.Day)
	_, booked := snap.Lookup(c.Key)
	if booked {
		label += "•"
	}
	switch {
	case c.Day == m.cursor:
		return cursorStyle.Render(label)
	case booked:
		return bookedStyle.Render(label)
	default:
		return dayStyle.Render(label)
	}
}

func (m *Model) renderPanel(snap appointment.Snapshot) string {
	day := ""
	if t, err := snap.Draft.ID.Time(m.store.Location()); err == nil {
		day = t.Format("Mon, Jan 2 2006")
	}

	var b strings.Builder
	switch snap.Panel {
	case appointment.PanelCreating, appointment.PanelEditing:
		heading := "New appointment"
		if snap.Panel == appointment.PanelEditing {
			heading = "Edit appointment"
		}
		b.WriteString(titleStyle.Render(heading) + "\n")
		b.WriteString(mutedStyle.Render(day) + "\n\n")
		b.WriteString(m.title.View() + "\n\n")
		b.WriteString(m.desc.View())
	case appointment.PanelViewing:
		b.WriteString(titleStyle.Render(snap.Draft.Title) + "\n")
		b.WriteString(mutedStyle.Render(day) + "\n")
		if snap.Draft.Description != "" {
			b.WriteString("\n" + snap.Draft.Description)
		}
	default:
		return ""
	}
	return panelStyle.Render(b.String())
}

func (m *Model) help(p appointment.Panel) string {
	switch {
	case m.confirming:
		return "y delete • n keep"
	case p == appointment.PanelCreating || p == appointment.PanelEditing:
		return "tab switch field • ctrl+s save • esc cancel"
	case p == appointment.PanelViewing:
		return "e edit • d delete • esc close • u undo"
	default:
		return "←↓↑→/hjkl move • [ ] month • enter new • v view • u undo • q quit"
	}
}
