// Package tui is a terminal front end for the appointment store.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"apptcal/internal/appointment"
	"apptcal/internal/calendar"
	appLog "apptcal/internal/log"
)

const (
	statusDuplicate     = "An appointment already exists on this day."
	statusTitleRequired = "A title is required."
	statusNoAppointment = "No appointment on this day."
	statusNothingToUndo = "Nothing to undo."
	statusDeleted       = "Appointment deleted."
	deleteQuestion      = "Delete this appointment? (y/n)"
)

type focusField int

const (
	focusTitle focusField = iota
	focusDescription
)

// Model is the bubbletea model. It owns the store for the lifetime of the
// program; bubbletea calls Update from a single goroutine.
type Model struct {
	store *appointment.Store

	// cursor is the highlighted day of the visible month, 1-based.
	cursor int

	title      textinput.Model
	desc       textarea.Model
	focus      focusField
	confirming bool

	status string
	width  int
	height int
}

// New returns a Model over store with the cursor on today when today is
// in the visible month, else on the 1st.
func New(store *appointment.Store) *Model {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = 120
	ti.Width = 32

	ta := textarea.New()
	ta.Placeholder = "Description"
	ta.ShowLineNumbers = false
	ta.SetWidth(34)
	ta.SetHeight(5)

	m := &Model{store: store, cursor: 1, title: ti, desc: ta}
	now := time.Now().In(store.Location())
	if calendar.CalendarDateOf(now) == store.Snapshot().Visible {
		m.cursor = now.Day()
	}
	return m
}

// Run starts the program in the alternate screen and blocks until the user
// quits or ctx is cancelled.
func Run(ctx context.Context, store *appointment.Store) error {
	p := tea.NewProgram(New(store), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirming {
			return m.handleConfirm(msg)
		}
		switch m.store.Snapshot().Panel {
		case appointment.PanelCreating, appointment.PanelEditing:
			return m.handleForm(msg)
		default:
			return m.handleGrid(msg)
		}
	}
	return m, nil
}

// handleGrid covers the month view and the detail panel.
func (m *Model) handleGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveCursor(-1)
	case "right", "l":
		m.moveCursor(1)
	case "up", "k":
		m.moveCursor(-calendar.DaysPerWeek)
	case "down", "j":
		m.moveCursor(calendar.DaysPerWeek)
	case "[", "p":
		m.changeMonth(m.store.PrevMonth)
	case "]", "n":
		m.changeMonth(m.store.NextMonth)
	case "enter":
		if err := m.store.SelectEmptyDay(m.cursorKey()); err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, m.loadForm()
	case "v":
		if !m.store.SelectAppointment(m.cursorKey()) {
			m.status = statusNoAppointment
		}
	case "e":
		if m.store.Snapshot().Panel == appointment.PanelViewing {
			m.store.RequestEdit()
			return m, m.loadForm()
		}
	case "d":
		if m.store.Snapshot().Panel == appointment.PanelViewing {
			m.confirming = true
			m.status = deleteQuestion
		}
	case "esc":
		m.store.Cancel()
	case "u":
		return m, m.undo()
	}
	return m, nil
}

// handleForm covers the create and edit forms.
func (m *Model) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.status = ""
		m.store.Cancel()
		m.blurInputs()
		return m, nil
	case "tab", "shift+tab":
		return m, m.toggleFocus()
	case "ctrl+s":
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusTitle {
		m.title, cmd = m.title.Update(msg)
	} else {
		m.desc, cmd = m.desc.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var answer appointment.Answer
	switch strings.ToLower(msg.String()) {
	case "y":
		answer = true
	case "n", "esc":
		answer = false
	default:
		return m, nil
	}
	m.confirming = false
	key := m.store.Snapshot().Draft.ID
	m.store.RequestDelete(answer)
	m.blurInputs()
	m.status = ""
	if _, still := m.store.Lookup(key); bool(answer) && !still {
		m.status = statusDeleted
	}
	return m, nil
}

// submit copies the inputs into the draft and submits it.
func (m *Model) submit() {
	if err := m.store.EditField(appointment.FieldTitle, m.title.Value()); err != nil {
		m.status = err.Error()
		return
	}
	if err := m.store.EditField(appointment.FieldDescription, m.desc.Value()); err != nil {
		m.status = err.Error()
		return
	}
	if strings.TrimSpace(m.title.Value()) == "" {
		m.status = statusTitleRequired
		return
	}

	snap := m.store.Snapshot()
	switch snap.Panel {
	case appointment.PanelCreating:
		err := m.store.SubmitCreate()
		switch {
		case errors.Is(err, appointment.ErrDuplicateAppointment):
			m.status = statusDuplicate
			return
		case err != nil:
			m.status = err.Error()
			return
		}
	case appointment.PanelEditing:
		if !m.store.SubmitUpdate() {
			m.status = statusNoAppointment
			return
		}
	}
	m.status = ""
	m.blurInputs()
}

func (m *Model) undo() tea.Cmd {
	if err := m.store.Undo(); err != nil {
		m.status = statusNothingToUndo
		return nil
	}
	m.clampCursor()
	switch m.store.Snapshot().Panel {
	case appointment.PanelCreating, appointment.PanelEditing:
		return m.loadForm()
	}
	m.blurInputs()
	return nil
}

// loadForm fills the inputs from the draft and focuses the title.
func (m *Model) loadForm() tea.Cmd {
	d := m.store.Snapshot().Draft
	m.title.SetValue(d.Title)
	m.title.CursorEnd()
	m.desc.SetValue(d.Description)
	m.focus = focusTitle
	m.desc.Blur()
	return m.title.Focus()
}

func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == focusTitle {
		m.focus = focusDescription
		m.title.Blur()
		return m.desc.Focus()
	}
	m.focus = focusTitle
	m.desc.Blur()
	return m.title.Focus()
}

func (m *Model) blurInputs() {
	m.title.Blur()
	m.desc.Blur()
}

func (m *Model) changeMonth(step func() error) {
	if err := step(); err != nil {
		m.status = err.Error()
		return
	}
	m.clampCursor()
}

// moveCursor moves by delta days, rolling into the adjacent month at
// either end.
func (m *Model) moveCursor(delta int) {
	day := m.cursor + delta
	if day < 1 {
		if err := m.store.PrevMonth(); err != nil {
			appLog.Warn("cursor move rejected", "reason", err.Error())
			return
		}
		day += m.daysInVisible()
	} else if n := m.daysInVisible(); day > n {
		if err := m.store.NextMonth(); err != nil {
			appLog.Warn("cursor move rejected", "reason", err.Error())
			return
		}
		day -= n
	}
	m.cursor = day
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor = max(1, min(m.cursor, m.daysInVisible()))
}

func (m *Model) daysInVisible() int {
	v := m.store.Snapshot().Visible
	return calendar.DaysInMonth(v.Year, v.Month)
}

func (m *Model) cursorKey() calendar.DateKey {
	v := m.store.Snapshot().Visible
	return calendar.FormatDateKey(v.Year, v.Month, m.cursor)
}

// Cursor returns the highlighted day.
func (m *Model) Cursor() int { return m.cursor }

// Status returns the current status line.
func (m *Model) Status() string { return m.status }
