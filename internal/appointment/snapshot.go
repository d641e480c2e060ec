// Package appointment holds the appointment state machine: which month is
// visible, which appointments exist, and which side panel is open.
//
// A Snapshot is an immutable value. Each transition is a method returning
// the next Snapshot; Store wraps that with the injected clock, undo history
// and logging.
package appointment

import (
	"errors"
	"fmt"
	"time"

	"apptcal/internal/calendar"
	"apptcal/internal/model"
)

var (
	// ErrDuplicateAppointment is returned by SubmitCreate and Insert when the
	// day already has an appointment.
	ErrDuplicateAppointment = errors.New("an appointment already exists on this day")

	// ErrUnknownField is returned by EditField for names other than title
	// and description.
	ErrUnknownField = errors.New("appointment: unknown field")

	// ErrNoDraft is returned by SubmitCreate when no day was selected.
	ErrNoDraft = errors.New("appointment: no draft to submit")

	// ErrTitleRequired is returned by Insert for an untitled appointment.
	ErrTitleRequired = errors.New("appointment: title is required")

	// ErrNothingToUndo is returned by Store.Undo on an empty history.
	ErrNothingToUndo = errors.New("appointment: nothing to undo")
)

// Panel is the side panel currently shown. Exactly one is active.
type Panel int

const (
	PanelNone Panel = iota
	PanelCreating
	PanelViewing
	PanelEditing
)

func (p Panel) String() string {
	switch p {
	case PanelNone:
		return "none"
	case PanelCreating:
		return "creating"
	case PanelViewing:
		return "viewing"
	case PanelEditing:
		return "editing"
	default:
		return fmt.Sprintf("panel(%d)", int(p))
	}
}

// MarshalText encodes the panel by name for JSON consumers.
func (p Panel) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Field names a draft field editable through EditField.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// Snapshot is the full application state at one point in time.
type Snapshot struct {
	Visible      calendar.CalendarDate
	Appointments Book
	Panel        Panel
	Draft        model.Appointment
}

// NewSnapshot returns the initial state showing the given month.
func NewSnapshot(visible calendar.CalendarDate) Snapshot {
	return Snapshot{Visible: visible, Appointments: NewBook()}
}

// PrevMonth shows the previous month.
func (s Snapshot) PrevMonth() (Snapshot, error) {
	d, err := s.Visible.Prev()
	if err != nil {
		return s, err
	}
	s.Visible = d
	return s, nil
}

// NextMonth shows the following month.
func (s Snapshot) NextMonth() (Snapshot, error) {
	d, err := s.Visible.Next()
	if err != nil {
		return s, err
	}
	s.Visible = d
	return s, nil
}

// SelectEmptyDay closes any open panel and opens the create form for key.
// Whether the day is already booked is checked on submit, not here.
func (s Snapshot) SelectEmptyDay(key calendar.DateKey, loc *time.Location) (Snapshot, error) {
	date, err := key.Time(loc)
	if err != nil {
		return s, err
	}
	s = s.resetPanels()
	s.Draft = model.Appointment{ID: key, Date: date}
	s.Panel = PanelCreating
	return s, nil
}

// SelectAppointment opens the detail panel for the appointment on key. It
// does nothing when the day is free.
func (s Snapshot) SelectAppointment(key calendar.DateKey) Snapshot {
	a, ok := s.Appointments.Get(key)
	if !ok {
		return s
	}
	s = s.resetPanels()
	s.Draft = a
	s.Panel = PanelViewing
	return s
}

// EditField sets a draft field. Values are not validated here.
func (s Snapshot) EditField(field Field, value string) (Snapshot, error) {
	switch field {
	case FieldTitle:
		s.Draft.Title = value
	case FieldDescription:
		s.Draft.Description = value
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return s, nil
}

// SubmitCreate stores the draft as a new appointment and closes the form.
func (s Snapshot) SubmitCreate() (Snapshot, error) {
	if s.Draft.ID == "" {
		return s, ErrNoDraft
	}
	if s.Appointments.Has(s.Draft.ID) {
		return s, fmt.Errorf("%w: %s", ErrDuplicateAppointment, s.Draft.ID)
	}
	s.Appointments = s.Appointments.With(s.Draft)
	return s.closed(), nil
}

// RequestEdit switches the detail panel to the edit form. Only valid while
// viewing.
func (s Snapshot) RequestEdit() Snapshot {
	if s.Panel != PanelViewing {
		return s
	}
	s.Panel = PanelEditing
	return s
}

// SubmitUpdate writes the draft back over the existing appointment with
// Date replaced by now, then closes the form. It does nothing when the
// appointment no longer exists.
func (s Snapshot) SubmitUpdate(now time.Time) Snapshot {
	if s.Draft.ID == "" || !s.Appointments.Has(s.Draft.ID) {
		return s
	}
	updated := s.Draft
	updated.Date = now
	s.Appointments = s.Appointments.With(updated)
	return s.closed()
}

// RequestDelete removes the draft's appointment when confirmed. The panel
// is closed either way.
func (s Snapshot) RequestDelete(confirmed bool) Snapshot {
	if confirmed && s.Draft.ID != "" {
		s.Appointments = s.Appointments.Without(s.Draft.ID)
	}
	return s.closed()
}

// Cancel closes the panel and discards the draft.
func (s Snapshot) Cancel() Snapshot {
	return s.closed()
}

// Insert stores a complete appointment without touching the panel or the
// draft. Feed imports use it.
func (s Snapshot) Insert(a model.Appointment) (Snapshot, error) {
	if !a.ID.Valid() {
		return s, fmt.Errorf("%w: %q", calendar.ErrInvalidDateKey, a.ID)
	}
	if a.Title == "" {
		return s, ErrTitleRequired
	}
	if s.Appointments.Has(a.ID) {
		return s, fmt.Errorf("%w: %s", ErrDuplicateAppointment, a.ID)
	}
	s.Appointments = s.Appointments.With(a)
	return s, nil
}

// Lookup returns the appointment on key for per-cell rendering.
func (s Snapshot) Lookup(key calendar.DateKey) (model.Appointment, bool) {
	return s.Appointments.Get(key)
}

// Grid lays out the visible month.
func (s Snapshot) Grid() (calendar.Grid, error) {
	return calendar.BuildGrid(s.Visible)
}

func (s Snapshot) resetPanels() Snapshot {
	s.Panel = PanelNone
	return s
}

func (s Snapshot) closed() Snapshot {
	s.Panel = PanelNone
	s.Draft = model.Appointment{}
	return s
}
