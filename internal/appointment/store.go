package appointment

import (
	"time"

	"apptcal/internal/calendar"
	appLog "apptcal/internal/log"
	"apptcal/internal/model"
)

// DefaultHistoryLimit is the number of snapshots kept for Undo.
const DefaultHistoryLimit = 50

// Store owns the current Snapshot and applies transitions to it. It is not
// safe for concurrent use; callers serialize access.
type Store struct {
	cur     Snapshot
	clock   Clock
	loc     *time.Location
	history []Snapshot
	limit   int
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for update stamps and the initial month.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithHistoryLimit caps the undo history. Zero disables undo.
func WithHistoryLimit(n int) Option {
	return func(s *Store) {
		if n < 0 {
			n = 0
		}
		s.limit = n
	}
}

// WithVisible overrides the month shown initially.
func WithVisible(d calendar.CalendarDate) Option {
	return func(s *Store) { s.cur.Visible = d }
}

// NewStore returns a Store showing the clock's current month with no
// appointments.
func NewStore(opts ...Option) *Store {
	s := &Store{
		clock: SystemClock{},
		limit: DefaultHistoryLimit,
	}
	s.cur.Visible = calendar.CalendarDate{Month: -1}
	for _, opt := range opts {
		opt(s)
	}
	now := s.clock.Now()
	s.loc = now.Location()
	if !s.cur.Visible.Valid() {
		s.cur.Visible = calendar.CalendarDateOf(now)
	}
	s.cur.Appointments = NewBook()
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot { return s.cur }

// Location is the zone day keys are resolved in.
func (s *Store) Location() *time.Location { return s.loc }

// Lookup returns the appointment on key.
func (s *Store) Lookup(key calendar.DateKey) (model.Appointment, bool) {
	return s.cur.Lookup(key)
}

// Grid lays out the visible month.
func (s *Store) Grid() (calendar.Grid, error) {
	return s.cur.Grid()
}

func (s *Store) PrevMonth() error {
	next, err := s.cur.PrevMonth()
	if err != nil {
		appLog.Error("prev month rejected", err, "visible", s.cur.Visible)
		return err
	}
	s.commit("prev_month", next)
	return nil
}

func (s *Store) NextMonth() error {
	next, err := s.cur.NextMonth()
	if err != nil {
		appLog.Error("next month rejected", err, "visible", s.cur.Visible)
		return err
	}
	s.commit("next_month", next)
	return nil
}

func (s *Store) SelectEmptyDay(key calendar.DateKey) error {
	next, err := s.cur.SelectEmptyDay(key, s.loc)
	if err != nil {
		return err
	}
	s.commit("select_empty_day", next)
	return nil
}

// SelectAppointment opens the detail panel. It reports false, leaving the
// state alone, when key is free.
func (s *Store) SelectAppointment(key calendar.DateKey) bool {
	if !s.cur.Appointments.Has(key) {
		return false
	}
	s.commit("select_appointment", s.cur.SelectAppointment(key))
	return true
}

func (s *Store) EditField(field Field, value string) error {
	next, err := s.cur.EditField(field, value)
	if err != nil {
		return err
	}
	// Keystrokes are not worth an undo step each.
	s.cur = next
	return nil
}

func (s *Store) SubmitCreate() error {
	next, err := s.cur.SubmitCreate()
	if err != nil {
		appLog.Info("create rejected", "key", s.cur.Draft.ID, "reason", err.Error())
		return err
	}
	s.commit("submit_create", next)
	return nil
}

func (s *Store) RequestEdit() {
	if s.cur.Panel != PanelViewing {
		return
	}
	s.commit("request_edit", s.cur.RequestEdit())
}

// SubmitUpdate saves the edited draft stamped with the clock's time. It
// reports false when the appointment no longer exists.
func (s *Store) SubmitUpdate() bool {
	if !s.cur.Appointments.Has(s.cur.Draft.ID) {
		return false
	}
	s.commit("submit_update", s.cur.SubmitUpdate(s.clock.Now()))
	return true
}

// RequestDelete asks c before removing the draft's appointment. The panel
// closes whatever the answer.
func (s *Store) RequestDelete(c Confirmer) {
	confirmed := false
	if s.cur.Appointments.Has(s.cur.Draft.ID) && c != nil {
		confirmed = c.Confirm(DeletePrompt)
	}
	s.commit("request_delete", s.cur.RequestDelete(confirmed))
}

func (s *Store) Cancel() {
	s.commit("cancel", s.cur.Cancel())
}

// Insert adds a finished appointment, for feed imports.
func (s *Store) Insert(a model.Appointment) error {
	next, err := s.cur.Insert(a)
	if err != nil {
		return err
	}
	s.commit("insert", next)
	return nil
}

// Undo restores the snapshot before the last transition.
func (s *Store) Undo() error {
	if len(s.history) == 0 {
		return ErrNothingToUndo
	}
	last := len(s.history) - 1
	s.cur = s.history[last]
	s.history[last] = Snapshot{}
	s.history = s.history[:last]
	appLog.Debug("store undo", "panel", s.cur.Panel, "depth", len(s.history))
	return nil
}

// CanUndo reports whether Undo has something to restore.
func (s *Store) CanUndo() bool { return len(s.history) > 0 }

func (s *Store) commit(op string, next Snapshot) {
	if s.limit > 0 {
		s.history = append(s.history, s.cur)
		if over := len(s.history) - s.limit; over > 0 {
			s.history = append(s.history[:0:0], s.history[over:]...)
		}
	}
	s.cur = next
	appLog.Debug("store transition",
		"op", op,
		"panel", next.Panel,
		"visible", next.Visible,
		"appointments", next.Appointments.Len(),
	)
}
