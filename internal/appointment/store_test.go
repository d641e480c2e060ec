package appointment

import (
	"errors"
	"testing"
	"time"

	"apptcal/internal/calendar"
	"apptcal/internal/model"
)

var testLoc = time.FixedZone("test", 0)

func fixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func newTestStore(t *testing.T, now time.Time, opts ...Option) *Store {
	t.Helper()
	return NewStore(append([]Option{WithClock(fixedClock(now))}, opts...)...)
}

func TestNewStoreStartsAtClockMonth(t *testing.T) {
	s := newTestStore(t, time.Date(2026, time.October, 18, 9, 0, 0, 0, testLoc))
	snap := s.Snapshot()
	if snap.Visible != (calendar.CalendarDate{Year: 2026, Month: 9}) {
		t.Errorf("Visible = %v", snap.Visible)
	}
	if snap.Panel != PanelNone || !snap.Draft.Empty() || snap.Appointments.Len() != 0 {
		t.Errorf("unexpected initial snapshot %+v", snap)
	}
}

func TestMonthNavigationAcrossYears(t *testing.T) {
	s := newTestStore(t, time.Now(), WithVisible(calendar.CalendarDate{Year: 2024, Month: 10}))

	steps := []calendar.CalendarDate{{Year: 2024, Month: 11}, {Year: 2025, Month: 0}}
	for _, want := range steps {
		if err := s.NextMonth(); err != nil {
			t.Fatalf("NextMonth() error = %v", err)
		}
		if got := s.Snapshot().Visible; got != want {
			t.Fatalf("Visible = %v, want %v", got, want)
		}
	}

	if err := s.PrevMonth(); err != nil {
		t.Fatalf("PrevMonth() error = %v", err)
	}
	if got := s.Snapshot().Visible; got != (calendar.CalendarDate{Year: 2024, Month: 11}) {
		t.Errorf("Visible = %v after PrevMonth", got)
	}
}

func TestMonthNavigationKeepsPanel(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	if err := s.SelectEmptyDay("2024/00/15"); err != nil {
		t.Fatal(err)
	}
	if err := s.NextMonth(); err != nil {
		t.Fatal(err)
	}
	if snap := s.Snapshot(); snap.Panel != PanelCreating || snap.Draft.ID != "2024/00/15" {
		t.Errorf("navigation touched the panel: %+v", snap)
	}
}

func TestInvalidVisibleMonthRejected(t *testing.T) {
	snap := NewSnapshot(calendar.CalendarDate{Year: 2024, Month: 13})
	if _, err := snap.NextMonth(); !errors.Is(err, calendar.ErrInvalidDate) {
		t.Errorf("NextMonth() error = %v", err)
	}
	if _, err := snap.PrevMonth(); !errors.Is(err, calendar.ErrInvalidDate) {
		t.Errorf("PrevMonth() error = %v", err)
	}
}

func TestCreateAppointment(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))

	if err := s.SelectEmptyDay("2024/00/15"); err != nil {
		t.Fatalf("SelectEmptyDay() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Panel != PanelCreating {
		t.Fatalf("Panel = %v, want creating", snap.Panel)
	}
	wantDate := time.Date(2024, time.January, 15, 0, 0, 0, 0, testLoc)
	if !snap.Draft.Date.Equal(wantDate) {
		t.Errorf("Draft.Date = %v, want %v", snap.Draft.Date, wantDate)
	}

	if err := s.EditField(FieldTitle, "Dentist"); err != nil {
		t.Fatal(err)
	}
	if err := s.SubmitCreate(); err != nil {
		t.Fatalf("SubmitCreate() error = %v", err)
	}

	snap = s.Snapshot()
	got, ok := snap.Lookup("2024/00/15")
	if !ok || got.Title != "Dentist" {
		t.Fatalf("appointment = %+v, %v", got, ok)
	}
	if snap.Panel != PanelNone || !snap.Draft.Empty() {
		t.Errorf("panel not closed: %+v", snap)
	}
}

func TestSubmitCreateDuplicate(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	create := func(title string) error {
		if err := s.SelectEmptyDay("2024/00/15"); err != nil {
			t.Fatal(err)
		}
		if err := s.EditField(FieldTitle, title); err != nil {
			t.Fatal(err)
		}
		return s.SubmitCreate()
	}

	if err := create("Dentist"); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	err := create("Haircut")
	if !errors.Is(err, ErrDuplicateAppointment) {
		t.Fatalf("second SubmitCreate() error = %v, want ErrDuplicateAppointment", err)
	}
	after := s.Snapshot()
	if after.Appointments.Len() != 1 {
		t.Errorf("appointments = %d, want 1", after.Appointments.Len())
	}
	if a, _ := after.Lookup("2024/00/15"); a.Title != "Dentist" {
		t.Errorf("title = %q, want Dentist", a.Title)
	}
	if after.Panel != PanelCreating || after.Draft.Title != "Haircut" {
		t.Errorf("failed create changed the form: %+v", after)
	}
	if before.Appointments.Len() != after.Appointments.Len() {
		t.Error("book changed on duplicate")
	}
}

func TestSubmitCreateWithoutDraft(t *testing.T) {
	s := newTestStore(t, time.Now())
	if err := s.SubmitCreate(); !errors.Is(err, ErrNoDraft) {
		t.Errorf("SubmitCreate() error = %v, want ErrNoDraft", err)
	}
}

func TestSelectEmptyDayInvalidKey(t *testing.T) {
	s := newTestStore(t, time.Now())
	if err := s.SelectEmptyDay("2024-01-15"); !errors.Is(err, calendar.ErrInvalidDateKey) {
		t.Errorf("SelectEmptyDay() error = %v", err)
	}
}

func TestSecondSpellingOfBookedDayRefused(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	mustCreate(t, s, "2024/00/15", "Dentist")

	for _, key := range []calendar.DateKey{"02024/00/15", "+2024/00/15", "2024/+0/15"} {
		if err := s.SelectEmptyDay(key); !errors.Is(err, calendar.ErrInvalidDateKey) {
			t.Errorf("SelectEmptyDay(%q) error = %v, want ErrInvalidDateKey", key, err)
		}
	}
	snap := s.Snapshot()
	if snap.Appointments.Len() != 1 {
		t.Errorf("appointments = %d, want 1", snap.Appointments.Len())
	}
	if snap.Panel != PanelNone {
		t.Errorf("panel = %v, want none", snap.Panel)
	}
}

func TestEditFieldUnknown(t *testing.T) {
	s := newTestStore(t, time.Now())
	if err := s.EditField("location", "x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("EditField() error = %v, want ErrUnknownField", err)
	}
}

func TestViewEditUpdate(t *testing.T) {
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc)
	stamp := time.Date(2024, time.January, 20, 14, 30, 0, 0, testLoc)
	now := created
	s := NewStore(WithClock(ClockFunc(func() time.Time { return now })))

	const key = calendar.DateKey("2024/00/15")
	mustCreate(t, s, key, "Old")

	if !s.SelectAppointment(key) {
		t.Fatal("SelectAppointment() = false")
	}
	if s.Snapshot().Panel != PanelViewing {
		t.Fatalf("Panel = %v, want viewing", s.Snapshot().Panel)
	}
	s.RequestEdit()
	if s.Snapshot().Panel != PanelEditing {
		t.Fatalf("Panel = %v, want editing", s.Snapshot().Panel)
	}
	if err := s.EditField(FieldTitle, "New"); err != nil {
		t.Fatal(err)
	}

	now = stamp
	if !s.SubmitUpdate() {
		t.Fatal("SubmitUpdate() = false")
	}

	got, ok := s.Lookup(key)
	if !ok {
		t.Fatal("appointment missing after update")
	}
	if got.ID != key || got.Title != "New" {
		t.Errorf("updated = %+v", got)
	}
	if !got.Date.Equal(stamp) {
		t.Errorf("Date = %v, want stamped %v", got.Date, stamp)
	}
	if snap := s.Snapshot(); snap.Panel != PanelNone || !snap.Draft.Empty() {
		t.Errorf("panel not closed: %+v", snap)
	}
}

func TestRequestEditOnlyFromViewing(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	s.RequestEdit()
	if s.Snapshot().Panel != PanelNone {
		t.Errorf("RequestEdit from none moved to %v", s.Snapshot().Panel)
	}
	if err := s.SelectEmptyDay("2024/00/03"); err != nil {
		t.Fatal(err)
	}
	s.RequestEdit()
	if s.Snapshot().Panel != PanelCreating {
		t.Errorf("RequestEdit from creating moved to %v", s.Snapshot().Panel)
	}
}

func TestSelectAppointmentMissingIsNoop(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	if err := s.SelectEmptyDay("2024/00/03"); err != nil {
		t.Fatal(err)
	}
	if s.SelectAppointment("2024/00/04") {
		t.Error("SelectAppointment() = true for a free day")
	}
	if s.Snapshot().Panel != PanelCreating {
		t.Errorf("Panel = %v, want creating untouched", s.Snapshot().Panel)
	}
}

func TestRequestDelete(t *testing.T) {
	const key = calendar.DateKey("2024/00/15")

	t.Run("declined", func(t *testing.T) {
		s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
		mustCreate(t, s, key, "Dentist")
		s.SelectAppointment(key)

		asked := ""
		s.RequestDelete(ConfirmFunc(func(p string) bool { asked = p; return false }))

		if asked != DeletePrompt {
			t.Errorf("prompt = %q", asked)
		}
		snap := s.Snapshot()
		if !snap.Appointments.Has(key) {
			t.Error("declined delete removed the appointment")
		}
		if snap.Panel != PanelNone {
			t.Errorf("Panel = %v, want none", snap.Panel)
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
		mustCreate(t, s, key, "Dentist")
		s.SelectAppointment(key)
		s.RequestDelete(Answer(true))

		snap := s.Snapshot()
		if snap.Appointments.Has(key) {
			t.Error("confirmed delete kept the appointment")
		}
		if snap.Panel != PanelNone || !snap.Draft.Empty() {
			t.Errorf("panel not reset: %+v", snap)
		}
	})

	t.Run("nothing to delete skips the question", func(t *testing.T) {
		s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
		if err := s.SelectEmptyDay(key); err != nil {
			t.Fatal(err)
		}
		s.RequestDelete(ConfirmFunc(func(string) bool {
			t.Error("confirmer called without an appointment")
			return true
		}))
		if s.Snapshot().Panel != PanelNone {
			t.Errorf("Panel = %v, want none", s.Snapshot().Panel)
		}
	})
}

func TestCancelDiscardsDraft(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	const key = calendar.DateKey("2024/00/15")
	mustCreate(t, s, key, "Dentist")

	s.SelectAppointment(key)
	s.RequestEdit()
	if err := s.EditField(FieldTitle, "Changed"); err != nil {
		t.Fatal(err)
	}
	s.Cancel()

	if a, _ := s.Lookup(key); a.Title != "Dentist" {
		t.Errorf("cancel leaked edit: %q", a.Title)
	}
	if snap := s.Snapshot(); snap.Panel != PanelNone || !snap.Draft.Empty() {
		t.Errorf("cancel left %+v", snap)
	}
}

func TestTransitionsDoNotMutatePreviousSnapshot(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	before := s.Snapshot()
	mustCreate(t, s, "2024/00/15", "Dentist")

	if before.Appointments.Len() != 0 {
		t.Errorf("earlier snapshot saw %d appointments", before.Appointments.Len())
	}

	mid := s.Snapshot()
	s.SelectAppointment("2024/00/15")
	s.RequestDelete(Answer(true))
	if !mid.Appointments.Has("2024/00/15") {
		t.Error("delete reached into an earlier snapshot")
	}
}

func TestUndo(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("Undo() on fresh store = %v", err)
	}

	mustCreate(t, s, "2024/00/15", "Dentist")
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	snap := s.Snapshot()
	if snap.Appointments.Has("2024/00/15") {
		t.Error("undo kept the created appointment")
	}
	if snap.Panel != PanelCreating {
		t.Errorf("Panel = %v, want creating restored", snap.Panel)
	}
}

func TestUndoHistoryLimit(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc), WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		if err := s.NextMonth(); err != nil {
			t.Fatal(err)
		}
	}
	undone := 0
	for s.CanUndo() {
		if err := s.Undo(); err != nil {
			t.Fatal(err)
		}
		undone++
	}
	if undone != 2 {
		t.Errorf("undid %d steps, want 2", undone)
	}
	if got := s.Snapshot().Visible; got != (calendar.CalendarDate{Year: 2024, Month: 3}) {
		t.Errorf("Visible = %v, want April 2024", got)
	}

	off := newTestStore(t, time.Now(), WithHistoryLimit(0))
	_ = off.NextMonth()
	if off.CanUndo() {
		t.Error("history kept with limit 0")
	}
}

func TestInsert(t *testing.T) {
	s := newTestStore(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, testLoc))
	if err := s.SelectEmptyDay("2024/00/02"); err != nil {
		t.Fatal(err)
	}

	a := model.Appointment{ID: "2024/00/10", Title: "Standup"}
	if err := s.Insert(a); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if snap := s.Snapshot(); snap.Panel != PanelCreating || snap.Draft.ID != "2024/00/02" {
		t.Errorf("Insert touched the panel: %+v", snap)
	}
	if err := s.Insert(a); !errors.Is(err, ErrDuplicateAppointment) {
		t.Errorf("second Insert() error = %v", err)
	}
	if err := s.Insert(model.Appointment{ID: "2024/00/11"}); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("untitled Insert() error = %v", err)
	}
	if err := s.Insert(model.Appointment{ID: "nope", Title: "x"}); !errors.Is(err, calendar.ErrInvalidDateKey) {
		t.Errorf("bad key Insert() error = %v", err)
	}
}

func TestBookWithWithout(t *testing.T) {
	b := NewBook(model.Appointment{ID: "2024/00/02", Title: "b"})
	c := b.With(model.Appointment{ID: "2024/00/01", Title: "a"})
	if b.Len() != 1 || c.Len() != 2 {
		t.Fatalf("lens = %d, %d", b.Len(), c.Len())
	}
	keys := c.Keys()
	if keys[0] != "2024/00/01" || keys[1] != "2024/00/02" {
		t.Errorf("Keys() = %v", keys)
	}
	d := c.Without("2024/00/02")
	if !c.Has("2024/00/02") || d.Has("2024/00/02") {
		t.Error("Without mutated its receiver or kept the key")
	}
	if list := d.List(); len(list) != 1 || list[0].Title != "a" {
		t.Errorf("List() = %+v", list)
	}
}

func TestPanelString(t *testing.T) {
	for p, want := range map[Panel]string{
		PanelNone: "none", PanelCreating: "creating", PanelViewing: "viewing", PanelEditing: "editing",
	} {
		if p.String() != want {
			t.Errorf("%d.String() = %q", int(p), p.String())
		}
	}
}

func mustCreate(t *testing.T, s *Store, key calendar.DateKey, title string) {
	t.Helper()
	if err := s.SelectEmptyDay(key); err != nil {
		t.Fatalf("SelectEmptyDay(%s) error = %v", key, err)
	}
	if err := s.EditField(FieldTitle, title); err != nil {
		t.Fatalf("EditField() error = %v", err)
	}
	if err := s.SubmitCreate(); err != nil {
		t.Fatalf("SubmitCreate() error = %v", err)
	}
}
