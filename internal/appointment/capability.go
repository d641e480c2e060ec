package appointment

import "time"

// Clock supplies the update timestamp for SubmitUpdate and the month shown
// at startup.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Answer is a Confirmer whose reply was collected before the call, such as
// a browser dialog result posted with the form.
type Answer bool

func (a Answer) Confirm(string) bool { return bool(a) }

// DeletePrompt is the question asked before deleting an appointment.
const DeletePrompt = "Are you sure you want to delete this Appointment?"
