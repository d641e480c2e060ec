package model

import (
	"time"

	"apptcal/internal/calendar"
)

// Appointment is a single booking. Its ID is the DateKey of the day it is
// scheduled on, so a day holds at most one appointment.
type Appointment struct {
	ID          calendar.DateKey `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`

	// Date is the day's midnight when created and the update time after an
	// edit. The zero value stands for "no date" on a cleared draft.
	Date time.Time `json:"date,omitzero"`
}

// Empty reports whether a is the cleared draft.
func (a Appointment) Empty() bool {
	return a.ID == "" && a.Title == "" && a.Description == "" && a.Date.IsZero()
}
