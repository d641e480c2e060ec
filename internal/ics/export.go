package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"apptcal/internal/calendar"
	"apptcal/internal/model"
)

// ProductID identifies this program in exported calendars.
const ProductID = "-//apptcal//Appointment Calendar//EN"

// uidNamespace scopes the name-based UIDs of exported appointments.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("apptcal"))

// EventUID returns the stable UID of the appointment on key, so calendar
// apps recognize an edited appointment as the same event.
func EventUID(key calendar.DateKey) string {
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@apptcal"
}

// Export renders appointments as an iCalendar document with one all-day
// VEVENT per appointment. Appointments with malformed keys are skipped.
func Export(appts []model.Appointment, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	cal.SetXWRCalName("Appointments")

	for _, a := range appts {
		day, err := a.ID.Time(loc)
		if err != nil {
			continue
		}
		ev := cal.AddEvent(EventUID(a.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(a.Title)
		if a.Description != "" {
			ev.SetDescription(a.Description)
		}
		if !a.Date.IsZero() {
			ev.SetModifiedAt(a.Date.UTC())
		}
	}

	return cal.Serialize()
}
