package ics

import (
	"errors"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"apptcal/internal/calendar"
	appLog "apptcal/internal/log"
	"apptcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 1000

// FlattenConfig controls how feed events become single-day candidates.
type FlattenConfig struct {
	// Location is the zone occurrences are bucketed into days in.
	Location *time.Location

	// RangeStart / RangeEnd bound the occurrences considered (inclusive).
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway RRULEs. Zero uses the default.
	MaxOccurrencesPerEvent int
}

// Candidate is one occurrence reduced to a day appointment.
type Candidate struct {
	Appointment model.Appointment
	SourceID    string
	UID         string
}

// Flatten expands events (RRULE, EXDATE, RECURRENCE-ID overrides) inside
// the window and returns one candidate per occurrence, ordered by start
// time. Several candidates may share a day; the importer keeps the first.
func Flatten(events []ParsedEvent, cfg FlattenConfig) ([]Candidate, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("flatten: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	type occurrence struct {
		ev    ParsedEvent
		start time.Time
	}
	var all []occurrence

	for uid, bases := range baseByUID {
		overrides := overridesByUID[uid]
		for _, ev := range bases {
			for _, start := range occurrenceStarts(ev, cfg) {
				chosen := ev
				if o, ok := findOverride(overrides, start); ok {
					chosen, start = o, o.Start
				}
				all = append(all, occurrence{ev: chosen, start: start})
			}
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start.Equal(all[j].start) {
			return all[i].ev.UID < all[j].ev.UID
		}
		return all[i].start.Before(all[j].start)
	})

	out := make([]Candidate, 0, len(all))
	for _, occ := range all {
		out = append(out, toCandidate(occ.ev, occ.start, cfg.Location))
	}
	return out, nil
}

// occurrenceStarts lists the starts of ev inside the window.
func occurrenceStarts(ev ParsedEvent, cfg FlattenConfig) []time.Time {
	if ev.RawRRule == "" {
		if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
			return []time.Time{ev.Start}
		}
		return nil
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("flatten: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	starts := set.Between(cfg.RangeStart.In(ev.Start.Location()), cfg.RangeEnd.In(ev.Start.Location()), true)
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		appLog.Warn("flatten: occurrences truncated", "uid", ev.UID, "cap", cfg.MaxOccurrencesPerEvent)
		starts = starts[:cfg.MaxOccurrencesPerEvent]
	}
	return starts
}

// findOverride returns the override whose RECURRENCE-ID equals start.
func findOverride(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func toCandidate(ev ParsedEvent, start time.Time, loc *time.Location) Candidate {
	var day time.Time
	if ev.AllDay {
		// A DATE has no zone; keep its calendar day as written.
		day = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	} else {
		local := start.In(loc)
		day = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	}
	return Candidate{
		Appointment: model.Appointment{
			ID:          calendar.DateKeyOf(day),
			Title:       ev.Summary,
			Description: ev.Description,
			Date:        day,
		},
		SourceID: ev.Source.ID,
		UID:      ev.UID,
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
