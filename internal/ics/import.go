package ics

import (
	"context"
	"errors"
	"time"

	"apptcal/internal/appointment"
	"apptcal/internal/calendar"
	appLog "apptcal/internal/log"
	"apptcal/internal/model"
)

// Inserter receives imported appointments. appointment.Store satisfies it;
// the web server passes a locked wrapper.
type Inserter interface {
	Insert(a model.Appointment) error
}

// Report counts the outcome of an import.
type Report struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (r *Report) add(o Report) {
	r.Imported += o.Imported
	r.Skipped += o.Skipped
}

// Apply inserts candidates in order. A day already booked, whether by the
// user or by an earlier candidate, is skipped.
func Apply(dst Inserter, cands []Candidate) Report {
	var rep Report
	for _, c := range cands {
		err := dst.Insert(c.Appointment)
		switch {
		case err == nil:
			rep.Imported++
		case errors.Is(err, appointment.ErrDuplicateAppointment):
			rep.Skipped++
			appLog.Debug("import: day already booked", "key", c.Appointment.ID, "uid", c.UID, "source", c.SourceID)
		default:
			rep.Skipped++
			appLog.Warn("import: candidate rejected", "key", c.Appointment.ID, "uid", c.UID, "reason", err.Error())
		}
	}
	return rep
}

// Window returns the import range: the start of now's month through
// horizonDays after now.
func Window(now time.Time, horizonDays int) (start, end time.Time) {
	start = calendar.CalendarDateOf(now).Start(now.Location())
	end = now.AddDate(0, 0, horizonDays)
	return start, end
}

// ImportBody parses one ICS payload and applies it to dst.
func ImportBody(src Source, body []byte, cfg FlattenConfig, dst Inserter) (Report, error) {
	events, err := ParseICS(src, body, cfg.Location)
	if err != nil {
		return Report{}, err
	}
	cands, err := Flatten(events, cfg)
	if err != nil {
		return Report{}, err
	}
	return Apply(dst, cands), nil
}

// Importer pulls the configured feeds into a store.
type Importer struct {
	Fetcher     *Fetcher
	Sources     []Source
	Location    *time.Location
	HorizonDays int
	Now         func() time.Time
}

// Run fetches every source and imports what could be read. Sources that
// failed are reported in the error alongside the partial report.
func (im *Importer) Run(ctx context.Context, dst Inserter) (Report, error) {
	var total Report
	if len(im.Sources) == 0 {
		return total, nil
	}

	now := time.Now
	if im.Now != nil {
		now = im.Now
	}
	loc := im.Location
	if loc == nil {
		loc = time.Local
	}
	start, end := Window(now().In(loc), im.HorizonDays)
	cfg := FlattenConfig{Location: loc, RangeStart: start, RangeEnd: end}

	results, fetchErr := im.Fetcher.FetchAll(ctx, im.Sources)
	errs := []error{fetchErr}
	for _, res := range results {
		rep, err := ImportBody(res.Source, res.Body, cfg, dst)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		appLog.Info("ics import applied",
			"id", res.Source.ID,
			"from_cache", res.FromCache,
			"imported", rep.Imported,
			"skipped", rep.Skipped,
		)
		total.add(rep)
	}
	return total, errors.Join(errs...)
}
