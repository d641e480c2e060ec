package web

import (
	"errors"
	"io"
	"net/http"
	"time"

	"apptcal/internal/appointment"
	"apptcal/internal/calendar"
	"apptcal/internal/ics"
	appLog "apptcal/internal/log"
	"apptcal/internal/model"
)

// maxImportBytes bounds an uploaded ICS body.
const maxImportBytes = 10 << 20

// monthDTO is the JSON shape of a CalendarDate.
type monthDTO struct {
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	MonthName string `json:"month_name"`
}

// stateResponse is the JSON response shape for /api/state.
type stateResponse struct {
	Visible      monthDTO            `json:"visible"`
	Panel        appointment.Panel   `json:"panel"`
	Draft        *model.Appointment  `json:"draft,omitempty"`
	Appointments []model.Appointment `json:"appointments"`
	CanUndo      bool                `json:"can_undo"`
}

// gridCellDTO adds the booked appointment's title to a grid cell.
type gridCellDTO struct {
	calendar.Cell
	Title string `json:"title,omitempty"`
}

// gridResponse is the JSON response shape for /api/grid.
type gridResponse struct {
	monthDTO
	DaysInMonth  int             `json:"days_in_month"`
	FirstWeekday int             `json:"first_weekday"`
	Weekdays     []string        `json:"weekdays"`
	Rows         [][]gridCellDTO `json:"rows"`
}

func toMonthDTO(d calendar.CalendarDate) monthDTO {
	return monthDTO{Year: d.Year, Month: d.Month, MonthName: d.MonthName()}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	snap := s.store.Snapshot()
	canUndo := s.store.CanUndo()
	s.mu.Unlock()

	resp := stateResponse{
		Visible:      toMonthDTO(snap.Visible),
		Panel:        snap.Panel,
		Appointments: snap.Appointments.List(),
		CanUndo:      canUndo,
	}
	if !snap.Draft.Empty() {
		d := snap.Draft
		resp.Draft = &d
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGrid returns the month grid with booked titles.
//
// GET /api/grid?year=2025&month=2
//   - year, month: zero-indexed month; both default to the visible month.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap := s.store.Snapshot()
	s.mu.Unlock()

	q := r.URL.Query()
	year := parseIntDefault(q.Get("year"), snap.Visible.Year)
	month := parseIntDefault(q.Get("month"), snap.Visible.Month)

	grid, err := calendar.BuildMonthGrid(year, month)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidDate) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Error("api grid: build failed", err)
		writeError(w, http.StatusInternalServerError, "failed to build grid")
		return
	}

	resp := gridResponse{
		monthDTO:     toMonthDTO(grid.Date()),
		DaysInMonth:  grid.DaysInMonth,
		FirstWeekday: grid.FirstWeekday,
		Weekdays:     calendar.Weekdays[:],
		Rows:         make([][]gridCellDTO, 0, len(grid.Rows)),
	}
	for _, row := range grid.Rows {
		cells := make([]gridCellDTO, 0, len(row))
		for _, c := range row {
			cell := gridCellDTO{Cell: c}
			if a, ok := snap.Lookup(c.Key); ok && !c.Blank() {
				cell.Title = a.Title
			}
			cells = append(cells, cell)
		}
		resp.Rows = append(resp.Rows, cells)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	appts := s.store.Snapshot().Appointments.List()
	loc := s.store.Location()
	s.mu.Unlock()

	body := ics.Export(appts, loc, time.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="appointments.ics"`)
	_, _ = io.WriteString(w, body)
}

// handleImport reads an ICS document from the request body and inserts its
// events inside the import window. Days already booked are skipped.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	s.mu.Lock()
	loc := s.store.Location()
	s.mu.Unlock()

	start, end := ics.Window(time.Now().In(loc), s.cfg.ImportHorizonDays)
	cfg := ics.FlattenConfig{Location: loc, RangeStart: start, RangeEnd: end}

	// Insert takes s.mu per appointment.
	rep, err := ics.ImportBody(ics.Source{ID: "upload"}, body, cfg, s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ICS: "+err.Error())
		return
	}
	appLog.Info("api import applied", "imported", rep.Imported, "skipped", rep.Skipped)
	writeJSON(w, http.StatusOK, rep)
}
