package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"apptcal/internal/appointment"
	"apptcal/internal/calendar"
	appLog "apptcal/internal/log"
	"apptcal/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// dayCell is one grid position as the template sees it.
type dayCell struct {
	Blank       bool
	Day         int
	Key         calendar.DateKey
	Appointment *model.Appointment
	Selected    bool
}

type pageData struct {
	Heading      string
	Weekdays     [calendar.DaysPerWeek]string
	Rows         [][]dayCell
	Panel        string
	Draft        model.Appointment
	DraftDay     string
	Notice       string
	CanUndo      bool
	DeletePrompt string
}

// buildPage derives the page from the current snapshot and consumes the
// pending notice. Callers hold s.mu.
func (s *Server) buildPage() (pageData, error) {
	snap := s.store.Snapshot()
	grid, err := snap.Grid()
	if err != nil {
		return pageData{}, err
	}

	data := pageData{
		Heading:      snap.Visible.String(),
		Weekdays:     calendar.Weekdays,
		Rows:         make([][]dayCell, 0, len(grid.Rows)),
		Panel:        snap.Panel.String(),
		Draft:        snap.Draft,
		Notice:       s.notice,
		CanUndo:      s.store.CanUndo(),
		DeletePrompt: appointment.DeletePrompt,
	}
	s.notice = ""

	if snap.Draft.ID != "" {
		if day, err := snap.Draft.ID.Time(s.store.Location()); err == nil {
			data.DraftDay = day.Format("Monday, January 2, 2006")
		}
	}

	for _, row := range grid.Rows {
		cells := make([]dayCell, 0, len(row))
		for _, c := range row {
			cell := dayCell{
				Blank:    c.Blank(),
				Day:      c.Day,
				Key:      c.Key,
				Selected: snap.Panel != appointment.PanelNone && c.Key == snap.Draft.ID,
			}
			if a, ok := snap.Lookup(c.Key); ok && !cell.Blank {
				cell.Appointment = &a
			}
			cells = append(cells, cell)
		}
		data.Rows = append(data.Rows, cells)
	}
	return data, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	data, err := s.buildPage()
	s.mu.Unlock()
	if err != nil {
		appLog.Error("page build failed", err)
		http.Error(w, "failed to build page", http.StatusInternalServerError)
		return
	}

	// Render into a buffer so a template error never leaves half a page.
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		appLog.Error("page render failed", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
