package calendar

import (
	"fmt"
	"time"
)

// DaysPerWeek is the number of columns in a month grid.
const DaysPerWeek = 7

// Weekdays holds the grid header labels, Sunday first.
var Weekdays = [DaysPerWeek]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Cell is a single grid position. Blank leading cells have Day == 0 and an
// empty Key.
type Cell struct {
	Day int     `json:"day"`
	Key DateKey `json:"key,omitempty"`
}

// Blank reports whether the cell is a leading offset without a day number.
func (c Cell) Blank() bool { return c.Day <= 0 }

// Grid is a month laid out in rows of seven cells. Only the last row may be
// shorter; it is never padded with trailing blanks.
type Grid struct {
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	DaysInMonth  int      `json:"days_in_month"`
	FirstWeekday int      `json:"first_weekday"`
	Rows         [][]Cell `json:"rows"`
}

// DaysInMonth returns the number of days (28-31) of a zero-indexed month.
func DaysInMonth(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday (0=Sunday) of day 1 of the month.
func FirstWeekday(year, month int) int {
	return int(time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// BuildMonthGrid lays out the given zero-indexed month.
func BuildMonthGrid(year, month int) (Grid, error) {
	if month < 0 || month > 11 {
		return Grid{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}

	g := Grid{
		Year:         year,
		Month:        month,
		DaysInMonth:  DaysInMonth(year, month),
		FirstWeekday: FirstWeekday(year, month),
	}

	cells := make([]Cell, 0, g.FirstWeekday+g.DaysInMonth)
	for i := 0; i < g.FirstWeekday; i++ {
		cells = append(cells, Cell{})
	}
	for day := 1; day <= g.DaysInMonth; day++ {
		cells = append(cells, Cell{Day: day, Key: FormatDateKey(year, month, day)})
	}

	g.Rows = make([][]Cell, 0, (len(cells)+DaysPerWeek-1)/DaysPerWeek)
	for start := 0; start < len(cells); start += DaysPerWeek {
		end := min(start+DaysPerWeek, len(cells))
		g.Rows = append(g.Rows, cells[start:end:end])
	}
	return g, nil
}

// BuildGrid is BuildMonthGrid for a CalendarDate.
func BuildGrid(d CalendarDate) (Grid, error) {
	return BuildMonthGrid(d.Year, d.Month)
}

// Date returns the grid's month.
func (g Grid) Date() CalendarDate {
	return CalendarDate{Year: g.Year, Month: g.Month}
}

// MonthName returns the English name of the grid's month.
func (g Grid) MonthName() string { return g.Date().MonthName() }

// Cells returns the flat cell sequence, blanks first.
func (g Grid) Cells() []Cell {
	out := make([]Cell, 0, g.FirstWeekday+g.DaysInMonth)
	for _, row := range g.Rows {
		out = append(out, row...)
	}
	return out
}

// Locate returns the row and column of day within the grid.
func (g Grid) Locate(day int) (row, col int, ok bool) {
	if day < 1 || day > g.DaysInMonth {
		return 0, 0, false
	}
	idx := g.FirstWeekday + day - 1
	return idx / DaysPerWeek, idx % DaysPerWeek, true
}
