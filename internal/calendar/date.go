// Package calendar builds month grids and handles the month/day keys the
// rest of the application is indexed by.
//
// Months are zero-indexed throughout (January = 0, December = 11) and
// weekdays run from Sunday (0) to Saturday (6).
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidDate is returned when a month outside 0..11 reaches month
	// navigation or grid generation.
	ErrInvalidDate = errors.New("calendar: invalid date")

	// ErrInvalidDateKey is returned when a string is not a YYYY/MM/DD key.
	ErrInvalidDateKey = errors.New("calendar: invalid date key")
)

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// CalendarDate is a (year, zero-indexed month) pair. Day of month is not
// tracked.
type CalendarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// CalendarDateOf returns the month containing t, in t's location.
func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: int(t.Month()) - 1}
}

// Valid reports whether the month is within 0..11.
func (d CalendarDate) Valid() bool {
	return d.Month >= 0 && d.Month <= 11
}

// Prev returns the previous month, wrapping December of the prior year.
func (d CalendarDate) Prev() (CalendarDate, error) {
	if !d.Valid() {
		return d, fmt.Errorf("%w: %d/%d", ErrInvalidDate, d.Year, d.Month)
	}
	if d.Month == 0 {
		return CalendarDate{Year: d.Year - 1, Month: 11}, nil
	}
	return CalendarDate{Year: d.Year, Month: d.Month - 1}, nil
}

// Next returns the following month, wrapping to January of the next year.
func (d CalendarDate) Next() (CalendarDate, error) {
	if !d.Valid() {
		return d, fmt.Errorf("%w: %d/%d", ErrInvalidDate, d.Year, d.Month)
	}
	if d.Month == 11 {
		return CalendarDate{Year: d.Year + 1, Month: 0}, nil
	}
	return CalendarDate{Year: d.Year, Month: d.Month + 1}, nil
}

// MonthName returns the English month name, or "" for an invalid month.
func (d CalendarDate) MonthName() string {
	if !d.Valid() {
		return ""
	}
	return monthNames[d.Month]
}

// Start returns midnight of the first day of the month in loc.
func (d CalendarDate) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, time.Month(d.Month+1), 1, 0, 0, 0, 0, loc)
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%s %d", d.MonthName(), d.Year)
}

// DateKey identifies a calendar day as "YYYY/MM/DD" with a zero-indexed,
// zero-padded month. It doubles as the appointment id for that day.
type DateKey string

// FormatDateKey builds the key for the given day. month is zero-indexed.
func FormatDateKey(year, month, day int) DateKey {
	return DateKey(fmt.Sprintf("%d/%02d/%02d", year, month, day))
}

// DateKeyOf returns the key of the day containing t, in t's location.
func DateKeyOf(t time.Time) DateKey {
	return FormatDateKey(t.Year(), int(t.Month())-1, t.Day())
}

// ParseDateKey splits a key into year, zero-indexed month and day.
func ParseDateKey(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n < 0 {
			return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
		}
		nums[i] = n
	}
	year, month, day = nums[0], nums[1], nums[2]
	if month > 11 || day < 1 || day > DaysInMonth(year, month) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	// One spelling per day: keys are compared as strings.
	if FormatDateKey(year, month, day) != DateKey(s) {
		return 0, 0, 0, fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return year, month, day, nil
}

// Valid reports whether k parses as a real calendar day.
func (k DateKey) Valid() bool {
	_, _, _, err := ParseDateKey(string(k))
	return err == nil
}

// Time returns midnight of the key's day in loc.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	y, m, d, err := ParseDateKey(string(k))
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(y, time.Month(m+1), d, 0, 0, 0, 0, loc), nil
}

// Month returns the month the key's day belongs to.
func (k DateKey) Month() (CalendarDate, error) {
	y, m, _, err := ParseDateKey(string(k))
	if err != nil {
		return CalendarDate{}, err
	}
	return CalendarDate{Year: y, Month: m}, nil
}

func (k DateKey) String() string { return string(k) }
