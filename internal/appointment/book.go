package appointment

import (
	"maps"
	"slices"

	"apptcal/internal/calendar"
	"apptcal/internal/model"
)

// Book maps day keys to appointments. A Book is never modified after it is
// built: With and Without return a new Book and leave the receiver alone,
// so snapshots can share it freely.
type Book struct {
	m map[calendar.DateKey]model.Appointment
}

// NewBook builds a Book from the given appointments, keyed by their IDs.
// Later entries replace earlier ones with the same ID.
func NewBook(appts ...model.Appointment) Book {
	m := make(map[calendar.DateKey]model.Appointment, len(appts))
	for _, a := range appts {
		m[a.ID] = a
	}
	return Book{m: m}
}

// Get returns the appointment on key.
func (b Book) Get(key calendar.DateKey) (model.Appointment, bool) {
	a, ok := b.m[key]
	return a, ok
}

// Has reports whether key is booked.
func (b Book) Has(key calendar.DateKey) bool {
	_, ok := b.m[key]
	return ok
}

// Len returns the number of appointments.
func (b Book) Len() int { return len(b.m) }

// Keys returns the booked keys in ascending string order.
func (b Book) Keys() []calendar.DateKey {
	return slices.Sorted(maps.Keys(b.m))
}

// List returns the appointments ordered by key.
func (b Book) List() []model.Appointment {
	keys := b.Keys()
	out := make([]model.Appointment, 0, len(keys))
	for _, k := range keys {
		out = append(out, b.m[k])
	}
	return out
}

// With returns a copy of b with a stored under a.ID.
func (b Book) With(a model.Appointment) Book {
	m := make(map[calendar.DateKey]model.Appointment, len(b.m)+1)
	maps.Copy(m, b.m)
	m[a.ID] = a
	return Book{m: m}
}

// Without returns a copy of b without key.
func (b Book) Without(key calendar.DateKey) Book {
	if !b.Has(key) {
		return b
	}
	m := maps.Clone(b.m)
	delete(m, key)
	return Book{m: m}
}
