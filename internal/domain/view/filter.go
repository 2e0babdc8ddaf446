package view

import (
	"fmt"
	"strings"
	"time"
)

// Filter narrows the view. Set fields are AND-composed; a nil field
// matches everything.
type Filter struct {
	VenueID   *int64
	BarberID  *int64
	ClientID  *int64
	ServiceID *int64
	// From and To are inclusive calendar days.
	From *time.Time
	To   *time.Time
}

func (f Filter) IsZero() bool {
	return f.VenueID == nil && f.BarberID == nil && f.ClientID == nil &&
		f.ServiceID == nil && f.From == nil && f.To == nil
}

func (f Filter) Match(r Row) bool {
	if !sameID(f.VenueID, r.VenueID()) ||
		!sameID(f.BarberID, r.BarberID()) ||
		!sameID(f.ClientID, r.ClientID()) ||
		!sameID(f.ServiceID, r.ServiceID()) {
		return false
	}
	return f.matchDates(r)
}

// a row with no date never satisfies a date range
func (f Filter) matchDates(r Row) bool {
	if f.From == nil && f.To == nil {
		return true
	}
	if r.Date == nil {
		return false
	}
	d := Day(*r.Date)
	if f.From != nil && d.Before(Day(f.From.In(d.Location()))) {
		return false
	}
	if f.To != nil && d.After(Day(f.To.In(d.Location()))) {
		return false
	}
	return true
}

func sameID(want, got *int64) bool {
	if want == nil {
		return true
	}
	return got != nil && *got == *want
}

func Apply(rows []Row, f Filter) []Row {
	if f.IsZero() {
		return rows
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Describe renders the active filters with labels taken from rows.
func (f Filter) Describe(rows []Row) string {
	if f.IsZero() {
		return "Todos los datos"
	}
	labels := labelIndex(rows)

	var parts []string
	if f.VenueID != nil {
		parts = append(parts, "Sede: "+labels.get(labels.venues, *f.VenueID))
	}
	if f.BarberID != nil {
		parts = append(parts, "Barbero: "+labels.get(labels.barbers, *f.BarberID))
	}
	if f.ClientID != nil {
		parts = append(parts, "Cliente: "+labels.get(labels.clients, *f.ClientID))
	}
	if f.ServiceID != nil {
		parts = append(parts, "Servicio: "+labels.get(labels.services, *f.ServiceID))
	}
	if f.From != nil {
		parts = append(parts, "Desde: "+f.From.Format("2006-01-02"))
	}
	if f.To != nil {
		parts = append(parts, "Hasta: "+f.To.Format("2006-01-02"))
	}
	return strings.Join(parts, " | ")
}

type labels struct {
	venues, barbers, clients, services map[int64]string
}

func (l labels) get(m map[int64]string, id int64) string {
	if s, ok := m[id]; ok && s != "" {
		return s
	}
	return fmt.Sprintf("#%d", id)
}

func labelIndex(rows []Row) labels {
	l := labels{
		venues:   map[int64]string{},
		barbers:  map[int64]string{},
		clients:  map[int64]string{},
		services: map[int64]string{},
	}
	for _, r := range rows {
		if id := r.VenueID(); id != nil {
			l.venues[*id] = r.VenueName()
		}
		if id := r.BarberID(); id != nil {
			l.barbers[*id] = r.BarberFullName
		}
		if id := r.ClientID(); id != nil {
			l.clients[*id] = r.ClientFullName
		}
		if id := r.ServiceID(); id != nil {
			l.services[*id] = r.ServiceName()
		}
	}
	return l
}
