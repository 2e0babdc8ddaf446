package source

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
)

// row is one source record after header translation.
type row struct {
	cells map[string]string // canonical column -> raw value
	extra map[string]string // passed-through columns
}

type decoder struct {
	entity  models.Entity
	invalid map[string]int
}

func (d *decoder) id(r row, col string) *int64 {
	v, ok := schema.ParseID(r.cells[col])
	if !ok {
		d.invalid[col]++
	}
	return v
}

func (d *decoder) number(r row, col string) *float64 {
	v, ok := schema.ParseNumber(r.cells[col])
	if !ok {
		d.invalid[col]++
	}
	return v
}

func (d *decoder) text(r row, col string) string {
	return strings.TrimSpace(r.cells[col])
}

func (d *decoder) warnings() []Warning {
	cols := make([]string, 0, len(d.invalid))
	for c := range d.invalid {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	out := make([]Warning, 0, len(cols))
	for _, c := range cols {
		out = append(out, Warning{
			Entity:  d.entity,
			Kind:    WarningCoercion,
			Message: fmt.Sprintf("%s.%s: %d invalid value(s) set to null", d.entity, c, d.invalid[c]),
		})
	}
	return out
}

// translate maps the raw header onto canonical names and drops fully blank rows.
func translate(h schema.Header, t RawTable) []row {
	out := make([]row, 0, len(t.Rows))
	for _, raw := range t.Rows {
		if blank(raw) {
			continue
		}
		r := row{cells: map[string]string{}}
		for i, col := range h.Columns {
			val := ""
			if i < len(raw) {
				val = raw[i]
			}
			if h.Canonical[i] {
				r.cells[col] = val
				continue
			}
			if r.extra == nil {
				r.extra = map[string]string{}
			}
			r.extra[col] = val
		}
		out = append(out, r)
	}
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// decodeInto appends the typed rows of one table to rel.
func decodeInto(rel *models.Relations, entity models.Entity, rows []row) []Warning {
	d := &decoder{entity: entity, invalid: map[string]int{}}

	switch entity {
	case models.EntityClients:
		for _, r := range rows {
			rel.Clients = append(rel.Clients, models.Client{
				ID:        d.id(r, "id"),
				FirstName: d.text(r, "first_name"),
				LastName:  d.text(r, "last_name"),
				FullName:  d.text(r, "full_name"),
				Phone:     d.text(r, "phone"),
				Email:     d.text(r, "email"),
				Extra:     r.extra,
			})
		}
	case models.EntityBarbers:
		for _, r := range rows {
			rel.Barbers = append(rel.Barbers, models.Barber{
				ID:        d.id(r, "id"),
				FirstName: d.text(r, "first_name"),
				LastName:  d.text(r, "last_name"),
				FullName:  d.text(r, "full_name"),
				VenueID:   d.id(r, "venue_id"),
				Extra:     r.extra,
			})
		}
	case models.EntityServices:
		for _, r := range rows {
			rel.Services = append(rel.Services, models.Service{
				ID:          d.id(r, "id"),
				Name:        d.text(r, "name"),
				Price:       d.number(r, "price"),
				DurationMin: d.number(r, "duration_min"),
				Extra:       r.extra,
			})
		}
	case models.EntityVenues:
		for _, r := range rows {
			rel.Venues = append(rel.Venues, models.Venue{
				ID:    d.id(r, "id"),
				Name:  d.text(r, "name"),
				Extra: r.extra,
			})
		}
	case models.EntityAppointments:
		for _, r := range rows {
			rel.Appointments = append(rel.Appointments, models.Appointment{
				ID:        d.id(r, "id"),
				ClientID:  d.id(r, "client_id"),
				BarberID:  d.id(r, "barber_id"),
				ServiceID: d.id(r, "service_id"),
				VenueID:   d.id(r, "venue_id"),
				Date:      d.text(r, "date"),
				Time:      d.text(r, "time"),
				Extra:     r.extra,
			})
		}
	}
	return d.warnings()
}
