package view

import (
	"sort"
	"time"
)

type Option struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

// Choices are the values still selectable given the current filter.
type Choices struct {
	Venues   []Option   `json:"venues"`
	Barbers  []Option   `json:"barbers"`
	Clients  []Option   `json:"clients"`
	Services []Option   `json:"services"`
	MinDate  *time.Time `json:"min_date"`
	MaxDate  *time.Time `json:"max_date"`
}

// Cascade computes the option lists in the order venue, barber, client,
// service: each list only sees rows that pass the date range and the
// selections made above it.
func Cascade(rows []Row, f Filter) Choices {
	var ch Choices

	for _, r := range rows {
		if r.Date == nil {
			continue
		}
		if ch.MinDate == nil || r.Date.Before(*ch.MinDate) {
			d := *r.Date
			ch.MinDate = &d
		}
		if ch.MaxDate == nil || r.Date.After(*ch.MaxDate) {
			d := *r.Date
			ch.MaxDate = &d
		}
	}

	scope := Apply(rows, Filter{From: f.From, To: f.To})
	l := labelIndex(rows)

	ch.Venues = collect(scope, Row.VenueID, l, l.venues)
	scope = Apply(scope, Filter{VenueID: f.VenueID})

	ch.Barbers = collect(scope, Row.BarberID, l, l.barbers)
	scope = Apply(scope, Filter{BarberID: f.BarberID})

	ch.Clients = collect(scope, Row.ClientID, l, l.clients)
	scope = Apply(scope, Filter{ClientID: f.ClientID})

	ch.Services = collect(scope, Row.ServiceID, l, l.services)
	return ch
}

func collect(rows []Row, id func(Row) *int64, l labels, names map[int64]string) []Option {
	seen := map[int64]bool{}
	out := []Option{}
	for _, r := range rows {
		p := id(r)
		if p == nil || seen[*p] {
			continue
		}
		seen[*p] = true
		out = append(out, Option{ID: *p, Label: l.get(names, *p)})
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Label != out[k].Label {
			return out[i].Label < out[k].Label
		}
		return out[i].ID < out[k].ID
	})
	return out
}
