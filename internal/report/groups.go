package report

import (
	"fmt"
	"sort"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
)

type Dimension string

const (
	ByService Dimension = "service"
	ByBarber  Dimension = "barber"
	ByVenue   Dimension = "venue"
	ByClient  Dimension = "client"
	ByDay     Dimension = "day"
	ByMonth   Dimension = "month"
)

type Metric string

const (
	Revenue Metric = "revenue"
	Count   Metric = "count"
)

const (
	Unassigned = "Sin asignar"
	Undated    = "Sin fecha"
)

type Group struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (d Dimension) Valid() bool {
	switch d {
	case ByService, ByBarber, ByVenue, ByClient, ByDay, ByMonth:
		return true
	}
	return false
}

func (m Metric) Valid() bool {
	return m == Revenue || m == Count
}

func (d Dimension) temporal() bool {
	return d == ByDay || d == ByMonth
}

// Label is the group key of a row for the dimension.
func (d Dimension) Label(r view.Row) string {
	var s string
	switch d {
	case ByService:
		s = r.ServiceName()
	case ByBarber:
		s = r.BarberFullName
	case ByVenue:
		s = r.VenueName()
	case ByClient:
		s = r.ClientFullName
	case ByDay, ByMonth:
		if r.Date == nil {
			return Undated
		}
		if d == ByDay {
			return r.Date.Format("2006-01-02")
		}
		return r.Date.Format("2006-01")
	}
	if s == "" {
		return Unassigned
	}
	return s
}

// GroupBy aggregates appointment rows. Named dimensions are ordered by value
// descending then label; day and month are chronological.
func GroupBy(rows []view.Row, d Dimension, m Metric) ([]Group, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("report: unknown dimension %q", d)
	}
	if !m.Valid() {
		return nil, fmt.Errorf("report: unknown metric %q", m)
	}

	t := newTally()
	for _, r := range rows {
		if !r.HasAppointment() {
			continue
		}
		switch m {
		case Count:
			t.add(d.Label(r), 1)
		case Revenue:
			if p := r.Price(); p != nil {
				t.add(d.Label(r), *p)
			}
		}
	}

	out := make([]Group, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, Group{Label: k, Value: Round2(t.sums[k])})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if d.temporal() {
			return out[i].Label < out[j].Label
		}
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

// Top keeps the first n groups.
func Top(groups []Group, n int) []Group {
	if n <= 0 || len(groups) <= n {
		return groups
	}
	return groups[:n]
}
