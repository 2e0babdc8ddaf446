package report

import (
	"math"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
)

// NotAvailable stands in for any KPI that cannot be computed.
const NotAvailable = "N/A"

type Summary struct {
	Rows               int     `json:"rows"`
	Appointments       int     `json:"appointments"`
	PricedAppointments int     `json:"priced_appointments"`
	Clients            int     `json:"clients"`
	Revenue            float64 `json:"revenue"`
	AverageTicket      float64 `json:"average_ticket"`
	TopService         string  `json:"top_service"`
	TopBarber          string  `json:"top_barber"`
	TopVenue           string  `json:"top_venue"`
}

// Summarize computes the KPIs over already filtered rows.
//
// Revenue only counts appointments whose service has a price. TopService
// and TopVenue are the most frequent names; TopBarber earned the most.
// Ties go to whichever value appeared first.
func Summarize(rows []view.Row) Summary {
	s := Summary{Rows: len(rows)}

	clients := map[int64]bool{}
	var services, venues []string
	barberRevenue := newTally()

	for _, r := range rows {
		if id := r.ClientID(); id != nil {
			clients[*id] = true
		}
		if !r.HasAppointment() {
			continue
		}
		s.Appointments++
		services = append(services, r.ServiceName())
		venues = append(venues, r.VenueName())

		p := r.Price()
		if p == nil {
			continue
		}
		s.PricedAppointments++
		s.Revenue += *p
		if r.BarberFullName != "" {
			barberRevenue.add(r.BarberFullName, *p)
		}
	}

	s.Clients = len(clients)
	s.Revenue = Round2(s.Revenue)
	if s.PricedAppointments > 0 {
		s.AverageTicket = Round2(s.Revenue / float64(s.PricedAppointments))
	}
	s.TopService = Mode(services)
	s.TopVenue = Mode(venues)
	s.TopBarber = barberRevenue.top()
	return s
}

// Mode returns the most frequent non-empty value, NotAvailable for none.
func Mode(values []string) string {
	t := newTally()
	for _, v := range values {
		if v != "" {
			t.add(v, 1)
		}
	}
	return t.top()
}

// Round2 rounds to cents, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// tally keeps insertion order so ties resolve to the first key seen.
type tally struct {
	order []string
	sums  map[string]float64
}

func newTally() *tally {
	return &tally{sums: map[string]float64{}}
}

func (t *tally) add(key string, v float64) {
	if _, ok := t.sums[key]; !ok {
		t.order = append(t.order, key)
	}
	t.sums[key] += v
}

func (t *tally) top() string {
	best := NotAvailable
	bestVal := math.Inf(-1)
	for _, k := range t.order {
		if t.sums[k] > bestVal {
			best, bestVal = k, t.sums[k]
		}
	}
	return best
}
