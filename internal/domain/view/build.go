package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

var ErrEmptyRelation = errors.New("view: required relation is empty")

// EmptyRelationError names the required relations that had no rows.
type EmptyRelationError struct {
	Entities []models.Entity
}

func (e *EmptyRelationError) Error() string {
	names := make([]string, len(e.Entities))
	for i, en := range e.Entities {
		names[i] = string(en)
	}
	return fmt.Sprintf("%s: %s", ErrEmptyRelation, strings.Join(names, ", "))
}

func (e *EmptyRelationError) Is(target error) bool {
	return target == ErrEmptyRelation
}

type Stats struct {
	AnchorRows int `json:"anchor_rows"`
	OutputRows int `json:"output_rows"`
	// DroppedRows counts rows removed by the inner policy.
	DroppedRows int `json:"dropped_rows"`
	// Unreachable counts appointments with no client under the clients anchor.
	Unreachable int `json:"unreachable"`
	// Orphans counts appointments (or barbers, for venues) whose key has no match.
	Orphans map[models.Entity]int `json:"orphans"`
	// FanOut counts extra rows produced by duplicate keys.
	FanOut       int `json:"fan_out"`
	InvalidDates int `json:"invalid_dates"`
}

type View struct {
	Rows    []Row   `json:"rows"`
	Stats   Stats   `json:"stats"`
	Options Options `json:"-"`
}

// Build joins the five relations into one row set.
//
// Under the clients anchor every client yields at least one row (left) and
// appointments fan out beneath it. Under the appointments anchor every
// appointment yields a row. Barber, service and venue are always looked up
// by key; venue comes from the appointment, or from the barber when the
// appointment has none. Output order follows the anchor's source order.
func Build(rel models.Relations, opts Options) (*View, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	v := &View{
		Rows:    []Row{},
		Stats:   Stats{Orphans: map[models.Entity]int{}},
		Options: opts,
	}

	var empty []models.Entity
	for _, e := range opts.Required {
		if rel.Count(e) == 0 {
			empty = append(empty, e)
		}
	}
	if len(empty) > 0 {
		return v, &EmptyRelationError{Entities: empty}
	}

	j := newJoiner(rel, opts.Policy, &v.Stats)

	switch opts.Anchor {
	case AnchorClients:
		v.Stats.AnchorRows = len(rel.Clients)
		byClient := indexBy(rel.Appointments, func(a models.Appointment) *int64 { return a.ClientID })

		for i := range rel.Clients {
			c := &rel.Clients[i]
			var appts []int
			if c.ID != nil {
				appts = byClient[*c.ID]
			}
			if len(appts) == 0 {
				if opts.Policy == PolicyInner {
					v.Stats.DroppedRows++
					continue
				}
				v.Rows = append(v.Rows, j.row(nil, nil, c, nil, nil, nil))
				continue
			}
			for _, ai := range appts {
				v.Rows = append(v.Rows, j.expand(&rel.Appointments[ai], []*models.Client{c})...)
			}
		}

		for i := range rel.Appointments {
			a := &rel.Appointments[i]
			if a.ClientID == nil || len(j.clients[*a.ClientID]) == 0 {
				v.Stats.Unreachable++
				if a.ClientID != nil {
					v.Stats.Orphans[models.EntityClients]++
				}
			} else if n := len(j.clients[*a.ClientID]); n > 1 {
				v.Stats.FanOut += n - 1
			}
		}

	case AnchorAppointments:
		v.Stats.AnchorRows = len(rel.Appointments)
		for i := range rel.Appointments {
			a := &rel.Appointments[i]
			clients := lookup(j.clients, rel.Clients, a.ClientID)
			if len(clients) == 0 {
				if a.ClientID != nil {
					v.Stats.Orphans[models.EntityClients]++
				}
				if opts.Policy == PolicyInner {
					v.Stats.DroppedRows++
					continue
				}
				clients = []*models.Client{nil}
			} else if len(clients) > 1 {
				v.Stats.FanOut += len(clients) - 1
			}
			v.Rows = append(v.Rows, j.expand(a, clients)...)
		}
	}

	v.Stats.OutputRows = len(v.Rows)
	return v, nil
}

type joiner struct {
	rel    models.Relations
	policy Policy
	stats  *Stats

	clients  map[int64][]int
	barbers  map[int64][]int
	services map[int64][]int
	venues   map[int64][]int
}

func newJoiner(rel models.Relations, policy Policy, stats *Stats) *joiner {
	return &joiner{
		rel:      rel,
		policy:   policy,
		stats:    stats,
		clients:  indexBy(rel.Clients, func(c models.Client) *int64 { return c.ID }),
		barbers:  indexBy(rel.Barbers, func(b models.Barber) *int64 { return b.ID }),
		services: indexBy(rel.Services, func(s models.Service) *int64 { return s.ID }),
		venues:   indexBy(rel.Venues, func(v models.Venue) *int64 { return v.ID }),
	}
}

// expand emits the rows of one appointment for the given client matches.
func (j *joiner) expand(a *models.Appointment, clients []*models.Client) []Row {
	barbers := lookup(j.barbers, j.rel.Barbers, a.BarberID)
	services := lookup(j.services, j.rel.Services, a.ServiceID)

	if len(barbers) == 0 && a.BarberID != nil {
		j.stats.Orphans[models.EntityBarbers]++
	}
	if len(services) == 0 && a.ServiceID != nil {
		j.stats.Orphans[models.EntityServices]++
	}

	if j.policy == PolicyInner && (len(barbers) == 0 || len(services) == 0) {
		j.stats.DroppedRows++
		return nil
	}
	if len(barbers) == 0 {
		barbers = []*models.Barber{nil}
	}
	if len(services) == 0 {
		services = []*models.Service{nil}
	}

	date := ParseDate(a.Date)
	if date == nil && strings.TrimSpace(a.Date) != "" {
		j.stats.InvalidDates++
	}

	var out []Row
	venueOrphan := false
	for _, c := range clients {
		for _, b := range barbers {
			venueID := a.VenueID
			if venueID == nil && b != nil {
				venueID = b.VenueID
			}
			venues := lookup(j.venues, j.rel.Venues, venueID)
			if len(venues) == 0 {
				if venueID != nil {
					venueOrphan = true
				}
				venues = []*models.Venue{nil}
			}
			for _, s := range services {
				for _, v := range venues {
					out = append(out, j.row(a, date, c, b, s, v))
				}
			}
		}
	}
	if venueOrphan {
		j.stats.Orphans[models.EntityVenues]++
	}
	if n := len(out) / len(clients); n > 1 {
		j.stats.FanOut += n - 1
	}
	return out
}

func (j *joiner) row(
	a *models.Appointment,
	date *time.Time,
	c *models.Client,
	b *models.Barber,
	s *models.Service,
	v *models.Venue,
) Row {
	r := Row{Appointment: a, Client: c, Barber: b, Service: s, Venue: v, Date: date}
	if c != nil {
		r.ClientFullName = c.DisplayName()
	}
	if b != nil {
		r.BarberFullName = b.DisplayName()
	}
	return r
}

func indexBy[T any](items []T, key func(T) *int64) map[int64][]int {
	idx := make(map[int64][]int, len(items))
	for i, it := range items {
		if k := key(it); k != nil {
			idx[*k] = append(idx[*k], i)
		}
	}
	return idx
}

func lookup[T any](idx map[int64][]int, items []T, key *int64) []*T {
	if key == nil {
		return nil
	}
	positions := idx[*key]
	out := make([]*T, 0, len(positions))
	for _, p := range positions {
		out = append(out, &items[p])
	}
	return out
}
