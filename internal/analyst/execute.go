package analyst

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

var dimensions = map[string]report.Dimension{
	FieldService: report.ByService,
	FieldBarber:  report.ByBarber,
	FieldClient:  report.ByClient,
	FieldVenue:   report.ByVenue,
	FieldDay:     report.ByDay,
	FieldMonth:   report.ByMonth,
}

type Answer struct {
	Query  Query          `json:"query"`
	Rows   int            `json:"rows"`
	Value  *float64       `json:"value,omitempty"`
	Label  string         `json:"label,omitempty"`
	Groups []report.Group `json:"groups,omitempty"`
	Text   string         `json:"text"`
}

// Execute evaluates a validated query over appointment rows.
func Execute(q Query, rows []view.Row) (Answer, error) {
	if err := q.Validate(); err != nil {
		return Answer{}, err
	}
	scope, err := q.Filter.apply(rows)
	if err != nil {
		return Answer{}, err
	}
	a := Answer{Query: q, Rows: len(scope)}

	switch q.Operation {
	case OpCount, OpSum:
		metric := report.Count
		if q.Operation == OpSum {
			metric = report.Revenue
		}
		if q.GroupBy != "" {
			groups, err := report.GroupBy(scope, dimensions[q.GroupBy], metric)
			if err != nil {
				return Answer{}, err
			}
			a.Groups = report.Top(groups, q.Limit)
			break
		}
		v := total(scope, metric)
		a.Value = &v

	case OpAvg:
		if q.GroupBy != "" {
			a.Groups = report.Top(averages(scope, dimensions[q.GroupBy]), q.Limit)
			break
		}
		if sum, n := priced(scope); n > 0 {
			v := report.Round2(sum / float64(n))
			a.Value = &v
		}

	case OpMode:
		d := dimensions[q.Field]
		labels := make([]string, 0, len(scope))
		for _, r := range scope {
			labels = append(labels, d.Label(r))
		}
		a.Label = report.Mode(labels)

	case OpDistinct:
		d := dimensions[q.Field]
		seen := map[string]bool{}
		for _, r := range scope {
			seen[d.Label(r)] = true
		}
		v := float64(len(seen))
		a.Value = &v

	case OpTop:
		metric := report.Count
		if q.Field == FieldPrice {
			metric = report.Revenue
		}
		groups, err := report.GroupBy(scope, dimensions[q.GroupBy], metric)
		if err != nil {
			return Answer{}, err
		}
		a.Groups = report.Top(groups, q.Limit)
	}

	a.Text = a.describe()
	return a, nil
}

func total(rows []view.Row, m report.Metric) float64 {
	if m == report.Count {
		return float64(len(rows))
	}
	sum, _ := priced(rows)
	return report.Round2(sum)
}

func priced(rows []view.Row) (float64, int) {
	var sum float64
	var n int
	for _, r := range rows {
		if p := r.Price(); p != nil {
			sum += *p
			n++
		}
	}
	return sum, n
}

func averages(rows []view.Row, d report.Dimension) []report.Group {
	sums := map[string]float64{}
	counts := map[string]int{}
	var order []string
	for _, r := range rows {
		p := r.Price()
		if p == nil {
			continue
		}
		l := d.Label(r)
		if _, ok := counts[l]; !ok {
			order = append(order, l)
		}
		sums[l] += *p
		counts[l]++
	}
	out := make([]report.Group, 0, len(order))
	for _, l := range order {
		out = append(out, report.Group{Label: l, Value: report.Round2(sums[l] / float64(counts[l]))})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func (f Filter) apply(rows []view.Row) ([]view.Row, error) {
	from, err := parseBound(f.From)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(f.To)
	if err != nil {
		return nil, err
	}
	byDate := view.Filter{From: from, To: to}

	out := make([]view.Row, 0, len(rows))
	for _, r := range rows {
		if !r.HasAppointment() || !byDate.Match(r) {
			continue
		}
		if !labelMatches(f.Service, r.ServiceName()) ||
			!labelMatches(f.Barber, r.BarberFullName) ||
			!labelMatches(f.Client, r.ClientFullName) ||
			!labelMatches(f.Venue, r.VenueName()) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func parseBound(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t := view.ParseDate(s)
	if t == nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidQuery, s)
	}
	return t, nil
}

func labelMatches(want, got string) bool {
	want = strings.TrimSpace(want)
	return want == "" || strings.EqualFold(want, strings.TrimSpace(got))
}

func (a Answer) describe() string {
	subject := string(a.Query.Operation)
	if a.Query.Field != "" {
		subject += " de " + a.Query.Field
	}
	if a.Query.GroupBy != "" {
		subject += " por " + a.Query.GroupBy
	}

	money := a.Query.Field == FieldPrice
	format := func(v float64) string {
		if money {
			return report.FormatMoney(v)
		}
		return report.FormatCount(int(v))
	}

	switch {
	case a.Groups != nil:
		if len(a.Groups) == 0 {
			return subject + ": sin datos"
		}
		lines := make([]string, 0, len(a.Groups)+1)
		lines = append(lines, subject+":")
		for _, g := range a.Groups {
			lines = append(lines, fmt.Sprintf("- %s: %s", g.Label, format(g.Value)))
		}
		return strings.Join(lines, "\n")
	case a.Label != "":
		return fmt.Sprintf("%s: %s", subject, a.Label)
	case a.Value != nil:
		return fmt.Sprintf("%s: %s", subject, format(*a.Value))
	default:
		return subject + ": " + report.NotAvailable
	}
}
