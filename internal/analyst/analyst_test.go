package analyst

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

func id(v int64) *int64        { return &v }
func price(v float64) *float64 { return &v }

func rows(t *testing.T) []view.Row {
	t.Helper()
	v, err := view.Build(models.Relations{
		Clients: []models.Client{
			{ID: id(1), FirstName: "Ana", LastName: "Gomez"},
			{ID: id(2), FirstName: "Luis", LastName: "Rojas"},
		},
		Barbers: []models.Barber{
			{ID: id(10), FirstName: "Juan"},
			{ID: id(11), FirstName: "Pedro"},
		},
		Services: []models.Service{
			{ID: id(5), Name: "Corte", Price: price(50000)},
			{ID: id(6), Name: "Barba", Price: price(30000)},
		},
		Appointments: []models.Appointment{
			{ClientID: id(1), BarberID: id(10), ServiceID: id(5), Date: "2024-03-01"},
			{ClientID: id(1), BarberID: id(11), ServiceID: id(6), Date: "2024-03-10"},
			{ClientID: id(2), BarberID: id(10), ServiceID: id(5), Date: "2024-04-01"},
		},
	}, view.DefaultOptions())
	require.NoError(t, err)
	return v.Rows
}

func TestParseQuery(t *testing.T) {
	q, err := ParseQuery("Claro:\n```json\n{\"operation\": \"top\", \"group_by\": \"Barber\", \"filter\": {\"service\": \"a {b}\"}}\n```")
	require.NoError(t, err)
	assert.Equal(t, OpTop, q.Operation)
	assert.Equal(t, "barber", q.GroupBy)
	assert.Equal(t, defaultLimit, q.Limit)
	assert.Equal(t, "a {b}", q.Filter.Service)
}

func TestParseQueryRejects(t *testing.T) {
	for name, text := range map[string]string{
		"no json":         "no sé",
		"unknown field":   `{"operation": "count", "code": "import os"}`,
		"unknown op":      `{"operation": "exec"}`,
		"sum of names":    `{"operation": "sum", "field": "client"}`,
		"bad group":       `{"operation": "count", "group_by": "phone"}`,
		"limit too large": `{"operation": "top", "group_by": "service", "limit": 500}`,
		"unterminated":    `{"operation": "count"`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseQuery(text)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestExecute(t *testing.T) {
	r := rows(t)

	count, err := Execute(Query{Operation: OpCount}, r)
	require.NoError(t, err)
	assert.Equal(t, 3.0, *count.Value)

	sum, err := Execute(Query{Operation: OpSum, Field: FieldPrice, Filter: Filter{Barber: "juan"}}, r)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, *sum.Value)
	assert.Equal(t, "sum de price: $100,000.00", sum.Text)

	avg, err := Execute(Query{Operation: OpAvg, Field: FieldPrice, Filter: Filter{From: "2024-03-01", To: "2024-03-31"}}, r)
	require.NoError(t, err)
	assert.Equal(t, 40000.0, *avg.Value)

	mode, err := Execute(Query{Operation: OpMode, Field: FieldService}, r)
	require.NoError(t, err)
	assert.Equal(t, "Corte", mode.Label)

	distinct, err := Execute(Query{Operation: OpDistinct, Field: FieldClient}, r)
	require.NoError(t, err)
	assert.Equal(t, 2.0, *distinct.Value)

	top, err := Execute(Query{Operation: OpTop, GroupBy: FieldBarber, Field: FieldPrice, Limit: 1}, r)
	require.NoError(t, err)
	assert.Equal(t, []report.Group{{Label: "Juan", Value: 100000}}, top.Groups)

	byMonth, err := Execute(Query{Operation: OpCount, GroupBy: FieldMonth}, r)
	require.NoError(t, err)
	assert.Equal(t, []report.Group{{Label: "2024-03", Value: 2}, {Label: "2024-04", Value: 1}}, byMonth.Groups)

	_, err = Execute(Query{Operation: OpCount, Filter: Filter{From: "ayer"}}, r)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

type scripted struct{ text string }

func (s scripted) Generate(context.Context, narrative.Request) (*narrative.Response, error) {
	return &narrative.Response{Text: s.text}, nil
}

func TestAsk(t *testing.T) {
	r := rows(t)

	a := New(narrative.NewNarrator(scripted{text: `{"operation":"count"}`}, time.Second, nil))
	out, err := a.Ask(context.Background(), r, "¿Cuántas citas hubo?")
	require.NoError(t, err)
	require.NotNil(t, out.Answer)
	assert.Equal(t, 3.0, *out.Answer.Value)

	bad := New(narrative.NewNarrator(scripted{text: "print(df)"}, time.Second, nil))
	out, err = bad.Ask(context.Background(), r, "hazlo")
	require.NoError(t, err)
	assert.Nil(t, out.Answer)
	assert.Equal(t, NoticeUnparseable, out.Notice)

	off := New(narrative.NewNarrator(nil, time.Second, nil))
	out, err = off.Ask(context.Background(), r, "hola")
	require.NoError(t, err)
	assert.Equal(t, narrative.NoticeNotConfigured, out.Notice)

	_, err = off.Ask(context.Background(), r, "   ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}
