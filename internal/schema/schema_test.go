package schema

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

func TestDefaultMappingIsValid(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)

	for _, e := range models.Entities {
		assert.NotEmpty(t, m.File(e), e)
		assert.NotEmpty(t, m.Endpoints(e), e)
	}
	assert.Equal(t, "citas", m.File(models.EntityAppointments))
}

func TestResolveMatchesAliasesAndPassesThrough(t *testing.T) {
	m := Default()

	h := m.Resolve(models.EntityAppointments, []string{
		"\ufeffID_Cliente", "idBarbero", "id_servicio", "Fecha", "Hora", "Notas",
	})

	assert.Equal(t, []string{"client_id", "barber_id", "service_id", "date", "time", "Notas"}, h.Columns)
	assert.Equal(t, []bool{true, true, true, true, true, false}, h.Canonical)
	assert.Empty(t, h.Missing)
	assert.Empty(t, h.Duplicates)
}

func TestResolveReportsMissingAndDuplicates(t *testing.T) {
	m := Default()

	h := m.Resolve(models.EntityServices, []string{"ID_Servicio", "idServicio", "Precio"})

	assert.Equal(t, []string{"id", "idServicio", "price"}, h.Columns)
	assert.Equal(t, []string{"idServicio"}, h.Duplicates)
	assert.Equal(t, []string{"name"}, h.Missing)
}

func TestValidateRejectsDrift(t *testing.T) {
	base := `
entities:
  clients: {file: c, endpoints: [/c], required: [id], columns: {id: [ID_Cliente]}}
  barbers: {file: b, endpoints: [/b], required: [id], columns: {id: [ID_Barbero]}}
  services: {file: s, endpoints: [/s], required: [id], columns: {id: [ID_Servicio]}}
  venues: {file: v, endpoints: [/v], required: [id], columns: {id: [ID_Sede]}}
`
	cases := map[string]string{
		"missing entity": base,
		"unknown canonical": base + `
  appointments: {file: a, endpoints: [/a], columns: {colour: [Color]}}
`,
		"alias collision": base + `
  appointments: {file: a, endpoints: [/a], columns: {client_id: [Cliente], barber_id: [cliente]}}
`,
		"required undeclared": base + `
  appointments: {file: a, endpoints: [/a], required: [date], columns: {client_id: [ID_Cliente]}}
`,
		"unknown entity": base + `
  appointments: {file: a, endpoints: [/a], columns: {client_id: [ID_Cliente]}}
  products: {file: p, endpoints: [/p]}
`,
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, defaultMapping, 0o600))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clientes", m.File(models.EntityClients))

	_, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	cases := []struct {
		in   string
		want *int64
		ok   bool
	}{
		{"42", ptr(int64(42)), true},
		{" 7 ", ptr(int64(7)), true},
		{"3.0", ptr(int64(3)), true},
		{"", nil, true},
		{"NaN", nil, true},
		{"abc", nil, false},
		{"2.5", nil, false},
		{"9223372036854775807", ptr(int64(math.MaxInt64)), true},
		{"-9223372036854775808", ptr(int64(math.MinInt64)), true},
		{"9223372036854775808", nil, false},
		{"-9223372036854775809", nil, false},
		{"9.3e18", nil, false},
		{"-9.3e18", nil, false},
		{"1e18", ptr(int64(1e18)), true},
	}
	for _, tc := range cases {
		got, ok := ParseID(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}

func TestParseNumber(t *testing.T) {
	got, ok := ParseNumber("$ 25,000")
	require.True(t, ok)
	assert.Equal(t, 25000.0, *got)

	got, ok = ParseNumber("12.5")
	require.True(t, ok)
	assert.Equal(t, 12.5, *got)

	got, ok = ParseNumber("gratis")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("id"))
	assert.True(t, IsIdentifier("venue_id"))
	assert.False(t, IsIdentifier("idea"))
	assert.False(t, IsIdentifier("price"))
}

func ptr[T any](v T) *T { return &v }
