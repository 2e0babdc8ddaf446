package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/cache"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Razón Social":             "razón social",
		"RAZON_SOCIAL":             "nombre del establecimiento",
		"Nombre-Establecimiento":   "nombre del establecimiento",
		"  Municipio   Domicilio ": "municipio",
		"DEPTO":                    "departamento",
		"Municipio Comercial.":     "municipio comercial",
		"Barrio (*)":               "barrio",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHeader(in), in)
	}
}

const sample = "Razon_Social,Municipio Comercial\nA,Pereira\nB,Pereira\nC,Cali\nD,\n"

func TestSummarize(t *testing.T) {
	f, err := ParseCSV(strings.NewReader(sample))
	require.NoError(t, err)
	ds, _ := Lookup("nacional")

	s := Summarize(ds, f)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Distinct)
	assert.Equal(t, "Pereira", s.Mode)
	assert.Equal(t, []report.Group{{Label: "Pereira", Value: 2}, {Label: "Cali", Value: 1}}, s.Top)

	filtered := f.Filter("municipio comercial", "Cali")
	assert.Len(t, filtered.Rows, 1)
	assert.Equal(t, []string{"A", "B", "C", "D"}, f.Values("nombre del establecimiento"))
}

func TestSummarizeMissingDimension(t *testing.T) {
	f, err := ParseCSV(strings.NewReader("otra\nx\n"))
	require.NoError(t, err)
	ds, _ := Lookup("local")

	s := Summarize(ds, f)
	assert.Equal(t, report.NotAvailable, s.Mode)
	assert.NotEmpty(t, s.Notice)
	assert.Equal(t, []string{"otra"}, s.Columns)
}

func TestLoaderDownloadsOnceThroughCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sample))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(time.Second, cache.New(cache.NewMemoryStore(), time.Minute, nil))
	ds := Dataset{Key: "test", URL: srv.URL, Dimension: "municipio comercial"}

	f1, err := l.Load(context.Background(), ds)
	require.NoError(t, err)
	f2, err := l.Load(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Equal(t, int32(1), hits.Load())
}

func TestLoaderReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewLoader(time.Second, nil).Load(context.Background(), Dataset{URL: srv.URL})
	assert.ErrorContains(t, err, "503")
}

func TestLoaderRejectsOversizedDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sample))
	}))
	t.Cleanup(srv.Close)

	l := NewLoader(time.Second, nil)
	l.maxBytes = int64(len(sample)) - 5
	_, err := l.Load(context.Background(), Dataset{URL: srv.URL})
	assert.ErrorIs(t, err, ErrTooLarge)

	l.maxBytes = int64(len(sample))
	f, err := l.Load(context.Background(), Dataset{URL: srv.URL})
	require.NoError(t, err)
	assert.NotEmpty(t, f.Rows)
}
