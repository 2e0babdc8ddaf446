package diagnostics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
)

type fakeLister struct {
	names []string
	err   error
}

func (f fakeLister) ListModels(context.Context) ([]string, error) { return f.names, f.err }

func TestRun_FileBackend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clientes.csv"), []byte("ID_Cliente,Nombre\n1,Ana\n"), 0o600))

	mapping := schema.Default()
	r := NewRunner(fakeLister{names: []string{"models/gemini"}}, source.NewFileBackend(dir, mapping), mapping, time.Second)

	checks := r.Run(context.Background())
	require.Len(t, checks, 6)

	assert.Equal(t, Check{Name: "generative-api", OK: true, Detail: "1 models available"}, checks[0])
	assert.Equal(t, "file clientes", checks[1].Name)
	assert.True(t, checks[1].OK)
	assert.Contains(t, checks[1].Detail, "1 rows")
	for _, c := range checks[2:] {
		assert.False(t, c.OK, c.Name)
	}
	assert.False(t, Healthy(checks))
}

func TestRun_HTTPBackendFallsThroughMissingEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/historial/citas" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"id":1}]`))
	}))
	defer srv.Close()

	mapping := schema.Default()
	r := NewRunner(fakeLister{names: []string{"models/gemini"}}, source.NewHTTPBackend(srv.URL, mapping, time.Second), mapping, 0)

	checks := r.Run(context.Background())
	require.Len(t, checks, len(models.Entities)+1)

	for i, e := range models.Entities {
		c := checks[i+1]
		assert.Equal(t, "http "+string(e), c.Name)
		assert.True(t, c.OK, c.Name)
		assert.Equal(t, mapping.Endpoints(e)[0]+": 1 records", c.Detail)
	}
	assert.True(t, Healthy(checks))
}

func TestRun_HTTPBackendUsesLaterEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/citas":
			w.WriteHeader(http.StatusNotFound)
		case "/sedes":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
		}
	}))
	defer srv.Close()

	mapping := schema.Default()
	r := NewRunner(fakeLister{err: errors.New("invalid key")}, source.NewHTTPBackend(srv.URL, mapping, time.Second), mapping, 0)

	byName := map[string]Check{}
	for _, c := range r.Run(context.Background()) {
		byName[c.Name] = c
	}

	assert.False(t, byName["generative-api"].OK)
	assert.Equal(t, "invalid key", byName["generative-api"].Detail)

	appts := byName["http "+string(models.EntityAppointments)]
	assert.True(t, appts.OK)
	assert.Equal(t, "/historial/citas: 2 records", appts.Detail)

	venues := byName["http "+string(models.EntityVenues)]
	assert.False(t, venues.OK)
	assert.Contains(t, venues.Detail, "status 500")
}

func TestRun_NoModelConfigured(t *testing.T) {
	mapping := schema.Default()
	checks := NewRunner(nil, source.NewFileBackend(t.TempDir(), mapping), mapping, 0).Run(context.Background())
	assert.False(t, checks[0].OK)
	assert.Contains(t, checks[0].Detail, "GOOGLE_API_KEY")
}
