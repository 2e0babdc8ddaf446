package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Names   []string       `json:"names"`
	Price   *float64       `json:"price"`
	Partial bool           `json:"partial"`
	Nested  map[string]int `json:"nested"`
}

func (p payload) Cacheable() bool { return !p.Partial }

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestCache(ttl time.Duration) (*Cache, *clock) {
	clk := &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clk.now
	return New(store, ttl, nil), clk
}

func TestFetchColdAndWarmAreIdentical(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	price := 25000.0
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Names: []string{"Ana"}, Price: &price, Nested: map[string]int{}}, nil
	}

	cold, err := Fetch(context.Background(), c, "k", load)
	require.NoError(t, err)
	warm, err := Fetch(context.Background(), c, "k", load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	if diff := cmp.Diff(cold, warm); diff != "" {
		t.Fatalf("cold and warm differ (-cold +warm):\n%s", diff)
	}
}

func TestFetchExpiresAfterTTL(t *testing.T) {
	c, clk := newTestCache(time.Minute)
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{}, nil
	}

	_, _ = Fetch(context.Background(), c, "k", load)
	clk.t = clk.t.Add(59 * time.Second)
	_, _ = Fetch(context.Background(), c, "k", load)
	assert.Equal(t, 1, calls)

	clk.t = clk.t.Add(time.Second)
	_, _ = Fetch(context.Background(), c, "k", load)
	assert.Equal(t, 2, calls)
}

func TestInvalidateForcesReload(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{}, nil
	}

	_, _ = Fetch(context.Background(), c, "k", load)
	require.NoError(t, c.Invalidate(context.Background(), "k"))
	_, _ = Fetch(context.Background(), c, "k", load)

	assert.Equal(t, 2, calls)
}

func TestPartialValuesAreNotStored(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	calls := 0
	load := func(context.Context) (payload, error) {
		calls++
		return payload{Partial: true}, nil
	}

	_, _ = Fetch(context.Background(), c, "k", load)
	_, _ = Fetch(context.Background(), c, "k", load)
	assert.Equal(t, 2, calls)
}

func TestLoadErrorPropagates(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	boom := errors.New("boom")

	_, err := Fetch(context.Background(), c, "k", func(context.Context) (payload, error) {
		return payload{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}
func (brokenStore) Delete(context.Context, string) error { return errors.New("down") }

func TestStoreFailureDegradesToLoad(t *testing.T) {
	c := New(brokenStore{}, time.Minute, nil)

	got, err := Fetch(context.Background(), c, "k", func(context.Context) (payload, error) {
		return payload{Names: []string{"x"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got.Names)
	assert.Error(t, c.Invalidate(context.Background(), "k"))
}
