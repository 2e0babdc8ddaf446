package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

type fakeModel struct {
	resp  *Response
	err   error
	delay time.Duration
	panic bool
	last  Request
}

func (f *fakeModel) Generate(ctx context.Context, req Request) (*Response, error) {
	f.last = req
	if f.panic {
		panic("boom")
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

func id(v int64) *int64        { return &v }
func price(v float64) *float64 { return &v }

func sampleRows(t *testing.T) []view.Row {
	t.Helper()
	v, err := view.Build(models.Relations{
		Clients:  []models.Client{{ID: id(1), FirstName: "Ana"}},
		Barbers:  []models.Barber{{ID: id(10), FirstName: "Juan"}},
		Services: []models.Service{{ID: id(5), Name: "Corte", Price: price(25000)}},
		Appointments: []models.Appointment{
			{ClientID: id(1), BarberID: id(10), ServiceID: id(5), Date: "2024-03-01"},
			{ClientID: id(1), BarberID: id(10), ServiceID: id(5), Date: "2024-03-08"},
		},
	}, view.DefaultOptions())
	require.NoError(t, err)
	return v.Rows
}

func TestDigestIsDeterministicAndBounded(t *testing.T) {
	rows := sampleRows(t)

	a := AnalysisPrompt(BuildDigest(rows, "Todos los datos"))
	b := AnalysisPrompt(BuildDigest(rows, "Todos los datos"))
	assert.Equal(t, a, b)
	assert.Contains(t, a, "Ingresos totales: $50,000.00")
	assert.Contains(t, a, "- Corte: $50,000.00")
	assert.Contains(t, a, "- 2024-03: 2")

	long := CampaignPrompt(BuildDigest(rows, ""), strings.Repeat("ñ", 10000))
	assert.Equal(t, MaxPromptRunes, len([]rune(long)))
}

func TestAnalyzeSuccess(t *testing.T) {
	m := &fakeModel{resp: &Response{Text: "Buen mes."}}
	n := NewNarrator(m, time.Second, nil)

	res := n.Analyze(context.Background(), BuildDigest(sampleRows(t), ""))

	assert.True(t, res.OK)
	assert.Equal(t, "Buen mes.", res.Text)
	assert.Empty(t, res.Notice)
	assert.Contains(t, m.last.Prompt, "Kingdom Barber")
}

func TestFailuresDegradeToNotice(t *testing.T) {
	cases := []struct {
		name   string
		model  Model
		notice string
	}{
		{"not configured", nil, NoticeNotConfigured},
		{"error", &fakeModel{err: errors.New("503")}, NoticeFailed},
		{"blocked", &fakeModel{err: ErrBlocked}, NoticeBlocked},
		{"empty", &fakeModel{resp: &Response{}}, NoticeEmpty},
		{"nil response", &fakeModel{}, NoticeEmpty},
		{"timeout", &fakeModel{delay: time.Second, resp: &Response{Text: "late"}}, NoticeTimeout},
		{"panic", &fakeModel{panic: true}, NoticeFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewNarrator(tc.model, 20*time.Millisecond, nil)
			res := n.Analyze(context.Background(), Digest{})
			assert.False(t, res.OK)
			assert.Equal(t, tc.notice, res.Notice)
		})
	}
}

func TestImageRequiresImagePayload(t *testing.T) {
	textOnly := NewNarrator(&fakeModel{resp: &Response{Text: "no puedo"}}, time.Second, nil)
	res := textOnly.Image(context.Background(), "tijeras doradas")
	assert.False(t, res.OK)
	assert.Equal(t, NoticeEmpty, res.Notice)

	m := &fakeModel{resp: &Response{Image: []byte{1, 2}, ImageMIME: "image/png"}}
	res = NewNarrator(m, time.Second, nil).Image(context.Background(), "tijeras doradas")
	assert.True(t, res.OK)
	assert.Equal(t, "image/png", res.ImageMIME)
	assert.True(t, m.last.WantImage)
}

func TestNewGenAIModelRequiresKey(t *testing.T) {
	_, err := NewGenAIModel(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
