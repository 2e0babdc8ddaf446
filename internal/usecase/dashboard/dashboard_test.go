package dashboard

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/analyst"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/cache"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
)

func id(v int64) *int64        { return &v }
func price(v float64) *float64 { return &v }

type fakeLoader struct {
	loads atomic.Int32
	ds    source.Dataset
}

func (f *fakeLoader) Load(context.Context) *source.Dataset {
	f.loads.Add(1)
	ds := f.ds
	return &ds
}

func (f *fakeLoader) CacheKey() string { return "dataset:test" }

type fakeAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeAuditor) Dispatch(ev audit.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return true
}

func (f *fakeAuditor) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, ev := range f.events {
		out[i] = ev.Action
	}
	return out
}

type fakeModel struct {
	text  string
	image []byte
	err   error
}

func (m *fakeModel) Generate(_ context.Context, req narrative.Request) (*narrative.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	if req.WantImage {
		return &narrative.Response{Image: m.image, ImageMIME: "image/png"}, nil
	}
	return &narrative.Response{Text: m.text}, nil
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (a *fakeArchiver) Put(_ context.Context, key, _ string, _ []byte) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "s3://bucket/" + key, nil
}

func relations() models.Relations {
	return models.Relations{
		Clients: []models.Client{
			{ID: id(1), FirstName: "Ana", LastName: "Gomez"},
			{ID: id(2), FirstName: "Luis", LastName: "Rojas"},
			{ID: id(3), FirstName: "Sofia", LastName: "Lopez"},
		},
		Barbers: []models.Barber{
			{ID: id(10), FirstName: "Juan", LastName: "Perez", VenueID: id(100)},
		},
		Services: []models.Service{
			{ID: id(5), Name: "Corte", Price: price(50000)},
			{ID: id(6), Name: "Barba", Price: price(30000)},
			{ID: id(7), Name: "Tinte", Price: price(20000)},
		},
		Venues: []models.Venue{{ID: id(100), Name: "Centro"}},
		Appointments: []models.Appointment{
			{ID: id(1), ClientID: id(1), BarberID: id(10), ServiceID: id(5), Date: "2024-03-01"},
			{ID: id(2), ClientID: id(1), BarberID: id(10), ServiceID: id(6), Date: "2024-03-10"},
			{ID: id(3), ClientID: id(2), BarberID: id(10), ServiceID: id(7), Date: "2024-04-02"},
		},
	}
}

func newData(t *testing.T, rel models.Relations) (*Data, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{ds: source.Dataset{
		Relations: rel,
		Tables:    map[models.Entity]source.TableStatus{models.EntityClients: {Source: "clientes.csv", Rows: len(rel.Clients), Available: true}},
		Warnings:  []source.Warning{{Entity: models.EntityServices, Kind: source.WarningCoercion, Message: "price: 1 invalid value(s) set to null"}},
		Backend:   "file:test",
	}}
	c := cache.New(cache.NewMemoryStore(), time.Minute, zap.NewNop())
	return NewData(loader, c, view.DefaultOptions()), loader
}

func TestSnapshot_BuildsLeftJoinedView(t *testing.T) {
	data, loader := newData(t, relations())

	snap, err := data.Snapshot(context.Background())
	require.NoError(t, err)

	// Ana twice, Luis once, Sofia with no appointment
	assert.Len(t, snap.Rows, 4)
	assert.Empty(t, snap.Empty)
	assert.Equal(t, []string{"services: price: 1 invalid value(s) set to null"}, snap.Warnings)

	_, err = data.Snapshot(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, loader.loads.Load())
}

func TestSnapshot_ThreeClientsOneWithoutVisits(t *testing.T) {
	rel := relations()
	rel.Appointments = []models.Appointment{
		{ID: id(1), ClientID: id(1), BarberID: id(10), ServiceID: id(5), Date: "2024-03-01"},
		{ID: id(2), ClientID: id(2), BarberID: id(10), ServiceID: id(6), Date: "2024-03-10"},
	}
	data, loader := newData(t, rel)

	cold, err := data.Snapshot(context.Background())
	require.NoError(t, err)
	warm, err := data.Snapshot(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, loader.loads.Load())

	require.Len(t, cold.Rows, 3)
	if diff := cmp.Diff(cold.Rows, warm.Rows); diff != "" {
		t.Fatalf("warm view differs from cold (-cold +warm):\n%s", diff)
	}

	assert.Equal(t, "Ana Gomez", cold.Rows[0].ClientFullName)
	assert.Equal(t, "Luis Rojas", cold.Rows[1].ClientFullName)
	for _, r := range cold.Rows[:2] {
		assert.True(t, r.HasAppointment())
		assert.Equal(t, "Juan Perez", r.BarberFullName)
		assert.NotNil(t, r.Date)
	}

	lone := cold.Rows[2]
	assert.Equal(t, "Sofia Lopez", lone.ClientFullName)
	assert.Nil(t, lone.Appointment)
	assert.Nil(t, lone.Barber)
	assert.Nil(t, lone.Service)
	assert.Nil(t, lone.Venue)
	assert.Nil(t, lone.Date)
	assert.Empty(t, lone.BarberFullName)
	assert.Nil(t, lone.Price())
}

func TestSnapshot_EmptyRequiredRelationIsSignalled(t *testing.T) {
	rel := relations()
	rel.Appointments = nil
	data, _ := newData(t, rel)

	snap, err := data.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Empty(t, snap.Rows)
	assert.Equal(t, []models.Entity{models.EntityAppointments}, snap.Empty)
	assert.Contains(t, snap.Warnings[len(snap.Warnings)-1], "appointments")
}

func TestGetDashboard_KPIs(t *testing.T) {
	data, _ := newData(t, relations())

	d, err := NewGetDashboard(data).Execute(context.Background(), view.Filter{})
	require.NoError(t, err)

	assert.Equal(t, 100000.0, d.Summary.Revenue)
	assert.Equal(t, 33333.33, d.Summary.AverageTicket)
	assert.Equal(t, "Juan Perez", d.Summary.TopBarber)
	assert.Len(t, d.Groups["revenue-by-service"], 3)
	assert.Equal(t, "Corte", d.Groups["revenue-by-service"][0].Label)
}

func TestGetView_AppliesFilter(t *testing.T) {
	data, _ := newData(t, relations())

	res, err := NewGetView(data).Execute(context.Background(), view.Filter{ClientID: id(1)})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
	assert.Contains(t, res.Description, "Ana Gomez")

	choices, err := NewGetFilters(data).Execute(context.Background(), view.Filter{})
	require.NoError(t, err)
	assert.Len(t, choices.Clients, 3)
}

func TestRenderChart(t *testing.T) {
	data, _ := newData(t, relations())
	uc := NewRenderChart(data)

	f, err := uc.Execute(context.Background(), "revenue-by-service", FormatWebP, view.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "image/webp", f.ContentType)
	assert.NotEmpty(t, f.Data)

	_, err = uc.Execute(context.Background(), "nope", FormatPNG, view.Filter{})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeUnknownChart))

	_, err = uc.Execute(context.Background(), "revenue-by-service", FormatPNG, view.Filter{ClientID: id(3)})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNoData))
}

func TestGetTable(t *testing.T) {
	data, _ := newData(t, relations())
	uc := NewGetTable(data)

	res, err := uc.Execute(context.Background(), models.EntityClients)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 3)
	assert.True(t, res.Status.Available)

	_, err = uc.Execute(context.Background(), models.Entity("products"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeUnknownEntity))

	products, err := NewListProducts(data).Execute(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
}

func TestRefreshData_ReloadsAndAudits(t *testing.T) {
	data, loader := newData(t, relations())
	aud := &fakeAuditor{}

	_, err := data.Dataset(context.Background())
	require.NoError(t, err)

	_, err = NewRefreshData(data, aud, zap.NewNop()).Execute(context.Background(), "admin")
	require.NoError(t, err)

	assert.EqualValues(t, 2, loader.loads.Load())
	assert.Equal(t, []string{audit.ActionDataRefreshed}, aud.actions())
}

func TestExportView(t *testing.T) {
	data, _ := newData(t, relations())
	aud := &fakeAuditor{}

	f, err := NewExportView(data, aud, "UTC").Execute(context.Background(), "admin", view.Filter{})
	require.NoError(t, err)

	assert.Regexp(t, `^Vista_Citas_\d{4}-\d{2}-\d{2}\.xlsx$`, f.Name)
	assert.Equal(t, []byte("PK"), f.Data[:2])
	assert.Equal(t, []string{audit.ActionViewExported}, aud.actions())
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateReport_FullFlow(t *testing.T) {
	data, _ := newData(t, relations())
	aud := &fakeAuditor{}
	arch := &fakeArchiver{}
	narrator := narrative.NewNarrator(&fakeModel{text: "Buen trimestre.", image: pngBytes(t, 2048, 512)}, time.Second, nil)

	out, err := NewGenerateReport(data, narrator, arch, aud, "UTC", nil).Execute(
		context.Background(), "admin",
		ReportInput{Narrative: true, CoverPrompt: "barbería elegante"},
	)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF")))
	assert.Regexp(t, `^Reporte_Rendimiento_\d{4}-\d{2}-\d{2}\.pdf$`, out.Filename)
	assert.Empty(t, out.Notices)
	require.Len(t, arch.keys, 1)
	assert.Contains(t, arch.keys[0], out.ID)
	assert.Equal(t, "s3://bucket/"+arch.keys[0], out.Location)
	assert.Equal(t, []string{audit.ActionReportGenerated}, aud.actions())
}

func TestGenerateReport_DegradesOnModelAndArchiveFailure(t *testing.T) {
	data, _ := newData(t, relations())
	narrator := narrative.NewNarrator(&fakeModel{err: errors.New("quota")}, time.Second, nil)

	out, err := NewGenerateReport(data, narrator, &fakeArchiver{err: errors.New("denied")}, &fakeAuditor{}, "UTC", nil).Execute(
		context.Background(), "admin",
		ReportInput{Narrative: true, CoverPrompt: "logo"},
	)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF")))
	assert.Contains(t, out.Notices, narrative.NoticeFailed)
	assert.Contains(t, out.Notices, NoticeArchiveFailed)
	assert.Empty(t, out.Location)
}

func TestGenerateReport_NoDataStillRenders(t *testing.T) {
	rel := relations()
	rel.Appointments = nil
	data, _ := newData(t, rel)

	out, err := NewGenerateReport(data, narrative.NewNarrator(nil, 0, nil), nil, &fakeAuditor{}, "UTC", nil).Execute(
		context.Background(), "admin", ReportInput{Narrative: true},
	)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out.PDF, []byte("%PDF")))
}

func TestAssistantUseCases(t *testing.T) {
	data, _ := newData(t, relations())
	narrator := narrative.NewNarrator(&fakeModel{text: `{"operation":"sum","field":"price"}`}, time.Second, nil)
	aud := &fakeAuditor{}

	outcome, err := NewAskAnalyst(data, analyst.New(narrator), aud).Execute(context.Background(), "admin", "¿Cuánto facturamos?", view.Filter{})
	require.NoError(t, err)
	require.NotNil(t, outcome.Answer)
	require.NotNil(t, outcome.Answer.Value)
	assert.Equal(t, 100000.0, *outcome.Answer.Value)
	assert.Equal(t, []string{audit.ActionAssistantUsed}, aud.actions())

	_, err = NewAskAnalyst(data, analyst.New(narrator), aud).Execute(context.Background(), "admin", "  ", view.Filter{})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidQuestion))

	res, err := NewDraftCampaign(data, narrator).Execute(context.Background(), "promo de marzo", view.Filter{})
	require.NoError(t, err)
	assert.True(t, res.OK)

	res, err = NewGenerateImage(narrative.NewNarrator(nil, 0, nil)).Execute(context.Background(), "logo")
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, narrative.NoticeNotConfigured, res.Notice)
}
