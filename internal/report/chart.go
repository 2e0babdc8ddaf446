package report

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
)

// ErrNoChartData means every group was empty or zero; callers skip the chart.
var ErrNoChartData = errors.New("report: no data to chart")

type ChartKind string

const (
	Bar ChartKind = "bar"
	Pie ChartKind = "pie"
)

type ChartSpec struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Kind      ChartKind `json:"kind"`
	Dimension Dimension `json:"dimension"`
	Metric    Metric    `json:"metric"`
	// Limit caps the number of bars; 0 keeps all.
	Limit int `json:"limit"`
}

var Charts = []ChartSpec{
	{Name: "revenue-by-service", Title: "Ingresos por Servicio", Kind: Bar, Dimension: ByService, Metric: Revenue, Limit: 10},
	{Name: "revenue-by-barber", Title: "Ingresos por Barbero", Kind: Bar, Dimension: ByBarber, Metric: Revenue, Limit: 10},
	{Name: "appointments-by-venue", Title: "Citas por Sede", Kind: Pie, Dimension: ByVenue, Metric: Count},
	{Name: "appointments-by-month", Title: "Citas por Mes", Kind: Bar, Dimension: ByMonth, Metric: Count, Limit: 24},
}

func ChartByName(name string) (ChartSpec, bool) {
	for _, c := range Charts {
		if c.Name == name {
			return c, true
		}
	}
	return ChartSpec{}, false
}

// RenderChart draws one catalog chart over rows as PNG.
func RenderChart(spec ChartSpec, rows []view.Row) ([]byte, error) {
	groups, err := GroupBy(rows, spec.Dimension, spec.Metric)
	if err != nil {
		return nil, err
	}
	groups = Top(groups, spec.Limit)

	values := make([]chart.Value, 0, len(groups))
	maxVal := 0.0
	for _, g := range groups {
		if g.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: g.Label, Value: g.Value})
		if g.Value > maxVal {
			maxVal = g.Value
		}
	}
	if len(values) == 0 {
		return nil, ErrNoChartData
	}

	var buf bytes.Buffer
	switch spec.Kind {
	case Pie:
		pie := chart.PieChart{
			Title:  spec.Title,
			Width:  640,
			Height: 640,
			Values: values,
		}
		if err := pie.Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render %s: %w", spec.Name, err)
		}
	default:
		bar := chart.BarChart{
			Title: spec.Title,
			Background: chart.Style{
				Padding: chart.Box{Top: 40},
			},
			Width:    1024,
			Height:   512,
			BarWidth: 60,
			// explicit range: go-chart refuses a zero-height axis
			YAxis: chart.YAxis{
				Range: &chart.ContinuousRange{Min: 0, Max: maxVal * 1.1},
			},
			Bars: values,
		}
		if err := bar.Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("render %s: %w", spec.Name, err)
		}
	}
	return buf.Bytes(), nil
}

// RenderAll renders every chart that has data, keyed by name.
func RenderAll(rows []view.Row) (map[string][]byte, error) {
	out := map[string][]byte{}
	for _, spec := range Charts {
		png, err := RenderChart(spec, rows)
		if errors.Is(err, ErrNoChartData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[spec.Name] = png
	}
	return out, nil
}

// ToWebP re-encodes a PNG chart losslessly.
func ToWebP(pngData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}
