package dashboard

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/httperr"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// File is a rendered artifact ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type RenderChart struct {
	data *Data
}

func NewRenderChart(data *Data) *RenderChart {
	return &RenderChart{data: data}
}

func (uc *RenderChart) Execute(
	ctx context.Context,
	name string,
	format string,
	f view.Filter,
) (*File, error) {

	spec, ok := report.ChartByName(name)
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeUnknownChart)
	}

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	png, err := report.RenderChart(spec, snap.Filter(f))
	if errors.Is(err, report.ErrNoChartData) {
		return nil, httperr.ErrBusiness(httperr.CodeNoData)
	}
	if err != nil {
		return nil, err
	}

	if format != FormatWebP {
		return &File{Name: name + ".png", ContentType: "image/png", Data: png}, nil
	}

	webp, err := report.ToWebP(png)
	if err != nil {
		return nil, err
	}
	return &File{Name: name + ".webp", ContentType: "image/webp", Data: webp}, nil
}
