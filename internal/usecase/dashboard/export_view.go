package dashboard

import (
	"context"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/timezone"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportView struct {
	data  *Data
	audit Auditor
	tz    string
}

func NewExportView(
	data *Data,
	audit Auditor,
	tz string,
) *ExportView {
	return &ExportView{data: data, audit: audit, tz: tz}
}

func (uc *ExportView) Execute(
	ctx context.Context,
	actor string,
	f view.Filter,
) (*File, error) {

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := snap.Filter(f)

	data, err := report.ExportXLSX(rows)
	if err != nil {
		return nil, err
	}

	name := report.XLSXFilename(timezone.NowIn(uc.tz))

	uc.audit.Dispatch(audit.Event{
		Actor:     actor,
		Action:    audit.ActionViewExported,
		Entity:    "view",
		EntityRef: name,
		Metadata: map[string]any{
			"rows":    len(rows),
			"filters": f.Describe(snap.Rows),
		},
	})

	return &File{Name: name, ContentType: xlsxContentType, Data: data}, nil
}
