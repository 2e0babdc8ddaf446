package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/monitoring"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/storage"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/timezone"
)

const (
	coverMaxWidth = 1024

	NoticeArchiveFailed = "No se pudo archivar el reporte; la descarga no se ve afectada."
	NoticeBadCover      = "La imagen generada no se pudo procesar y se omitió."
)

type ReportInput struct {
	Filter view.Filter
	// Narrative asks the model for an analysis section.
	Narrative bool
	// CoverPrompt, when set, asks the model for a cover image.
	CoverPrompt string
}

type ReportOutput struct {
	ID       string
	Filename string
	PDF      []byte
	// Location is where the archived copy lives, empty without an archiver.
	Location string
	Notices  []string
}

type GenerateReport struct {
	data     *Data
	narrator *narrative.Narrator
	archiver storage.Archiver
	audit    Auditor
	tz       string
	logger   *zap.Logger
}

// NewGenerateReport accepts a nil archiver; reports are then not archived.
func NewGenerateReport(
	data *Data,
	narrator *narrative.Narrator,
	archiver storage.Archiver,
	audit Auditor,
	tz string,
	logger *zap.Logger,
) *GenerateReport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerateReport{
		data:     data,
		narrator: narrator,
		archiver: archiver,
		audit:    audit,
		tz:       tz,
		logger:   logger,
	}
}

// Execute renders the PDF. Model and archive failures become notices in
// the document or the output; only data and rendering errors fail.
func (uc *GenerateReport) Execute(
	ctx context.Context,
	actor string,
	in ReportInput,
) (*ReportOutput, error) {

	snap, err := uc.data.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	rows := snap.Filter(in.Filter)
	now := timezone.NowIn(uc.tz)

	doc := report.Document{
		ReportID:          uuid.NewString(),
		GeneratedAt:       now,
		FilterDescription: in.Filter.Describe(snap.Rows),
		Summary:           report.Summarize(rows),
		Warnings:          snap.Warnings,
	}
	out := &ReportOutput{ID: doc.ReportID, Filename: report.PDFFilename(now)}

	// --------------------------------------------------
	// Model calls run side by side; neither blocks the other
	// --------------------------------------------------

	var narrativeRes, coverRes narrative.Result
	var g errgroup.Group
	if in.Narrative && len(rows) > 0 {
		g.Go(func() error {
			digest := narrative.BuildDigest(rows, doc.FilterDescription)
			narrativeRes = uc.narrator.Analyze(ctx, digest)
			return nil
		})
	}
	if in.CoverPrompt != "" {
		g.Go(func() error {
			coverRes = uc.narrator.Image(ctx, in.CoverPrompt)
			return nil
		})
	}
	_ = g.Wait()

	if in.Narrative && len(rows) > 0 {
		if narrativeRes.OK {
			doc.Narrative = narrativeRes.Text
		} else {
			doc.NarrativeNotice = narrativeRes.Notice
			out.Notices = append(out.Notices, narrativeRes.Notice)
		}
	}

	if in.CoverPrompt != "" {
		if coverRes.OK {
			cover, _, err := report.NormalizeImage(coverRes.Image, coverMaxWidth)
			if err != nil {
				uc.logger.Warn("generated cover unusable", zap.Error(err))
				out.Notices = append(out.Notices, NoticeBadCover)
			} else {
				doc.Cover = cover
			}
		} else {
			out.Notices = append(out.Notices, coverRes.Notice)
		}
	}

	// --------------------------------------------------
	// Charts in catalog order
	// --------------------------------------------------

	charts, err := report.RenderAll(rows)
	if err != nil {
		return nil, err
	}
	for _, spec := range report.Charts {
		if png, ok := charts[spec.Name]; ok {
			doc.Charts = append(doc.Charts, report.ChartImage{Title: spec.Title, PNG: png})
		}
	}

	pdf, err := report.RenderPDF(doc)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	out.PDF = pdf
	monitoring.ReportsGenerated.Inc()

	if uc.archiver != nil {
		key := fmt.Sprintf("%s/%s.pdf", now.Format("2006/01"), doc.ReportID)
		loc, err := uc.archiver.Put(ctx, key, "application/pdf", pdf)
		if err != nil {
			uc.logger.Warn("report archive failed",
				zap.String("report_id", doc.ReportID),
				zap.Error(err),
			)
			out.Notices = append(out.Notices, NoticeArchiveFailed)
		} else {
			out.Location = loc
		}
	}

	uc.audit.Dispatch(audit.Event{
		Actor:     actor,
		Action:    audit.ActionReportGenerated,
		Entity:    "report",
		EntityRef: doc.ReportID,
		Metadata: map[string]any{
			"rows":     len(rows),
			"filters":  doc.FilterDescription,
			"revenue":  doc.Summary.Revenue,
			"location": out.Location,
			"notices":  len(out.Notices),
		},
	})

	return out, nil
}
