package report

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	ReportTitle   = "Reporte de Rendimiento - Kingdom Barber"
	MsgNoData     = "No hay datos disponibles para generar el reporte."
	MsgNoPrices   = "No hay citas con precios válidos para generar las métricas."
	MsgNoChart    = "No hay datos suficientes para graficar."
	pageWidthMM   = 210.0
	marginMM      = 10.0
	contentWidth  = pageWidthMM - 2*marginMM
	pageBreakAtMM = 270.0
)

type ChartImage struct {
	Title string
	PNG   []byte
}

// Document is everything the PDF shows. It is rendered as is; no data is
// computed here.
type Document struct {
	ReportID          string
	GeneratedAt       time.Time
	FilterDescription string
	Summary           Summary
	// Narrative is the model's analysis; NarrativeNotice replaces it when the
	// model was unavailable.
	Narrative       string
	NarrativeNotice string
	Charts          []ChartImage
	Cover           []byte
	Warnings        []string
}

func RenderPDF(doc Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.SetTitle(ReportTitle, true)
	pdf.SetCreator("kingdom-dashboard", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	generated := doc.GeneratedAt.Format("02/01/2006")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 15)
		pdf.CellFormat(0, 10, tr(ReportTitle), "", 1, "C", false, 0, "")
		pdf.Ln(4)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		footer := fmt.Sprintf("Página %d | Generado el: %s", pdf.PageNo(), generated)
		pdf.CellFormat(0, 10, tr(footer), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	if doc.Summary.Appointments == 0 {
		paragraph(pdf, tr, MsgNoData)
		return output(pdf)
	}

	if doc.FilterDescription != "" {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(contentWidth, 6, tr("Filtros: "+doc.FilterDescription), "", "L", false)
		pdf.Ln(2)
	}

	if len(doc.Cover) > 0 {
		addImage(pdf, "cover", doc.Cover, contentWidth*0.6)
	}

	if doc.Summary.PricedAppointments == 0 {
		paragraph(pdf, tr, MsgNoPrices)
		warnings(pdf, tr, doc.Warnings)
		return output(pdf)
	}

	heads := outline(doc)
	section(pdf, tr, heads[0])
	s := doc.Summary
	kpis := [][2]string{
		{"Ingresos Totales", FormatMoney(s.Revenue)},
		{"Citas Registradas", FormatCount(s.PricedAppointments)},
		{"Ticket Promedio", FormatMoney(s.AverageTicket)},
		{"Clientes", FormatCount(s.Clients)},
		{"Servicio Más Popular", s.TopService},
		{"Barbero Top (por Ingresos)", s.TopBarber},
		{"Sede con Más Citas", s.TopVenue},
	}
	for _, kv := range kpis {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(75, 7, tr(kv[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 7, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	switch {
	case doc.Narrative != "":
		section(pdf, tr, heads[1])
		paragraph(pdf, tr, doc.Narrative)
	case doc.NarrativeNotice != "":
		section(pdf, tr, heads[1])
		pdf.SetTextColor(150, 60, 0)
		paragraph(pdf, tr, doc.NarrativeNotice)
		pdf.SetTextColor(0, 0, 0)
	}

	section(pdf, tr, heads[len(heads)-1])
	if len(doc.Charts) == 0 {
		paragraph(pdf, tr, MsgNoChart)
	}
	for i, c := range doc.Charts {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 7, tr(c.Title), "", 1, "L", false, 0, "")
		addImage(pdf, fmt.Sprintf("chart-%d", i), c.PNG, contentWidth)
	}

	warnings(pdf, tr, doc.Warnings)
	return output(pdf)
}

// outline numbers the body sections. The AI section is left out when no
// narrative was requested.
func outline(doc Document) []string {
	titles := []string{"Métricas Clave (KPIs)"}
	if doc.Narrative != "" || doc.NarrativeNotice != "" {
		titles = append(titles, "Análisis por IA")
	}
	titles = append(titles, "Visualización de Datos")
	for i, t := range titles {
		titles[i] = fmt.Sprintf("%d. %s", i+1, t)
	}
	return titles
}

func section(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func paragraph(pdf *fpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(contentWidth, 6, tr(text), "", "L", false)
	pdf.Ln(3)
}

func warnings(pdf *fpdf.Fpdf, tr func(string) string, ws []string) {
	if len(ws) == 0 {
		return
	}
	section(pdf, tr, "Advertencias de datos")
	pdf.SetFont("Arial", "", 9)
	for _, w := range ws {
		pdf.MultiCell(contentWidth, 5, tr("- "+w), "", "L", false)
	}
}

// addImage places a PNG at the given width, breaking the page when it
// would not fit. Undecodable images are skipped.
func addImage(pdf *fpdf.Fpdf, name string, data []byte, width float64) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 {
		return
	}
	height := width * float64(cfg.Height) / float64(cfg.Width)
	if pdf.GetY()+height > pageBreakAtMM {
		pdf.AddPage()
	}

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	x := marginMM + (contentWidth-width)/2
	pdf.ImageOptions(name, x, pdf.GetY(), width, height, true, opts, 0, "")
	pdf.Ln(4)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
