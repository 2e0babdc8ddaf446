package report

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders $1,234.50.
func FormatMoney(v float64) string {
	return "$" + printer.Sprintf("%.2f", v)
}

// FormatCount renders 1,234.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func PDFFilename(at time.Time) string {
	return "Reporte_Rendimiento_" + at.Format("2006-01-02") + ".pdf"
}

func XLSXFilename(at time.Time) string {
	return "Vista_Citas_" + at.Format("2006-01-02") + ".xlsx"
}
