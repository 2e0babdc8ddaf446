package narrative

import (
	"fmt"
	"strings"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/report"
)

const (
	MaxPromptRunes = 4000
	topPerGroup    = 5
)

type digestGroup struct {
	title     string
	dimension report.Dimension
	metric    report.Metric
}

var digestGroups = []digestGroup{
	{"Ingresos por servicio", report.ByService, report.Revenue},
	{"Ingresos por barbero", report.ByBarber, report.Revenue},
	{"Citas por sede", report.ByVenue, report.Count},
	{"Citas por mes", report.ByMonth, report.Count},
}

// Digest is the bounded, already aggregated context sent to the model.
// Raw rows never leave the process.
type Digest struct {
	Filters string
	Summary report.Summary
	Groups  []DigestGroup
}

type DigestGroup struct {
	Title  string
	Metric report.Metric
	Top    []report.Group
}

func BuildDigest(rows []view.Row, filters string) Digest {
	d := Digest{Filters: filters, Summary: report.Summarize(rows)}
	for _, g := range digestGroups {
		groups, err := report.GroupBy(rows, g.dimension, g.metric)
		if err != nil || len(groups) == 0 {
			continue
		}
		d.Groups = append(d.Groups, DigestGroup{
			Title:  g.title,
			Metric: g.metric,
			Top:    report.Top(groups, topPerGroup),
		})
	}
	return d
}

// Context renders the digest as plain text, same input same output.
func (d Digest) Context() string {
	var b strings.Builder
	s := d.Summary
	if d.Filters != "" {
		fmt.Fprintf(&b, "Filtros aplicados: %s\n", d.Filters)
	}
	fmt.Fprintf(&b, "Ingresos totales: %s\n", report.FormatMoney(s.Revenue))
	fmt.Fprintf(&b, "Citas registradas: %s (con precio: %s)\n", report.FormatCount(s.Appointments), report.FormatCount(s.PricedAppointments))
	fmt.Fprintf(&b, "Clientes: %s\n", report.FormatCount(s.Clients))
	fmt.Fprintf(&b, "Ticket promedio: %s\n", report.FormatMoney(s.AverageTicket))
	fmt.Fprintf(&b, "Servicio más popular: %s\n", s.TopService)
	fmt.Fprintf(&b, "Barbero top por ingresos: %s\n", s.TopBarber)
	fmt.Fprintf(&b, "Sede con más citas: %s\n", s.TopVenue)

	for _, g := range d.Groups {
		fmt.Fprintf(&b, "\n%s (top %d):\n", g.Title, topPerGroup)
		for _, item := range g.Top {
			value := report.FormatCount(int(item.Value))
			if g.Metric == report.Revenue {
				value = report.FormatMoney(item.Value)
			}
			fmt.Fprintf(&b, "- %s: %s\n", item.Label, value)
		}
	}
	return b.String()
}

const analystRole = "Eres un analista de negocio experto para la barbería Kingdom Barber."

func AnalysisPrompt(d Digest) string {
	return truncate(analystRole + `
Con base en los siguientes datos agregados, escribe un análisis breve (máximo tres párrafos)
con hallazgos clave y dos recomendaciones accionables. Responde en español y sin tablas.

` + d.Context())
}

func CampaignPrompt(d Digest, brief string) string {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		brief = "Atraer clientes nuevos y recuperar a los inactivos."
	}
	return truncate(`Eres un experto en marketing para barberías.
Diseña una campaña corta para Kingdom Barber: nombre, público objetivo, mensaje principal,
canales y una oferta concreta. Objetivo del cliente: ` + brief + `

Datos del negocio:
` + d.Context())
}

func ImagePrompt(description string) string {
	return truncate("Genera una imagen publicitaria profesional para la barbería Kingdom Barber. " +
		strings.TrimSpace(description))
}

// truncate caps the prompt at MaxPromptRunes on a rune boundary.
func truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxPromptRunes {
		return s
	}
	return string(r[:MaxPromptRunes])
}
