package analyst

import (
	"context"
	"errors"
	"strings"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
)

var ErrEmptyQuestion = errors.New("analyst: question is empty")

const (
	NoticeUnparseable = "La IA no produjo una consulta válida. Reformule la pregunta."
	maxQuestionRunes  = 500
)

const instructions = `Eres un analista de datos de la barbería Kingdom Barber.
Traduce la pregunta del usuario a UNA consulta JSON con esta forma exacta y nada más:
{"operation": "...", "field": "...", "group_by": "...", "limit": 0, "filter": {"service": "", "barber": "", "client": "", "venue": "", "from": "YYYY-MM-DD", "to": "YYYY-MM-DD"}}

Operaciones permitidas:
- count: número de citas (sin field).
- sum / avg: field debe ser "price".
- mode / distinct: field en service, barber, client, venue, day, month.
- top: requiere group_by; field vacío (cuenta citas) o "price" (ingresos).
group_by admite: service, barber, client, venue, day, month.
Omite las claves que no uses. No escribas código.`

// Outcome carries either an answer or the notice explaining why there is none.
type Outcome struct {
	Answer *Answer `json:"answer,omitempty"`
	Notice string  `json:"notice,omitempty"`
}

type Analyst struct {
	narrator *narrative.Narrator
}

func New(narrator *narrative.Narrator) *Analyst {
	return &Analyst{narrator: narrator}
}

// Ask has the model translate the question into a Query and runs it locally.
func (a *Analyst) Ask(ctx context.Context, rows []view.Row, question string) (Outcome, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Outcome{}, ErrEmptyQuestion
	}
	if r := []rune(question); len(r) > maxQuestionRunes {
		question = string(r[:maxQuestionRunes])
	}

	res := a.narrator.Complete(ctx, "analyst", narrative.Request{
		System: instructions,
		Prompt: "Pregunta: " + question,
		JSON:   true,
	})
	if !res.OK {
		return Outcome{Notice: res.Notice}, nil
	}

	q, err := ParseQuery(res.Text)
	if err != nil {
		return Outcome{Notice: NoticeUnparseable}, nil
	}
	ans, err := Execute(q, rows)
	if err != nil {
		return Outcome{Notice: NoticeUnparseable}, nil
	}
	return Outcome{Answer: &ans}, nil
}
