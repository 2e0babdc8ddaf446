package narrative

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/monitoring"
)

const (
	NoticeNotConfigured = "El asistente de IA no está configurado. Defina GOOGLE_API_KEY para habilitarlo."
	NoticeTimeout       = "El servicio de IA no respondió a tiempo. Intente de nuevo más tarde."
	NoticeBlocked       = "El servicio de IA rechazó la solicitud por sus políticas de contenido."
	NoticeEmpty         = "El servicio de IA no devolvió contenido."
	NoticeFailed        = "No se pudo obtener respuesta del servicio de IA."
)

// Result is what callers show. A failed call is a Result with OK false and
// a Notice, never an error.
type Result struct {
	OK        bool   `json:"ok"`
	Text      string `json:"text,omitempty"`
	Image     []byte `json:"image,omitempty"`
	ImageMIME string `json:"image_mime,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

type Narrator struct {
	model   Model
	timeout time.Duration
	logger  *zap.Logger
}

// NewNarrator accepts a nil model; every call then returns the
// not-configured notice.
func NewNarrator(model Model, timeout time.Duration, logger *zap.Logger) *Narrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Narrator{model: model, timeout: timeout, logger: logger}
}

func (n *Narrator) Configured() bool { return n.model != nil }

func (n *Narrator) Analyze(ctx context.Context, d Digest) Result {
	return n.Complete(ctx, "analyze", Request{Prompt: AnalysisPrompt(d)})
}

func (n *Narrator) Campaign(ctx context.Context, d Digest, brief string) Result {
	return n.Complete(ctx, "campaign", Request{Prompt: CampaignPrompt(d, brief)})
}

func (n *Narrator) Image(ctx context.Context, description string) Result {
	res := n.Complete(ctx, "image", Request{Prompt: ImagePrompt(description), WantImage: true})
	if res.OK && len(res.Image) == 0 {
		return Result{Notice: NoticeEmpty, Text: res.Text}
	}
	return res
}

// Complete runs one bounded model call and turns every failure into a notice.
func (n *Narrator) Complete(ctx context.Context, kind string, req Request) Result {
	if n.model == nil {
		return Result{Notice: NoticeNotConfigured}
	}

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	resp, err := n.call(ctx, req)
	if err != nil {
		outcome, notice := classify(err)
		monitoring.GenerativeCalls.WithLabelValues(kind, outcome).Inc()
		n.logger.Warn("generative call failed",
			zap.String("kind", kind),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return Result{Notice: notice}
	}

	monitoring.GenerativeCalls.WithLabelValues(kind, "ok").Inc()
	return Result{OK: true, Text: resp.Text, Image: resp.Image, ImageMIME: resp.ImageMIME}
}

// call enforces the deadline even if the model ignores ctx.
func (n *Narrator) call(ctx context.Context, req Request) (*Response, error) {
	type outcome struct {
		resp *Response
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("model panic: %v", r)}
			}
		}()
		resp, err := n.model.Generate(ctx, req)
		if err == nil && (resp == nil || (resp.Text == "" && len(resp.Image) == 0)) {
			err = ErrEmpty
		}
		done <- outcome{resp: resp, err: err}
	}()

	select {
	case o := <-done:
		return o.resp, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func classify(err error) (outcome, notice string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout", NoticeTimeout
	case errors.Is(err, ErrBlocked):
		return "blocked", NoticeBlocked
	case errors.Is(err, ErrEmpty):
		return "empty", NoticeEmpty
	case errors.Is(err, ErrNotConfigured):
		return "error", NoticeNotConfigured
	default:
		return "error", NoticeFailed
	}
}
