package narrative

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured = errors.New("narrative: model not configured")
	ErrBlocked       = errors.New("narrative: request blocked by the model")
	ErrEmpty         = errors.New("narrative: empty response")
)

type Request struct {
	System string
	Prompt string
	// Image is an optional input image sent alongside the prompt.
	Image     []byte
	ImageMIME string
	// WantImage asks for an image in the answer.
	WantImage bool
	// JSON asks for an application/json answer.
	JSON bool
}

type Response struct {
	Text      string
	Image     []byte
	ImageMIME string
}

// Model is the external generative service.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}
