package narrative

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// =============================================================================
// GOOGLE GENAI
// =============================================================================

// GenAIModel talks to Gemini. Text and image generation may use different
// model names.
type GenAIModel struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func NewGenAIModel(ctx context.Context, apiKey, textModel, imageModel string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if textModel == "" {
		textModel = "gemini-2.5-flash"
	}
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIModel{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

func (m *GenAIModel) Name() string {
	return fmt.Sprintf("genai:%s", m.textModel)
}

func (m *GenAIModel) Generate(ctx context.Context, req Request) (*Response, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if len(req.Image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(req.Image, req.ImageMIME))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	model := m.textModel
	if req.WantImage {
		model = m.imageModel
		cfg.ResponseModalities = append(cfg.ResponseModalities, "TEXT", "IMAGE")
	} else if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	result, err := m.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: %s", ErrBlocked, result.PromptFeedback.BlockReason)
	}

	out := &Response{}
	var text strings.Builder
	for _, cand := range result.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			if part.Text != "" {
				text.WriteString(part.Text)
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 && out.Image == nil {
				out.Image = part.InlineData.Data
				out.ImageMIME = part.InlineData.MIMEType
			}
		}
		// first usable candidate only
		if text.Len() > 0 || out.Image != nil {
			break
		}
	}
	out.Text = strings.TrimSpace(text.String())

	if out.Text == "" && out.Image == nil {
		return nil, ErrEmpty
	}
	return out, nil
}

// ListModels returns the model names visible to the API key.
func (m *GenAIModel) ListModels(ctx context.Context) ([]string, error) {
	page, err := m.client.Models.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("GenAI list models failed: %w", err)
	}
	names := make([]string, 0, len(page.Items))
	for _, model := range page.Items {
		if model != nil {
			names = append(names, model.Name)
		}
	}
	return names, nil
}
