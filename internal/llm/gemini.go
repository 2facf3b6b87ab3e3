package llm

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"

	"contentflow/internal/checklist"
)

const (
	DefaultTextModel   = "gemini-3-flash-preview"
	DefaultImageModel  = "imagen-4.0-generate-001"
	DefaultTemperature = float32(0.7)

	imageMIMEType    = "image/jpeg"
	imageAspectRatio = "16:9"
)

var ErrNoAPIKey = errors.New("llm: gemini api key is required")

// GeminiConfig is built once at startup and handed to NewGeminiClient.
type GeminiConfig struct {
	APIKey      string
	TextModel   string
	ImageModel  string
	Temperature float32
}

// modelsAPI is the slice of *genai.Models the client uses.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// GeminiClient is a thin wrapper around the official genai client.
// Cross-cutting concerns (logging, metrics, tracing, throttling) are applied
// via Middleware.
type GeminiClient struct {
	models      modelsAPI
	textModel   string
	imageModel  string
	temperature float32
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrNoAPIKey
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return newGeminiClient(cli.Models, cfg), nil
}

func newGeminiClient(models modelsAPI, cfg GeminiConfig) *GeminiClient {
	g := &GeminiClient{
		models:      models,
		textModel:   strings.TrimSpace(cfg.TextModel),
		imageModel:  strings.TrimSpace(cfg.ImageModel),
		temperature: cfg.Temperature,
	}
	if g.textModel == "" {
		g.textModel = DefaultTextModel
	}
	if g.imageModel == "" {
		g.imageModel = DefaultImageModel
	}
	if g.temperature <= 0 {
		g.temperature = DefaultTemperature
	}
	return g
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.textModel + "+" + g.imageModel }
func (g *GeminiClient) Close() error { return nil }

// GenerateText sends prompt with the action's system instruction. A response
// without text yields EmptyTextFallback rather than an error.
func (g *GeminiClient) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	temp := g.temperature
	cfg := &genai.GenerateContentConfig{Temperature: &temp}
	if strings.TrimSpace(systemInstruction) != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}}
	}
	resp, err := g.models.GenerateContent(ctx, g.textModel,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		cfg,
	)
	if err != nil {
		return "", providerFailure(err)
	}
	txt := responseText(resp)
	if txt == "" {
		return EmptyTextFallback, nil
	}
	return txt, nil
}

// GenerateImage asks for exactly one 16:9 JPEG. No image in the response is
// not an error; the empty handle is returned.
func (g *GeminiClient) GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error) {
	resp, err := g.models.GenerateImages(ctx, g.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: imageMIMEType,
		AspectRatio:    imageAspectRatio,
	})
	if err != nil {
		return "", imageFailure(err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return "", nil
	}
	img := resp.GeneratedImages[0]
	if img == nil || img.Image == nil {
		return "", nil
	}
	return EncodeJPEG(img.Image.ImageBytes), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}
