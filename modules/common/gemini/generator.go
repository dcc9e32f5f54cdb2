package gemini

import (
	"context"
	"log"

	"google.golang.org/genai"

	"prism-studio-server/modules/common/config"
	"prism-studio-server/modules/common/httputil"
)

// Generator - image-to-image generation surface; stubbed in handler tests
type Generator interface {
	EditImage(ctx context.Context, imageData []byte, mimeType, prompt, aspectRatio string) ([]byte, error)
}

// GeminiGenerator - Gemini image model client
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGenerator - nil without an API key; callers surface that as a
// per-request configuration error
func NewGenerator(ctx context.Context) *GeminiGenerator {
	cfg := config.GetConfig()

	if cfg.GeminiAPIKey == "" {
		log.Println("⚠️ [Gemini] GEMINI_API_KEY not configured")
		return nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		log.Printf("❌ [Gemini] Failed to create client: %v", err)
		return nil
	}

	log.Printf("✅ [Gemini] Generator initialized (model: %s)", cfg.GeminiModel)
	return &GeminiGenerator{
		client: client,
		model:  cfg.GeminiModel,
	}
}

// EditImage - send the source image plus an edit prompt, return the generated
// image bytes
func (g *GeminiGenerator) EditImage(ctx context.Context, imageData []byte, mimeType, prompt, aspectRatio string) ([]byte, error) {
	if mimeType == "" {
		mimeType = "image/png"
	}
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	log.Printf("🎨 [Gemini] Calling %s (prompt: %d chars, aspect-ratio: %s)", g.model, len(prompt), aspectRatio)

	content := &genai.Content{
		Parts: []*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(imageData, mimeType),
		},
	}

	result, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		[]*genai.Content{content},
		&genai.GenerateContentConfig{
			ImageConfig: &genai.ImageConfig{
				AspectRatio: aspectRatio,
			},
		},
	)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Gemini API call failed", Details: err.Error()}
	}

	if len(result.Candidates) == 0 {
		return nil, &httputil.ProviderError{Message: "No candidates in Gemini response"}
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				log.Printf("✅ [Gemini] Received image: %d bytes", len(part.InlineData.Data))
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, &httputil.ProviderError{Message: "No image data in Gemini response"}
}

var _ Generator = (*GeminiGenerator)(nil)
