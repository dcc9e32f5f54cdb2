package texture

import (
	"context"
	"log"

	"prism-studio-server/modules/common/gemini"
	"prism-studio-server/modules/common/httputil"
)

// textureAspectRatio - the texture canvas renders square
const textureAspectRatio = "1:1"

// ProcessedImage - enhanced image ready for relay
type ProcessedImage struct {
	ContentType string
	Data        []byte
}

type Service struct {
	generator gemini.Generator
}

func NewService(generator gemini.Generator) *Service {
	return &Service{generator: generator}
}

// Process - run micro-detail enhancement on the uploaded image
func (s *Service) Process(ctx context.Context, image *httputil.ImageUpload, opts Options) (*ProcessedImage, error) {
	if s.generator == nil {
		return nil, &httputil.ConfigError{Message: "GEMINI_API_KEY not configured"}
	}

	log.Printf("🧵 [Texture] Enhancing %s (texture: %s, strength: %d, %d bytes)",
		image.Name, opts.Texture, opts.Strength, len(image.Data))

	data, err := s.generator.EditImage(ctx, image.Data, image.ContentType, opts.Prompt(), textureAspectRatio)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [Texture] Enhancement complete: %d bytes", len(data))
	return &ProcessedImage{ContentType: "image/png", Data: data}, nil
}
