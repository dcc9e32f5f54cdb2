package scenario

import (
	"context"
	"log"

	"prism-studio-server/modules/common/gemini"
	"prism-studio-server/modules/common/httputil"
)

// scenarioAspectRatio - the scenario canvas renders 4:5
const scenarioAspectRatio = "4:5"

// ProcessedImage - composited scene ready for relay
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

// Process - composite the uploaded product into the selected scene
func (s *Service) Process(ctx context.Context, image *httputil.ImageUpload, opts Options) (*ProcessedImage, error) {
	if s.generator == nil {
		return nil, &httputil.ConfigError{Message: "GEMINI_API_KEY not configured"}
	}

	log.Printf("🏙️ [Scenario] Compositing %s into scene %q (%d bytes)", image.Name, opts.Scene, len(image.Data))

	data, err := s.generator.EditImage(ctx, image.Data, image.ContentType, opts.Prompt(), scenarioAspectRatio)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ [Scenario] Scene composited: %d bytes", len(data))
	return &ProcessedImage{ContentType: "image/png", Data: data}, nil
}
