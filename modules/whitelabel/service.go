package whitelabel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"prism-studio-server/modules/common/config"
	"prism-studio-server/modules/common/httputil"
	"prism-studio-server/modules/common/utils"
)

// mainImagePrompt - product-only main image: keep the garment, drop the model
const mainImagePrompt = "Keep only the clothing item, remove the human model. Professional product photography, pure white background, realistic soft drop shadow, studio lighting."

const webpQuality = 90.0

// ProcessedImage - provider output ready for relay
type ProcessedImage struct {
	ContentType string
	Data        []byte
}

type Service struct {
	httpClient *http.Client
}

func NewService() *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Process - forward the upload to Photoroom's edit API and return the
// normalized product image
func (s *Service) Process(ctx context.Context, image *httputil.ImageUpload, opts Options) (*ProcessedImage, error) {
	cfg := config.GetConfig()

	if cfg.PhotoroomAPIKey == "" {
		return nil, &httputil.ConfigError{Message: "PHOTOROOM_API_KEY not configured"}
	}

	log.Printf("🎨 [WhiteLabel] Processing %s (%d bytes, style: %s, shadow: %d)",
		image.Name, len(image.Data), opts.BackgroundStyle, opts.ShadowIntensity)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("imageFile", image.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider form: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return nil, fmt.Errorf("failed to write provider form: %w", err)
	}

	fields := map[string]string{
		"removeBackground":         "true",
		"shadow.mode":              opts.ShadowMode(),
		"outputSize":               "1000x1000",
		"horizontalAlignment":      "center",
		"verticalAlignment":        "center",
		"padding":                  "0.15",
		"describeAnyChange.mode":   "ai.auto",
		"describeAnyChange.prompt": mainImagePrompt,
	}
	if color, ok := opts.BackgroundColor(); ok {
		fields["background.color"] = color
	}
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write provider form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize provider form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.PhotoroomAPIURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}
	req.Header.Set("x-api-key", cfg.PhotoroomAPIKey)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Photoroom request failed", Details: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		log.Printf("❌ [WhiteLabel] Photoroom API error: %d %s", resp.StatusCode, httputil.Truncate(string(errText), 200))

		details := string(errText)
		if resp.StatusCode == http.StatusPaymentRequired {
			details = "API quota exceeded or invalid key"
		}
		return nil, &httputil.ProviderError{
			Message: "Photoroom processing failed",
			Details: details,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Failed to read Photoroom response", Details: err.Error()}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	if opts.Format == "webp" {
		webpData, err := utils.ConvertToWebP(data, webpQuality)
		if err != nil {
			// transcode is best-effort; the provider output is still valid
			log.Printf("⚠️ [WhiteLabel] WebP transcode failed, relaying original: %v", err)
		} else {
			data = webpData
			contentType = "image/webp"
		}
	}

	log.Printf("✅ [WhiteLabel] Processed image: %d bytes (%s)", len(data), contentType)
	return &ProcessedImage{ContentType: contentType, Data: data}, nil
}
