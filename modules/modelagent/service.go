package modelagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"prism-studio-server/modules/common/config"
	"prism-studio-server/modules/common/httputil"
	"prism-studio-server/modules/common/storage"
)

// ProcessedImage - generated try-on image ready for relay
type ProcessedImage struct {
	ContentType string
	Data        []byte
}

type Service struct {
	httpClient *http.Client
	store      storage.ObjectStore
}

func NewService(store storage.ObjectStore) *Service {
	return &Service{
		// IDM-VTON runs ~30-60s; leave room for the wait header plus the
		// result download
		httpClient: &http.Client{Timeout: 180 * time.Second},
		store:      store,
	}
}

// Process - deliver the garment image to Replicate (inline or staged by
// size), run the try-on prediction, and fetch the generated image
func (s *Service) Process(ctx context.Context, image *httputil.ImageUpload, opts Options) (*ProcessedImage, error) {
	cfg := config.GetConfig()

	if cfg.ReplicateAPIToken == "" {
		return nil, &httputil.ConfigError{Message: "REPLICATE_API_TOKEN not configured"}
	}

	log.Printf("🧥 [ModelAgent] Processing %s (%d bytes, model: %s, category: %s)",
		image.Name, len(image.Data), opts.ModelType, opts.GarmentCategory)

	delivery, err := storage.PrepareDelivery(ctx, s.store, image.Data, image.ContentType, storage.InlineThreshold)
	if err != nil {
		return nil, err
	}
	// the staged object is removed once the provider call has finished,
	// success or not
	defer delivery.Cleanup(ctx)

	prediction, err := s.createPrediction(ctx, cfg, delivery.URL, opts)
	if err != nil {
		return nil, err
	}

	if prediction.Status == "failed" {
		details := predictionFailureDetail(prediction)
		log.Printf("❌ [ModelAgent] Prediction failed: %s", httputil.Truncate(details, 200))
		return nil, &httputil.ProviderError{Message: "Model generation failed", Details: details}
	}

	resultURL, err := extractOutputURL(prediction.Output)
	if err != nil {
		return nil, err
	}

	return s.fetchResult(ctx, resultURL)
}

// createPrediction - POST the prediction with a synchronous wait preference
func (s *Service) createPrediction(ctx context.Context, cfg *config.Config, garmentURL string, opts Options) (*predictionResponse, error) {
	reqBody := predictionRequest{
		Version: idmVtonVersion,
		Input: predictionInput{
			GarmImg:    garmentURL,
			HumanImg:   opts.HumanImage(),
			GarmentDes: opts.GarmentDescription(),
			Category:   opts.GarmentCategory,
			ForceDC:    opts.GarmentCategory == CategoryDresses,
			Crop:       true,
			Steps:      30,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.ReplicateAPIURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cfg.ReplicateAPIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "wait=60")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Replicate request failed", Details: err.Error()}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Failed to read Replicate response", Details: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("❌ [ModelAgent] Replicate API error: %d %s", resp.StatusCode, httputil.Truncate(string(bodyBytes), 200))

		var errBody providerErrorBody
		message := ""
		if json.Unmarshal(bodyBytes, &errBody) == nil {
			if errBody.Detail != "" {
				message = errBody.Detail
			} else if errBody.Message != "" {
				message = errBody.Message
			}
		}
		if message == "" {
			message = "Replicate processing failed"
		}
		return nil, &httputil.ProviderError{Message: message, Details: string(bodyBytes)}
	}

	var prediction predictionResponse
	if err := json.Unmarshal(bodyBytes, &prediction); err != nil {
		return nil, &httputil.ProviderError{Message: "Invalid Replicate response", Details: err.Error()}
	}
	return &prediction, nil
}

// fetchResult - download the generated image from the URL the provider returned
func (s *Service) fetchResult(ctx context.Context, resultURL string) (*ProcessedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resultURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create result request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Failed to fetch generated image", Details: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httputil.ProviderError{
			Message: "Failed to fetch generated image",
			Details: fmt.Sprintf("status %d", resp.StatusCode),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &httputil.ProviderError{Message: "Failed to read generated image", Details: err.Error()}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	log.Printf("✅ [ModelAgent] Generated image fetched: %d bytes (%s)", len(data), contentType)
	return &ProcessedImage{ContentType: contentType, Data: data}, nil
}

// predictionFailureDetail - provider-reported asynchronous failure text,
// falling back to the log tail
func predictionFailureDetail(prediction *predictionResponse) string {
	if prediction.Error != nil {
		if s, ok := prediction.Error.(string); ok && s != "" {
			return s
		}
		return fmt.Sprintf("%v", prediction.Error)
	}
	if prediction.Logs != "" {
		logs := prediction.Logs
		if len(logs) > 500 {
			logs = logs[len(logs)-500:]
		}
		return logs
	}
	return "Unknown error"
}

// extractOutputURL - prediction output is a URL or a list of URLs
func extractOutputURL(output interface{}) (string, error) {
	if output == nil {
		return "", &httputil.ProviderError{Message: "No output from model (may have timed out)"}
	}

	switch v := output.(type) {
	case string:
		if v != "" {
			return v, nil
		}
	case []interface{}:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", &httputil.ProviderError{Message: "Invalid output format"}
}
