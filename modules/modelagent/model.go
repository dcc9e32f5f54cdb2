package modelagent

import (
	"net/http"
	"strings"
)

// idmVtonVersion - cuuupid/idm-vton: garment image + human image → the model
// wearing that garment
const idmVtonVersion = "0513734a452173b8173e907e3a59d19a36266e55b48528559432bd21c7d7e985"

const hfHumanBase = "https://huggingface.co/spaces/yisol/IDM-VTON/resolve/main/example/human"

// defaultModelImages - demographic tag → stock human image (3:4, standing,
// front-facing). Adding a tag here must be mirrored in the client's model list.
var defaultModelImages = map[string]string{
	"US_FEMALE":        hfHumanBase + "/taylor-.jpg",
	"JP_FEMALE":        hfHumanBase + "/00034_00.jpg",
	"MIDDLE_EAST_MALE": hfHumanBase + "/Jensen.jpeg",
	"EU_FEMALE":        hfHumanBase + "/00035_00.jpg",
	"ASIAN_MALE":       hfHumanBase + "/will1%20(1).jpg",
}

// Garment categories accepted by IDM-VTON
const (
	CategoryUpperBody = "upper_body"
	CategoryLowerBody = "lower_body"
	CategoryDresses   = "dresses"
)

// Options - model-agent request fields with defaults applied
type Options struct {
	ModelType       string
	GarmentCategory string
}

// ParseOptions - unknown tags and categories fall back to the defaults
func ParseOptions(r *http.Request) Options {
	opts := Options{
		ModelType:       "US_FEMALE",
		GarmentCategory: CategoryUpperBody,
	}

	if modelType := strings.TrimSpace(r.FormValue("modelType")); modelType != "" {
		if _, ok := defaultModelImages[modelType]; ok {
			opts.ModelType = modelType
		}
	}

	switch strings.TrimSpace(r.FormValue("garmentCategory")) {
	case CategoryLowerBody:
		opts.GarmentCategory = CategoryLowerBody
	case CategoryDresses:
		opts.GarmentCategory = CategoryDresses
	}

	return opts
}

// HumanImage - stock human image URL for the demographic tag
func (o Options) HumanImage() string {
	return defaultModelImages[o.ModelType]
}

// GarmentDescription - free-text garment hint for the model
func (o Options) GarmentDescription() string {
	switch o.GarmentCategory {
	case CategoryDresses:
		return "dress"
	case CategoryLowerBody:
		return "pants, trousers"
	default:
		return "top, jacket, shirt"
	}
}

// predictionRequest - Replicate predictions API request
type predictionRequest struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

type predictionInput struct {
	GarmImg    string `json:"garm_img"`
	HumanImg   string `json:"human_img"`
	GarmentDes string `json:"garment_des"`
	Category   string `json:"category"`
	ForceDC    bool   `json:"force_dc"`
	Crop       bool   `json:"crop"`
	Steps      int    `json:"steps"`
}

// predictionResponse - Replicate predictions API response (synchronous wait)
type predictionResponse struct {
	ID     string      `json:"id"`
	Status string      `json:"status"`
	Output interface{} `json:"output"`
	Error  interface{} `json:"error"`
	Logs   string      `json:"logs"`
}

// providerErrorBody - error shape Replicate returns on non-2xx
type providerErrorBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}
