package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// MaxDetailLen - provider error text is relayed at most this many bytes
const MaxDetailLen = 400

// ErrorResponse - JSON error envelope shared by every proxy endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError - JSON error with bounded detail text
func WriteError(w http.ResponseWriter, status int, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Details: Truncate(details, MaxDetailLen),
	}); err != nil {
		log.Printf("❌ Failed to encode error response: %v", err)
	}
}

// WriteImage - relay raw image bytes with the provider's declared content type
func WriteImage(w http.ResponseWriter, contentType string, data []byte) {
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Printf("❌ Failed to write image response: %v", err)
	}
}

// Truncate - cap a detail string so provider logs never leak unbounded
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
