package httputil

import (
	"errors"
	"net/http"
)

// MapError - translate the error taxonomy into the JSON envelope:
// client validation → 400, missing configuration → 500, provider failure →
// 502 with bounded detail, anything else → generic 500.
func MapError(w http.ResponseWriter, err error) {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		WriteError(w, http.StatusBadRequest, uploadErr.Message, "")
		return
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		WriteError(w, http.StatusInternalServerError, configErr.Message, "")
		return
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		WriteError(w, http.StatusBadGateway, providerErr.Message, providerErr.Details)
		return
	}

	WriteError(w, http.StatusInternalServerError, "Internal server error", err.Error())
}
