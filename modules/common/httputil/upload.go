package httputil

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
)

// multipartFormOverhead - slack for boundary markers and option fields on top
// of the image payload cap
const multipartFormOverhead = 1 << 20

// ImageUpload - the validated `image` field of a multipart request
type ImageUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// UploadError - validation failure that maps straight to a 400
type UploadError struct {
	Message string
}

func (e *UploadError) Error() string {
	return e.Message
}

// ReadImageUpload - validate the request as multipart/form-data and extract
// the `image` file. Oversized files are refused from the part header before
// the payload is buffered.
func ReadImageUpload(r *http.Request, maxSize int64) (*ImageUpload, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, &UploadError{Message: "Expected multipart/form-data"}
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxSize+multipartFormOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return nil, &UploadError{Message: fmt.Sprintf("Failed to parse form: %v", err)}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, &UploadError{Message: "Missing image file"}
	}
	defer file.Close()

	if header.Size > maxSize {
		return nil, &UploadError{Message: fmt.Sprintf("Image too large (max %dMB)", maxSize/(1<<20))}
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, &UploadError{Message: fmt.Sprintf("Image too large (max %dMB)", maxSize/(1<<20))}
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	name := header.Filename
	if name == "" {
		name = "image.jpg"
	}

	return &ImageUpload{
		Name:        name,
		ContentType: mimeType,
		Data:        data,
	}, nil
}
