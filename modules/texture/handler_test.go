package texture

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"prism-studio-server/modules/common/httputil"
	"prism-studio-server/modules/session"
)

type stubGenerator struct {
	lastPrompt string
	lastAspect string
	output     []byte
	err        error
}

func (s *stubGenerator) EditImage(ctx context.Context, imageData []byte, mimeType, prompt, aspectRatio string) ([]byte, error) {
	s.lastPrompt = prompt
	s.lastAspect = aspectRatio
	if s.err != nil {
		return nil, s.err
	}
	return s.output, nil
}

func multipartRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "swatch.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, form.WriteField(key, value))
	}
	require.NoError(t, form.Close())

	r := httptest.NewRequest("POST", "/functions/v1/texture-master-process", &buf)
	r.Header.Set("Content-Type", form.FormDataContentType())
	return r
}

func TestHandleProcessSuccess(t *testing.T) {
	gen := &stubGenerator{output: []byte("enhanced-png")}
	h := NewHandler(session.NewManager(nil), gen)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, map[string]string{
		"texture":  "metal",
		"strength": "80",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Equal(t, "enhanced-png", w.Body.String())

	require.Contains(t, gen.lastPrompt, "brushed metal")
	require.Contains(t, gen.lastPrompt, "strong enhancement")
	require.Equal(t, "1:1", gen.lastAspect)
}

func TestHandleProcessDefaults(t *testing.T) {
	gen := &stubGenerator{output: []byte("ok")}
	h := NewHandler(session.NewManager(nil), gen)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, map[string]string{"strength": "150"}))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, gen.lastPrompt, "linen weave")
	require.Contains(t, gen.lastPrompt, "moderate enhancement")
}

func TestHandleProcessGeneratorNotConfigured(t *testing.T) {
	h := NewHandler(session.NewManager(nil), nil)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body.Error, "GEMINI_API_KEY")
}

func TestPromptLevels(t *testing.T) {
	require.Contains(t, Options{Texture: TextureOak, Strength: 10}.Prompt(), "subtle")
	require.Contains(t, Options{Texture: TextureOak, Strength: 40}.Prompt(), "moderate")
	require.Contains(t, Options{Texture: TextureOak, Strength: 70}.Prompt(), "strong")
}
