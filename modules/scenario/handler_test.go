package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
	part, err := form.CreateFormFile("image", "product.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, form.WriteField(key, value))
	}
	require.NoError(t, form.Close())

	r := httptest.NewRequest("POST", "/functions/v1/scenario-engine-process", &buf)
	r.Header.Set("Content-Type", form.FormDataContentType())
	return r
}

func TestHandleProcessSuccess(t *testing.T) {
	gen := &stubGenerator{output: []byte("composited-png")}
	h := NewHandler(session.NewManager(nil), gen)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, map[string]string{"scene": "beach_sunset"}))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Equal(t, "composited-png", w.Body.String())

	require.Contains(t, gen.lastPrompt, "sandy beach at sunset")
	require.Contains(t, gen.lastPrompt, "Keep the product exactly as it is")
	require.Equal(t, "4:5", gen.lastAspect)
}

func TestHandleProcessUnknownSceneFallsBack(t *testing.T) {
	gen := &stubGenerator{output: []byte("ok")}
	h := NewHandler(session.NewManager(nil), gen)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, map[string]string{"scene": "mars_colony"}))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, gen.lastPrompt, "Manhattan street")
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

func TestHandleProcessGeneratorFailure(t *testing.T) {
	gen := &stubGenerator{err: &httputil.ProviderError{Message: "Gemini API call failed", Details: "rate limited"}}
	h := NewHandler(session.NewManager(nil), gen)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, nil))

	require.Equal(t, http.StatusBadGateway, w.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Gemini API call failed", body.Error)
}

func TestHandleProcessMirrorsFailureToSession(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	sessions := session.NewManager(nil)
	h := NewHandler(sessions, gen)

	w := httptest.NewRecorder()
	h.HandleProcess(w, multipartRequest(t, map[string]string{"sessionId": "sess-9"}))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	sess := sessions.Lookup("sess-9")
	require.NotNil(t, sess)
	snap := sess.State().Snapshot()
	require.Equal(t, session.StatusError, snap.Status)
	require.NotEmpty(t, snap.ErrorMessage)
}
