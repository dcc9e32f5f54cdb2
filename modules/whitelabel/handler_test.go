package whitelabel

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"prism-studio-server/modules/common/config"
	"prism-studio-server/modules/common/httputil"
	"prism-studio-server/modules/session"
)

func multipartRequest(t *testing.T, imageName string, imageData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if imageName != "" {
		part, err := form.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, form.WriteField(key, value))
	}
	require.NoError(t, form.Close())

	r := httptest.NewRequest("POST", "/functions/v1/white-label-process", &buf)
	r.Header.Set("Content-Type", form.FormDataContentType())
	return r
}

func setTestConfig(t *testing.T, photoroomURL, apiKey string) {
	t.Helper()
	config.SetConfigForTest(&config.Config{
		Port:            "8080",
		PhotoroomAPIURL: photoroomURL,
		PhotoroomAPIKey: apiKey,
	})
}

func newTestHandler() *Handler {
	return &Handler{service: NewService(), sessions: session.NewManager(nil)}
}

func TestHandleProcessSuccess(t *testing.T) {
	var gotForm map[string]string
	var calls int

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, r.ParseMultipartForm(32<<20))

		gotForm = map[string]string{}
		for key, values := range r.MultipartForm.Value {
			gotForm[key] = values[0]
		}
		_, _, err := r.FormFile("imageFile")
		require.NoError(t, err)

		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-result"))
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "test-key")

	// 300 KiB source, the end-to-end scenario
	imageData := bytes.Repeat([]byte("j"), 300*1024)
	r := multipartRequest(t, "product.jpg", imageData, map[string]string{
		"backgroundStyle": "PURE_WHITE",
		"shadowIntensity": "70",
	})
	w := httptest.NewRecorder()
	newTestHandler().HandleProcess(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.Equal(t, "png-result", w.Body.String())
	require.Equal(t, 1, calls)

	require.Equal(t, "true", gotForm["removeBackground"])
	require.Equal(t, "FFFFFF", gotForm["background.color"])
	require.Equal(t, "ai.hard", gotForm["shadow.mode"])
	require.Equal(t, "1000x1000", gotForm["outputSize"])
}

func TestHandleProcessTransparentOmitsColor(t *testing.T) {
	var gotForm map[string][]string
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotForm = r.MultipartForm.Value
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("ok"))
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "test-key")

	r := multipartRequest(t, "p.png", []byte("png"), map[string]string{
		"backgroundStyle": "TRANSPARENT",
		"shadowIntensity": "10",
	})
	w := httptest.NewRecorder()
	newTestHandler().HandleProcess(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, gotForm, "background.color")
	require.Equal(t, "ai.soft", gotForm["shadow.mode"][0])
}

func TestHandleProcessMissingImage(t *testing.T) {
	calls := 0
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "test-key")

	r := multipartRequest(t, "", nil, map[string]string{"shadowIntensity": "50"})
	w := httptest.NewRecorder()
	newTestHandler().HandleProcess(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 0, calls, "validation failures must not reach the provider")

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Missing image file", body.Error)
}

func TestHandleProcessMissingAPIKey(t *testing.T) {
	calls := 0
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "")

	r := multipartRequest(t, "p.jpg", []byte("jpeg"), nil)
	w := httptest.NewRecorder()
	newTestHandler().HandleProcess(w, r)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 0, calls)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body.Error, "PHOTOROOM_API_KEY")
}

func TestHandleProcessProviderFailure(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(bytes.Repeat([]byte("e"), 2000))
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "test-key")

	r := multipartRequest(t, "p.jpg", []byte("jpeg"), nil)
	w := httptest.NewRecorder()
	newTestHandler().HandleProcess(w, r)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Photoroom processing failed", body.Error)
	require.NotEmpty(t, body.Details)
	require.LessOrEqual(t, len(body.Details), httputil.MaxDetailLen)
}

func TestHandleProcessQuotaExceeded(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "test-key")

	r := multipartRequest(t, "p.jpg", []byte("jpeg"), nil)
	w := httptest.NewRecorder()
	newTestHandler().HandleProcess(w, r)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Contains(t, body.Details, "quota")
}

func TestHandleProcessMirrorsSession(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("ok"))
	}))
	defer provider.Close()
	setTestConfig(t, provider.URL, "test-key")

	h := newTestHandler()
	r := multipartRequest(t, "p.jpg", []byte("jpeg"), map[string]string{"sessionId": "sess-7"})
	w := httptest.NewRecorder()
	h.HandleProcess(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	sess := h.sessions.Lookup("sess-7")
	require.NotNil(t, sess)
	snap := sess.State().Snapshot()
	require.Equal(t, session.StatusSuccess, snap.Status)
	require.NotEmpty(t, snap.ResultImage)
}

func TestParseOptionsDefaults(t *testing.T) {
	r := multipartRequest(t, "p.jpg", []byte("x"), map[string]string{
		"backgroundStyle": "NEON_PINK",
		"shadowIntensity": "9000",
	})
	_, err := httputil.ReadImageUpload(r, 10<<20)
	require.NoError(t, err)

	opts := ParseOptions(r)
	require.Equal(t, StylePureWhite, opts.BackgroundStyle)
	require.Equal(t, 50, opts.ShadowIntensity)
	require.Equal(t, "ai.hard", opts.ShadowMode())
}
