package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"prism-studio-server/modules/session"
)

// Endpoint - where a workflow sends its generate requests
type Endpoint struct {
	URL       string
	ClientKey string
}

// Controller - drives one workflow's generate action against its proxy
// endpoint, mapping the outcome onto the owned status record. One request in
// flight at a time; callers disable the action while status is processing.
type Controller struct {
	endpoint   Endpoint
	state      *session.State
	httpClient *http.Client
}

func NewController(endpoint Endpoint, state *session.State) *Controller {
	return &Controller{
		endpoint:   endpoint,
		state:      state,
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}
}

// State - the status record this controller owns
func (c *Controller) State() *session.State {
	return c.state
}

// Generate - run one attempt: configuration check, startProcessing, multipart
// POST, then succeed/fail. No retries; a late response to a superseded
// attempt is discarded by the token check.
func (c *Controller) Generate(ctx context.Context, opts Options) error {
	upload := c.state.Upload()
	if upload == nil {
		return fmt.Errorf("no image uploaded")
	}

	if c.endpoint.URL == "" || c.endpoint.ClientKey == "" {
		msg := "Endpoint not configured: set the service URL and client key"
		c.state.FailDirect(msg)
		return fmt.Errorf("%s", msg)
	}

	token := c.state.StartProcessing()

	body, contentType, err := buildForm(upload, opts)
	if err != nil {
		c.state.Fail(token, fmt.Sprintf("Failed to build request: %v", err))
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL, body)
	if err != nil {
		c.state.Fail(token, fmt.Sprintf("Failed to create request: %v", err))
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.endpoint.ClientKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.state.Fail(token, fmt.Sprintf("Request failed: %v", err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := errorMessageFromResponse(resp)
		c.state.Fail(token, msg)
		return fmt.Errorf("%s", msg)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.state.Fail(token, fmt.Sprintf("Failed to read result: %v", err))
		return err
	}

	resultType := resp.Header.Get("Content-Type")
	if resultType == "" {
		resultType = "image/png"
	}

	result := &session.Result{
		Ref:         "blob://" + uuid.NewString(),
		ContentType: resultType,
		Data:        data,
	}
	if !c.state.Succeed(token, result) {
		log.Printf("⏭️ Discarded stale result (%d bytes)", len(data))
	}
	return nil
}

// buildForm - multipart body: the image part plus workflow option fields
func buildForm(upload *session.Upload, opts Options) (io.Reader, string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, upload.Name))
	header.Set("Content-Type", upload.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", err
	}

	if opts != nil {
		for key, value := range opts.Fields() {
			if err := form.WriteField(key, value); err != nil {
				return nil, "", err
			}
		}
	}

	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return &buf, form.FormDataContentType(), nil
}

// errorMessageFromResponse - prefer the endpoint's JSON envelope, fall back
// to a synthesized message from the status code
func errorMessageFromResponse(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := strings.TrimSpace(envelope.Error); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(envelope.Details); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Request failed (%d)", resp.StatusCode)
}
