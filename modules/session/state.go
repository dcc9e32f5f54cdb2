package session

import (
	"fmt"
	"strings"
	"sync"
)

// Status - workflow processing status
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Token - identifies one processing attempt. A Reset or a newer
// StartProcessing invalidates older tokens, so a late completion from a
// superseded request is discarded instead of overwriting fresh state.
type Token uint64

// Upload - the user-provided source image
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result - the produced output image wrapped in a locally addressable reference
type Result struct {
	Ref         string
	ContentType string
	Data        []byte
}

// Snapshot - read-only view of the record, shaped for JSON fanout
type Snapshot struct {
	Status       Status `json:"status"`
	PreviewImage string `json:"previewImage,omitempty"`
	ResultImage  string `json:"resultImage,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	Generation   uint64 `json:"generation"`
}

// State - the per-workflow status record. One in-flight request at a time;
// transitions are the only mutation path and do no I/O.
type State struct {
	mu           sync.Mutex
	status       Status
	previewImage string
	uploadedFile *Upload
	result       *Result
	errorMessage string
	generation   uint64
}

// NewState - empty initial record
func NewState() *State {
	return &State{status: StatusIdle}
}

// SetPreview - record the preview reference; a prior failure is cleared back
// to idle so the user can retry from a fresh image
func (s *State) SetPreview(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewImage = ref
	s.errorMessage = ""
	if s.status == StatusError {
		s.status = StatusIdle
	}
}

// SetUpload - upload surface entry point: enforces the image type filter,
// stores the raw file and derives a preview reference from it
func (s *State) SetUpload(name, contentType string, data []byte) error {
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("unsupported file type: %s (image required)", contentType)
	}
	if name == "" {
		name = "image.jpg"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadedFile = &Upload{Name: name, ContentType: contentType, Data: data}
	s.previewImage = "upload://" + name
	s.errorMessage = ""
	if s.status == StatusError {
		s.status = StatusIdle
	}
	return nil
}

// StartProcessing - enter processing, clearing any prior result and error.
// The returned token must accompany the matching Succeed or Fail.
func (s *State) StartProcessing() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.status = StatusProcessing
	s.result = nil
	s.errorMessage = ""
	return Token(s.generation)
}

// Succeed - record the result; a stale token is dropped and reported false
func (s *State) Succeed(t Token, result *Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.generation {
		return false
	}
	s.status = StatusSuccess
	s.result = result
	s.errorMessage = ""
	return true
}

// Fail - record the failure message; a stale token is dropped and reported false
func (s *State) Fail(t Token, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uint64(t) != s.generation {
		return false
	}
	s.status = StatusError
	s.errorMessage = message
	s.result = nil
	return true
}

// FailDirect - record a failure that never reached processing (missing
// configuration); no token involved because no attempt was started
func (s *State) FailDirect(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusError
	s.errorMessage = message
	s.result = nil
}

// Reset - restore the empty initial record. The generation bump orphans any
// in-flight attempt.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.status = StatusIdle
	s.previewImage = ""
	s.uploadedFile = nil
	s.result = nil
	s.errorMessage = ""
}

// Upload - the raw uploaded file, nil when nothing was uploaded
func (s *State) Upload() *Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadedFile
}

// Result - the produced output, nil unless status is success
func (s *State) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// HasSource - whether a preview or source file is present (caller-enforced
// precondition for StartProcessing)
func (s *State) HasSource() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewImage != "" || s.uploadedFile != nil
}

// Snapshot - consistent view of the record
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Status:       s.status,
		PreviewImage: s.previewImage,
		ErrorMessage: s.errorMessage,
		Generation:   s.generation,
	}
	if s.result != nil {
		snap.ResultImage = s.result.Ref
	}
	return snap
}
