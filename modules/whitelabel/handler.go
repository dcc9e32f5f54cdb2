package whitelabel

import (
	"log"
	"net/http"

	"prism-studio-server/modules/common/httputil"
	"prism-studio-server/modules/common/storage"
	"prism-studio-server/modules/session"
)

type Handler struct {
	service  *Service
	sessions *session.Manager
}

func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{
		service:  NewService(),
		sessions: sessions,
	}
}

// HandleProcess - POST /functions/v1/white-label-process
// Amazon main image mode: background removal, centered 1:1 output
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	image, err := httputil.ReadImageUpload(r, storage.MaxUploadSize)
	if err != nil {
		httputil.MapError(w, err)
		return
	}

	opts := ParseOptions(r)
	sess, token := h.sessions.Mirror(r)

	result, err := h.service.Process(r.Context(), image, opts)
	if err != nil {
		log.Printf("❌ [WhiteLabel] %v", err)
		if sess != nil {
			sess.Fail(token, err.Error())
		}
		httputil.MapError(w, err)
		return
	}

	if sess != nil {
		sess.Succeed(token, &session.Result{
			Ref:         "result://white-label/" + image.Name,
			ContentType: result.ContentType,
		})
	}

	httputil.WriteImage(w, result.ContentType, result.Data)
}
