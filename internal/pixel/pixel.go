// Package pixel serves the 1x1 transparent tracking image embedded in every
// outbound email and records the open event it represents.
package pixel

import (
	"net/http"
	"strconv"

	"github.com/ignite/sparkpost-monitor/internal/domain"
	"github.com/ignite/sparkpost-monitor/internal/pkg/logger"
	"github.com/ignite/sparkpost-monitor/internal/store"
)

// png1x1 is a fixed 67-byte transparent PNG. Every request gets exactly these
// bytes back — the handler never generates or caches a variant image.
var png1x1 = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44,
	0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1F,
	0x15, 0xC4, 0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9C, 0x63, 0x00,
	0x01, 0x00, 0x00, 0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
}

// Handler serves GET /v1/events/open.
type Handler struct {
	results store.ResultStore
}

// NewHandler builds a pixel Handler.
func NewHandler(results store.ResultStore) *Handler {
	return &Handler{results: results}
}

// ServeHTTP records an Open result for request_id, if present and valid, and
// always responds with the pixel. A missing or malformed request_id is not an
// error condition — the image is served regardless, since a broken tracking
// parameter must never surface as a visible failure to the mail client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("request_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			if err := h.results.Append(r.Context(), &domain.EmailResult{
				RequestID: id,
				Status:    "Open",
			}); err != nil {
				logger.Warn("pixel: failed to record open", "request_id", id, "error", err.Error())
			}
		} else {
			logger.Warn("pixel: malformed request_id", "request_id", raw)
		}
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png1x1)
}

// Tag renders the <img> element appended to every outbound email's HTML body.
// baseURL is the server's public URL (config.ServerConfig.URL).
func Tag(baseURL string, requestID int64) string {
	return `<img src="` + baseURL + `/v1/events/open?request_id=` +
		strconv.FormatInt(requestID, 10) + `" width="1" height="1" alt="" />`
}
