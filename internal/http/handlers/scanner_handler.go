// README: Trip DNA scanner handlers (confirmation text and uploaded screenshots).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/modules/scanner"
)

type ScannerHandler struct {
	scanner *scanner.Service
	timeout time.Duration
}

func NewScannerHandler(svc *scanner.Service, timeout time.Duration) *ScannerHandler {
	return &ScannerHandler{scanner: svc, timeout: timeout}
}

// Parse handles POST /api/scanner/parse.
func (h *ScannerHandler) Parse(c *gin.Context) {
	var req scanner.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.scanner.ProcessText(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// ParseImage handles POST /api/scanner/parse-image (multipart field "file").
func (h *ScannerHandler) ParseImage(c *gin.Context) {
	image, mimeType, err := readUpload(c, "file")
	if err != nil {
		writeUploadError(c, err)
		return
	}
	if image == nil {
		writeError(c, http.StatusBadRequest, `No file uploaded. Send an image as "file" field.`)
		return
	}
	req := scanner.Request{
		PassportCountry: c.PostForm("passportCountry"),
		WhatsAppNumber:  c.PostForm("whatsappNumber"),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.scanner.ProcessImage(ctx, image, mimeType, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
