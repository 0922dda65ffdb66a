// README: Passport handlers (scan, visa-free lookup, passport list).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/modules/passport"
)

type PassportHandler struct {
	passport *passport.Service
	timeout  time.Duration
}

func NewPassportHandler(svc *passport.Service, timeout time.Duration) *PassportHandler {
	return &PassportHandler{passport: svc, timeout: timeout}
}

type visaFreeReq struct {
	Country string `json:"country"`
}

// Scan handles POST /api/passport/scan (multipart field "image").
func (h *PassportHandler) Scan(c *gin.Context) {
	image, mimeType, err := readUpload(c, "image")
	if err != nil {
		writeUploadError(c, err)
		return
	}
	if image == nil {
		writeError(c, http.StatusBadRequest, `No image file uploaded. Use field name "image".`)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.passport.Scan(ctx, image, mimeType)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// VisaFree handles POST /api/passport/visa-free.
func (h *PassportHandler) VisaFree(c *gin.Context) {
	var req visaFreeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, `Field "country" (string) is required.`)
		return
	}
	res, err := h.passport.Lookup(c.Request.Context(), req.Country)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// Countries handles GET /api/passport/countries.
func (h *PassportHandler) Countries(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"countries": h.passport.Countries(c.Request.Context())})
}
