// README: Base handler utilities (JSON helpers, upload reading, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/ai"
	"roamgenie/internal/modules/emergency"
	"roamgenie/internal/modules/passport"
	"roamgenie/internal/modules/scanner"
	"roamgenie/internal/modules/warroom"
	"roamgenie/internal/notify"
	"roamgenie/internal/service"
)

// MaxUploadBytes caps multipart uploads.
const MaxUploadBytes = 10 << 20

var logger = log.New(log.Writer(), "[http] ", log.LstdFlags)

var errUploadTooLarge = errors.New("file exceeds the 10 MB limit")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module errors onto HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var webhookErr *emergency.WebhookError
	switch {
	case errors.Is(err, scanner.ErrNoTextExtracted),
		errors.Is(err, passport.ErrCountryNotDetected):
		writeError(c, http.StatusUnprocessableEntity, capitalize(err.Error()))
	case errors.Is(err, scanner.ErrInputRejected),
		errors.Is(err, warroom.ErrInputRejected),
		errors.Is(err, passport.ErrInputRejected),
		errors.Is(err, passport.ErrUnsupportedImage),
		errors.Is(err, service.ErrInputRejected),
		errors.Is(err, emergency.ErrInputRejected),
		errors.Is(err, emergency.ErrInvalidNumber):
		writeError(c, http.StatusBadRequest, capitalize(err.Error()))
	case errors.Is(err, ai.ErrUpstreamTimeout):
		logger.Printf("upstream timeout on %s: %v", c.FullPath(), err)
		writeError(c, http.StatusGatewayTimeout, "the AI service timed out, please try again")
	case errors.Is(err, ai.ErrUpstreamGeneration):
		logger.Printf("upstream failure on %s: %v", c.FullPath(), err)
		writeError(c, http.StatusBadGateway, "the AI service is unavailable, please try again later")
	case errors.Is(err, notify.ErrNotConfigured),
		errors.Is(err, scanner.ErrOCRUnavailable),
		errors.Is(err, passport.ErrOCRUnavailable):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &webhookErr):
		writeError(c, webhookErr.Status, capitalize(webhookErr.Error()))
	default:
		logger.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// capitalize turns "input rejected: field ..." into "Field ..." for client messages.
func capitalize(msg string) string {
	if i := strings.Index(msg, ": "); i >= 0 && strings.HasPrefix(msg, "input rejected") {
		msg = msg[i+2:]
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

// readUpload reads one multipart file field, bounded by MaxUploadBytes.
// It returns (nil, "", nil) when the field is absent.
func readUpload(c *gin.Context, field string) ([]byte, string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, "", errUploadTooLarge
		}
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("read multipart form: %w", err)
	}
	if fh.Size > MaxUploadBytes {
		return nil, "", errUploadTooLarge
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return nil, "", err
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return data, mimeType, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// writeUploadError answers a failed readUpload.
func writeUploadError(c *gin.Context, err error) {
	if errors.Is(err, errUploadTooLarge) {
		writeError(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	writeError(c, http.StatusBadRequest, err.Error())
}
