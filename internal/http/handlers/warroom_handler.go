// README: War-room handlers (flight disruption monitor, advisories, raw flight status).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/modules/warroom"
)

type WarRoomHandler struct {
	warroom *warroom.Service
	timeout time.Duration
}

func NewWarRoomHandler(svc *warroom.Service, timeout time.Duration) *WarRoomHandler {
	return &WarRoomHandler{warroom: svc, timeout: timeout}
}

// Monitor handles POST /api/warroom/monitor.
func (h *WarRoomHandler) Monitor(c *gin.Context) {
	var req warroom.MonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	res, err := h.warroom.Monitor(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// Advisories handles GET /api/warroom/advisories?destination=.
func (h *WarRoomHandler) Advisories(c *gin.Context) {
	destination := c.Query("destination")
	advisories, err := h.warroom.Advisories(c.Request.Context(), destination)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"destination": destination, "advisories": advisories})
}

// FlightStatus handles GET /api/warroom/flight?iata=.
func (h *WarRoomHandler) FlightStatus(c *gin.Context) {
	fs, err := h.warroom.FlightStatus(c.Request.Context(), c.Query("iata"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, fs)
}
