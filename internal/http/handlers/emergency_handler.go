// README: Emergency alert and IVR call handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/modules/emergency"
)

type EmergencyHandler struct {
	emergency *emergency.Service
}

func NewEmergencyHandler(svc *emergency.Service) *EmergencyHandler {
	return &EmergencyHandler{emergency: svc}
}

type alertReq struct {
	WhatsAppNumber string `json:"whatsappNumber"`
}

type callReq struct {
	ToNumber string `json:"toNumber"`
}

// FlightCancellation handles POST /api/emergency/flight-cancellation.
func (h *EmergencyHandler) FlightCancellation(c *gin.Context) {
	h.sendAlert(c, emergency.FlightCancellation)
}

// OfflineFallback handles POST /api/emergency/offline-fallback.
func (h *EmergencyHandler) OfflineFallback(c *gin.Context) {
	h.sendAlert(c, emergency.OfflineFallback)
}

func (h *EmergencyHandler) sendAlert(c *gin.Context, alert emergency.Alert) {
	var req alertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.emergency.SendAlert(c.Request.Context(), alert, req.WhatsAppNumber)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

// Call handles POST /api/ivr/call.
func (h *EmergencyHandler) Call(c *gin.Context) {
	var req callReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.emergency.TriggerCall(c.Request.Context(), req.ToNumber)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}
