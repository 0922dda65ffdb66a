// README: Travel planning handlers.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"roamgenie/internal/modules/flights"
	"roamgenie/internal/service"
)

type TravelHandler struct {
	planner *service.TripPlanner
	timeout time.Duration
}

func NewTravelHandler(planner *service.TripPlanner, timeout time.Duration) *TravelHandler {
	return &TravelHandler{planner: planner, timeout: timeout}
}

// Plan handles POST /api/travel/plan.
func (h *TravelHandler) Plan(c *gin.Context) {
	var req service.PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	plan, err := h.planner.PlanTrip(ctx, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, plan)
}

// IATAMap handles GET /api/travel/iata-map.
func (h *TravelHandler) IATAMap(c *gin.Context) {
	writeJSON(c, http.StatusOK, flights.IATAToCountry)
}
