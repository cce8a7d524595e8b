package handlers

import (
	"net/http"

	"pingparcel/models"
	"pingparcel/services/tracking"

	"github.com/gin-gonic/gin"
)

// TrackingHandler serves one tracking ledger. The router mounts one
// instance per ledger.
type TrackingHandler struct {
	Service tracking.TrackingService
}

func NewTrackingHandler(svc tracking.TrackingService) *TrackingHandler {
	return &TrackingHandler{Service: svc}
}

// AppendEventHandler handles POST on the ledger root.
func (h *TrackingHandler) AppendEventHandler(c *gin.Context) {
	var ev models.TrackingEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		respondBindError(c, err)
		return
	}
	id, err := h.Service.AppendEvent(c.Request.Context(), &ev)
	if err != nil {
		respondError(c, "Failed to append tracking event", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// ListEventsHandler handles GET on /:trackingId.
func (h *TrackingHandler) ListEventsHandler(c *gin.Context) {
	events, err := h.Service.ListEvents(c.Request.Context(), c.Param("trackingId"))
	if err != nil {
		respondError(c, "Failed to list tracking events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}
