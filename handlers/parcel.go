package handlers

import (
	"net/http"

	"pingparcel/models"
	"pingparcel/services/parcel"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParcelHandler serves the /parcels endpoints.
type ParcelHandler struct {
	Service parcel.ParcelService
}

func NewParcelHandler(svc parcel.ParcelService) *ParcelHandler {
	return &ParcelHandler{Service: svc}
}

type markPaidRequest struct {
	TransactionID string `json:"transactionId"`
}

// ListParcelsHandler handles GET /parcels?email=.
func (h *ParcelHandler) ListParcelsHandler(c *gin.Context) {
	parcels, err := h.Service.ListParcels(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, "Failed to list parcels", err)
		return
	}
	c.JSON(http.StatusOK, parcels)
}

// GetParcelHandler handles GET /parcels/:id.
func (h *ParcelHandler) GetParcelHandler(c *gin.Context) {
	p, err := h.Service.GetParcel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to fetch parcel", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateParcelHandler handles POST /parcels.
func (h *ParcelHandler) CreateParcelHandler(c *gin.Context) {
	var p models.Parcel
	if err := c.ShouldBindJSON(&p); err != nil {
		respondBindError(c, err)
		return
	}
	id, err := h.Service.CreateParcel(c.Request.Context(), &p)
	if err != nil {
		respondError(c, "Failed to create parcel", err)
		return
	}
	getLogger(c).Info("Parcel created", zap.String("id", id), zap.String("created_by", p.CreatedBy))
	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// DeleteParcelHandler handles DELETE /parcels/:id.
func (h *ParcelHandler) DeleteParcelHandler(c *gin.Context) {
	n, err := h.Service.DeleteParcel(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Failed to delete parcel", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deletedCount": n})
}

// MarkPaidHandler handles PATCH /parcels/:id/pay. Unlike POST /payments it
// does not refuse an already paid parcel.
func (h *ParcelHandler) MarkPaidHandler(c *gin.Context) {
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.Service.MarkPaid(c.Request.Context(), c.Param("id"), req.TransactionID)
	if err != nil {
		respondError(c, "Failed to mark parcel paid", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
