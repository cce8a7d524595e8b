package handlers

import (
	"net/http"

	"pingparcel/models"
	"pingparcel/services/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentHandler serves payment recording, history and intent creation.
type PaymentHandler struct {
	Service payment.PaymentService
	Intents payment.IntentGateway
}

func NewPaymentHandler(svc payment.PaymentService, intents payment.IntentGateway) *PaymentHandler {
	return &PaymentHandler{Service: svc, Intents: intents}
}

// RecordPaymentHandler handles POST /payments.
func (h *PaymentHandler) RecordPaymentHandler(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	id, err := h.Service.RecordPayment(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Failed to record payment", err)
		return
	}
	getLogger(c).Info("Payment recorded",
		zap.String("id", id),
		zap.String("parcelId", req.ParcelID),
		zap.String("transactionId", req.TransactionID))
	c.JSON(http.StatusCreated, gin.H{"insertedId": id})
}

// ListPaymentsHandler handles GET /payments?email=&parcelId=.
func (h *PaymentHandler) ListPaymentsHandler(c *gin.Context) {
	filter := models.PaymentFilter{
		Email:    c.Query("email"),
		ParcelID: c.Query("parcelId"),
	}
	payments, err := h.Service.ListPayments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to list payments", err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// CreatePaymentIntentHandler handles POST /create-payment-intent.
func (h *PaymentHandler) CreatePaymentIntentHandler(c *gin.Context) {
	var req models.PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	secret, err := h.Intents.CreatePaymentIntent(c.Request.Context(), req.AmountInCents)
	if err != nil {
		respondError(c, "Failed to create payment intent", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}
