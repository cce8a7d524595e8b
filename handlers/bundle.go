package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Parcel endpoints
	ListParcelsHandler  gin.HandlerFunc
	GetParcelHandler    gin.HandlerFunc
	CreateParcelHandler gin.HandlerFunc
	DeleteParcelHandler gin.HandlerFunc
	MarkPaidHandler     gin.HandlerFunc

	// Payment endpoints
	RecordPaymentHandler       gin.HandlerFunc
	ListPaymentsHandler        gin.HandlerFunc
	CreatePaymentIntentHandler gin.HandlerFunc

	// Tracking endpoints, one pair per ledger
	AppendTrackingsHandler gin.HandlerFunc
	ListTrackingsHandler   gin.HandlerFunc
	AppendTrackingHandler  gin.HandlerFunc
	ListTrackingHandler    gin.HandlerFunc

	// Operational endpoints
	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handler methods into a bundle. trackings and
// tracking serve the /trackings and /tracking ledgers respectively.
func NewHandlerBundle(parcels *ParcelHandler, payments *PaymentHandler, trackings, tracking *TrackingHandler, health gin.HandlerFunc) *HandlerBundle {
	return &HandlerBundle{
		ListParcelsHandler:  parcels.ListParcelsHandler,
		GetParcelHandler:    parcels.GetParcelHandler,
		CreateParcelHandler: parcels.CreateParcelHandler,
		DeleteParcelHandler: parcels.DeleteParcelHandler,
		MarkPaidHandler:     parcels.MarkPaidHandler,

		RecordPaymentHandler:       payments.RecordPaymentHandler,
		ListPaymentsHandler:        payments.ListPaymentsHandler,
		CreatePaymentIntentHandler: payments.CreatePaymentIntentHandler,

		AppendTrackingsHandler: trackings.AppendEventHandler,
		ListTrackingsHandler:   trackings.ListEventsHandler,
		AppendTrackingHandler:  tracking.AppendEventHandler,
		ListTrackingHandler:    tracking.ListEventsHandler,

		HealthHandler: health,
	}
}
