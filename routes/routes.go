package routes

import (
	"net/http"
	"time"

	"pingparcel/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterParcelRoutes registers parcel endpoints.
func RegisterParcelRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/parcels")
	{
		api.GET("", hb.ListParcelsHandler)
		api.POST("", hb.CreateParcelHandler)
		api.GET("/:id", hb.GetParcelHandler)
		api.DELETE("/:id", hb.DeleteParcelHandler)
		api.PATCH("/:id/pay", hb.MarkPaidHandler)
	}
}

// RegisterPaymentRoutes registers payment recording and intent endpoints.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/payments")
	{
		api.GET("", hb.ListPaymentsHandler)
		api.POST("", hb.RecordPaymentHandler)
	}
	r.POST("/create-payment-intent", hb.CreatePaymentIntentHandler)
}

// RegisterTrackingRoutes registers both tracking ledgers. They share no state.
func RegisterTrackingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	trackings := r.Group("/trackings")
	{
		trackings.POST("", hb.AppendTrackingsHandler)
		trackings.GET("/:trackingId", hb.ListTrackingsHandler)
	}
	tracking := r.Group("/tracking")
	{
		tracking.POST("", hb.AppendTrackingHandler)
		tracking.GET("/:trackingId", hb.ListTrackingHandler)
	}
}

// RegisterHealthRoutes registers the liveness, health and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "PingParcel server is running!")
	})
	if hb.HealthHandler != nil {
		r.GET("/health", hb.HealthHandler)
	} else {
		r.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	RegisterHealthRoutes(r, hb)
	RegisterParcelRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterTrackingRoutes(r, hb)
}
