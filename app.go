package main

import (
	"context"
	"fmt"

	"pingparcel/config"
	"pingparcel/database"
	memoryRepo "pingparcel/database/repository/memory"
	parcelRepo "pingparcel/database/repository/parcel"
	paymentRepo "pingparcel/database/repository/payment"
	trackingRepo "pingparcel/database/repository/tracking"
	"pingparcel/handlers"
	"pingparcel/middleware"
	"pingparcel/routes"
	"pingparcel/services/parcel"
	"pingparcel/services/payment"
	"pingparcel/services/tracking"
	"pingparcel/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	driverMongo  = "mongo"
	driverMemory = "memory"
)

// repositories holds one repository per collection plus the client behind
// them, which is nil for the memory driver.
type repositories struct {
	parcels   parcelRepo.ParcelRepository
	payments  paymentRepo.PaymentRepository
	trackings trackingRepo.TrackingRepository
	tracking  trackingRepo.TrackingRepository

	mongoClient *mongo.Client
}

func openRepositories(ctx context.Context, cfg config.Config) (*repositories, error) {
	switch cfg.DatabaseDriver {
	case driverMemory:
		return &repositories{
			parcels:   memoryRepo.NewParcelRepo(),
			payments:  memoryRepo.NewPaymentRepo(),
			trackings: memoryRepo.NewTrackingRepo(database.TrackingsCollection),
			tracking:  memoryRepo.NewTrackingRepo(database.TrackingCollection),
		}, nil
	case driverMongo, "":
		client, err := database.Connect(ctx, cfg.MongoURI())
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.DatabaseName)
		return &repositories{
			parcels:     parcelRepo.NewMongoParcelRepo(db),
			payments:    paymentRepo.NewMongoPaymentRepo(db),
			trackings:   trackingRepo.NewMongoTrackingRepo(db, database.TrackingsCollection),
			tracking:    trackingRepo.NewMongoTrackingRepo(db, database.TrackingCollection),
			mongoClient: client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}

func (r *repositories) ensureIndexes(ctx context.Context) error {
	for name, ensure := range map[string]func(context.Context) error{
		database.ParcelsCollection:   r.parcels.EnsureIndexes,
		database.PaymentsCollection:  r.payments.EnsureIndexes,
		database.TrackingsCollection: r.trackings.EnsureIndexes,
		database.TrackingCollection:  r.tracking.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("failed to ensure %s indexes: %w", name, err)
		}
	}
	return nil
}

func (r *repositories) close() error {
	if r.mongoClient == nil {
		return nil
	}
	return database.Disconnect(r.mongoClient)
}

// newRouter builds the services on top of repos and mounts every route.
// cacheClient and health may be nil.
func newRouter(cfg config.Config, repos *repositories, cacheClient *redis.Client, health *utils.HealthMonitor, logger *zap.Logger) (*gin.Engine, error) {
	var trackingsCache, trackingCache tracking.EventCache
	if cacheClient != nil && cfg.TrackingCacheTTL() > 0 {
		cache := tracking.NewRedisEventCache(cacheClient, cfg.TrackingCacheTTL())
		trackingsCache, trackingCache = cache, cache
	}

	parcelService := parcel.NewDefaultParcelService(repos.parcels)
	paymentService := payment.NewDefaultPaymentService(repos.parcels, repos.payments, logger)
	intents := payment.NewStripeIntentGateway(cfg.StripeKey)
	trackingsService := tracking.NewDefaultTrackingService(repos.trackings, trackingsCache, logger)
	trackingService := tracking.NewDefaultTrackingService(repos.tracking, trackingCache, logger)

	var healthHandler gin.HandlerFunc
	if health != nil {
		healthHandler = health.Handler()
	}
	bundle := handlers.NewHandlerBundle(
		handlers.NewParcelHandler(parcelService),
		handlers.NewPaymentHandler(paymentService, intents),
		handlers.NewTrackingHandler(trackingsService),
		handlers.NewTrackingHandler(trackingService),
		healthHandler,
	)

	router := gin.New()
	// Client IPs come from forwarding headers only when the peer is listed.
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	routes.RegisterRoutes(router, bundle)
	return router, nil
}
