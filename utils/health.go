package utils

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const healthPingTimeout = 2 * time.Second

// HealthStatus represents current status of external services. A nil field
// means that dependency is not in use.
type HealthStatus struct {
	Status    string    `json:"status"`
	Mongo     *bool     `json:"mongo,omitempty"`
	Redis     *bool     `json:"redis,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// HealthMonitor pings the store and cache periodically and keeps the latest
// snapshot in memory for /health.
type HealthMonitor struct {
	mongoClient *mongo.Client
	redisClient *redis.Client
	interval    time.Duration

	mu      sync.RWMutex
	current HealthStatus
}

// NewHealthMonitor accepts nil clients for dependencies that are disabled.
func NewHealthMonitor(mongoClient *mongo.Client, redisClient *redis.Client, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &HealthMonitor{
		mongoClient: mongoClient,
		redisClient: redisClient,
		interval:    interval,
		current:     HealthStatus{Status: "ok"},
	}
}

// Check pings every configured dependency once and stores the result.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "ok", CheckedAt: time.Now().UTC()}

	if m.mongoClient != nil {
		pctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
		ok := m.mongoClient.Ping(pctx, nil) == nil
		cancel()
		status.Mongo = &ok
		if !ok {
			status.Status = "degraded"
		}
	}
	if m.redisClient != nil {
		pctx, cancel := context.WithTimeout(ctx, healthPingTimeout)
		ok := m.redisClient.Ping(pctx).Err() == nil
		cancel()
		status.Redis = &ok
		if !ok {
			status.Status = "degraded"
		}
	}

	m.mu.Lock()
	m.current = status
	m.mu.Unlock()
	return status
}

// Status returns the latest stored health snapshot.
func (m *HealthMonitor) Status() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Start checks immediately and then on every tick until ctx is cancelled.
func (m *HealthMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			if s := m.Check(ctx); s.Status != "ok" {
				GetLogger().Warn("Health check degraded",
					zap.Boolp("mongo", s.Mongo), zap.Boolp("redis", s.Redis))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Handler serves the latest snapshot. It always answers 200 so the process
// stays reachable while a dependency is down.
func (m *HealthMonitor) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Status())
	}
}
