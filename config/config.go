package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	// Comma separated proxy IPs or CIDRs whose forwarding headers are
	// believed. Empty trusts none and uses the peer address.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`

	// Database configuration. DatabaseDriver is "mongo" or "memory".
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	DatabaseName   string `mapstructure:"DATABASE_NAME"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPass         string `mapstructure:"DB_PASS"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBAppName      string `mapstructure:"DB_APP_NAME"`

	// Stripe secret key.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Redis configuration. An empty address disables Redis entirely.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`

	TrackingCacheTTLSeconds    int `mapstructure:"TRACKING_CACHE_TTL_SECONDS"`
	HealthCheckIntervalSeconds int `mapstructure:"HEALTH_CHECK_INTERVAL_SECONDS"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("DATABASE_DRIVER", "mongo")
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	v.SetDefault("DATABASE_NAME", "pingParcelDB")
	v.SetDefault("DB_USER", "")
	v.SetDefault("DB_PASS", "")
	v.SetDefault("DB_HOST", "")
	v.SetDefault("DB_APP_NAME", "ping-parcel")
	v.SetDefault("STRIPE_KEY", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("TRACKING_CACHE_TTL_SECONDS", 0)
	v.SetDefault("HEALTH_CHECK_INTERVAL_SECONDS", 60)
}

// LoadConfig fills AppConfig from .env, config.yaml and the environment.
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

// Load reads configuration through the given viper instance.
func Load(v *viper.Viper) (Config, error) {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// MongoURI returns the connection string. When DB_USER and DB_HOST are set an
// Atlas style SRV URI is built from them; otherwise DATABASE_URL is used as is.
func (c Config) MongoURI() string {
	if c.DBUser == "" || c.DBHost == "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "mongodb+srv",
		User:   url.UserPassword(c.DBUser, c.DBPass),
		Host:   c.DBHost,
		Path:   "/",
	}
	q := url.Values{}
	q.Set("retryWrites", "true")
	q.Set("w", "majority")
	if c.DBAppName != "" {
		q.Set("appName", c.DBAppName)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// TrustedProxyList splits TrustedProxies; nil means trust no proxy.
func (c Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

func (c Config) TrackingCacheTTL() time.Duration {
	return time.Duration(c.TrackingCacheTTLSeconds) * time.Second
}

func (c Config) HealthCheckInterval() time.Duration {
	if c.HealthCheckIntervalSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.HealthCheckIntervalSeconds) * time.Second
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
