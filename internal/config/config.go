package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server              ServerConfig
	Database            DatabaseConfig
	Redis               RedisConfig
	Kafka               KafkaConfig
	UserService         ServiceConfig
	NotificationService ServiceConfig
	Pricing             PricingConfig
	RateLimit           RateLimitConfig
	Features            FeatureFlags
	LogLevel            string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	SecurityTopic string
	PaymentsTopic string
	ConsumerGroup string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PricingConfig holds the fee ladder and the tamper tolerance. Amounts are
// rupees.
type PricingConfig struct {
	FreeDeliveryThreshold float64
	DeliveryFee           float64
	ConvenienceFee        float64
	TamperTolerance       float64
	Currency              string
}

// RateLimitPolicy configures one endpoint category. The mechanism is
// generic; these numbers are policy.
type RateLimitPolicy struct {
	MaxRequests int64
	Window      time.Duration
	Block       time.Duration
}

type RateLimitConfig struct {
	OrderCreate RateLimitPolicy
	Login       RateLimitPolicy
	CouponCheck RateLimitPolicy
}

type FeatureFlags struct {
	EnableOrderEvents      bool
	EnableCatalogCache     bool
	EnableIdempotencyGuard bool
	EnableNotifications    bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "snackrush"),
			Password:     getEnvString("DB_PASSWORD", "snackrush"),
			Name:         getEnvString("DB_NAME", "snackrush_checkout"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnvString("KAFKA_BROKER", "localhost:9092")},
			OrdersTopic:   getEnvString("KAFKA_ORDERS_TOPIC", "checkout.orders"),
			SecurityTopic: getEnvString("KAFKA_SECURITY_TOPIC", "checkout.security"),
			PaymentsTopic: getEnvString("KAFKA_PAYMENTS_TOPIC", "payments.events"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "checkout-service"),
		},
		UserService: ServiceConfig{
			BaseURL: getEnvString("USER_SERVICE_URL", "http://localhost:8081"),
			Timeout: time.Duration(getEnvInt("USER_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		NotificationService: ServiceConfig{
			BaseURL: getEnvString("NOTIFICATION_SERVICE_URL", "http://localhost:8085"),
			Timeout: time.Duration(getEnvInt("NOTIFICATION_SERVICE_TIMEOUT", 10)) * time.Second,
		},
		Pricing: PricingConfig{
			FreeDeliveryThreshold: getEnvFloat("PRICING_FREE_DELIVERY_THRESHOLD", 149),
			DeliveryFee:           getEnvFloat("PRICING_DELIVERY_FEE", 10),
			ConvenienceFee:        getEnvFloat("PRICING_CONVENIENCE_FEE", 6),
			TamperTolerance:       getEnvFloat("PRICING_TAMPER_TOLERANCE", 1),
			Currency:              getEnvString("PRICING_CURRENCY", "INR"),
		},
		RateLimit: RateLimitConfig{
			OrderCreate: RateLimitPolicy{
				MaxRequests: int64(getEnvInt("RATELIMIT_ORDER_MAX", 5)),
				Window:      time.Duration(getEnvInt("RATELIMIT_ORDER_WINDOW_MIN", 60)) * time.Minute,
				Block:       time.Duration(getEnvInt("RATELIMIT_ORDER_BLOCK_MIN", 30)) * time.Minute,
			},
			Login: RateLimitPolicy{
				MaxRequests: int64(getEnvInt("RATELIMIT_LOGIN_MAX", 10)),
				Window:      time.Duration(getEnvInt("RATELIMIT_LOGIN_WINDOW_MIN", 15)) * time.Minute,
				Block:       time.Duration(getEnvInt("RATELIMIT_LOGIN_BLOCK_MIN", 60)) * time.Minute,
			},
			CouponCheck: RateLimitPolicy{
				MaxRequests: int64(getEnvInt("RATELIMIT_COUPON_MAX", 20)),
				Window:      time.Duration(getEnvInt("RATELIMIT_COUPON_WINDOW_MIN", 60)) * time.Minute,
				Block:       time.Duration(getEnvInt("RATELIMIT_COUPON_BLOCK_MIN", 15)) * time.Minute,
			},
		},
		Features: FeatureFlags{
			EnableOrderEvents:      getEnvBool("FEATURE_ORDER_EVENTS", true),
			EnableCatalogCache:     getEnvBool("FEATURE_CATALOG_CACHE", true),
			EnableIdempotencyGuard: getEnvBool("FEATURE_IDEMPOTENCY_GUARD", true),
			EnableNotifications:    getEnvBool("FEATURE_NOTIFICATIONS", true),
		},
		LogLevel: getEnvString("LOG_LEVEL", "info"),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
