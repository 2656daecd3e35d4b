package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	Catalog  CatalogConfig
	Tickets  TicketsConfig
	Notify   NotifyConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	AssetBasePath  string
	AllowedOrigins []string
	// Peers whose forwarding headers are believed (IPs or CIDRs)
	TrustedProxies []string
}

type SessionConfig struct {
	Secret string
	MaxAge int // seconds
}

type CheckoutConfig struct {
	TaxRate       decimal.Decimal
	ProcessingFee decimal.Decimal
	PaymentDelay  time.Duration
	PromoDelay    time.Duration
	Currency      string

	// Promo code attempts allowed per client within PromoWindow
	PromoAttempts int
	PromoWindow   time.Duration
}

type CatalogConfig struct {
	PageSize               int
	LoadMoreDelay          time.Duration
	MaxTicketsPerSelection int
}

type TicketsConfig struct {
	TransferDelay time.Duration
	QRURLTemplate string
}

type NotifyConfig struct {
	AMQPURL    string
	Exchange   string
	RoutingKey string
}

type LogConfig struct {
	Level  string
	Format string
}

const defaultQRURLTemplate = "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=%s&bgcolor=0D0D0D&color=A259FF"

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "4028"),
			Host:           getEnv("HOST", "0.0.0.0"),
			Env:            getEnv("ENV", "development"),
			AssetBasePath:  getEnv("ASSET_BASE_PATH", "/"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:4028"}),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES", nil),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			MaxAge: getEnvAsInt("SESSION_MAX_AGE", 86400),
		},
		Checkout: CheckoutConfig{
			PaymentDelay:  getEnvAsDuration("PAYMENT_DELAY", 3*time.Second),
			PromoDelay:    getEnvAsDuration("PROMO_DELAY", time.Second),
			Currency:      getEnv("CURRENCY", "USD"),
			PromoAttempts: getEnvAsInt("PROMO_MAX_ATTEMPTS", 5),
			PromoWindow:   getEnvAsDuration("PROMO_ATTEMPT_WINDOW", time.Minute),
		},
		Catalog: CatalogConfig{
			PageSize:               getEnvAsInt("CATALOG_PAGE_SIZE", 12),
			LoadMoreDelay:          getEnvAsDuration("LOAD_MORE_DELAY", time.Second),
			MaxTicketsPerSelection: getEnvAsInt("MAX_TICKETS_PER_SELECTION", 10),
		},
		Tickets: TicketsConfig{
			TransferDelay: getEnvAsDuration("TRANSFER_DELAY", 2*time.Second),
			QRURLTemplate: getEnv("QR_URL_TEMPLATE", defaultQRURLTemplate),
		},
		Notify: NotifyConfig{
			AMQPURL:    getEnv("AMQP_URL", ""),
			Exchange:   getEnv("AMQP_EXCHANGE", "eventflow.orders"),
			RoutingKey: getEnv("AMQP_ROUTING_KEY", "order.confirmed"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	var err error
	config.Checkout.TaxRate, err = getEnvAsDecimal("TAX_RATE", "0.08")
	if err != nil {
		return nil, err
	}
	config.Checkout.ProcessingFee, err = getEnvAsDecimal("PROCESSING_FEE", "2.50")
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate rejects settings that would make checkout totals meaningless
func (c *Config) Validate() error {
	if c.Checkout.TaxRate.IsNegative() {
		return fmt.Errorf("TAX_RATE cannot be negative, got %s", c.Checkout.TaxRate)
	}
	if c.Checkout.ProcessingFee.IsNegative() {
		return fmt.Errorf("PROCESSING_FEE cannot be negative, got %s", c.Checkout.ProcessingFee)
	}
	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.Catalog.PageSize)
	}
	if c.Catalog.MaxTicketsPerSelection <= 0 {
		return fmt.Errorf("MAX_TICKETS_PER_SELECTION must be positive, got %d", c.Catalog.MaxTicketsPerSelection)
	}
	if c.Checkout.PromoAttempts <= 0 {
		return fmt.Errorf("PROMO_MAX_ATTEMPTS must be positive, got %d", c.Checkout.PromoAttempts)
	}
	if c.Session.MaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", c.Session.MaxAge)
	}
	if c.Checkout.PromoWindow <= 0 {
		return fmt.Errorf("PROMO_ATTEMPT_WINDOW must be positive, got %s", c.Checkout.PromoWindow)
	}
	if !strings.Contains(c.Tickets.QRURLTemplate, "%s") {
		return fmt.Errorf("QR_URL_TEMPLATE must contain %%s")
	}
	return nil
}

// IsDevelopment returns true when running locally
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// Address returns host:port for the HTTP listener
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key, defaultValue string) (decimal.Decimal, error) {
	value := getEnv(key, defaultValue)
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
