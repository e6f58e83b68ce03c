package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting. It is loaded once at startup and passed
// by value; nothing mutates it afterwards.
type Config struct {
	Environment string
	Port        string
	DBURL       string
	JWTSecret   string
	CORSOrigins []string
	AppURL      string
	// TrustedProxies are the CIDRs or addresses allowed to set
	// X-Forwarded-For. Empty means the socket peer is the client.
	TrustedProxies []string

	LogLevel  string
	LogFormat string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceIDs      PriceIDs

	CronSecret           string
	AutoCompleteAfter    time.Duration
	AutoCompleteInterval time.Duration

	TwoFactorCodeTTL     time.Duration
	TwoFactorMaxAttempts int
	TwoFactorExposeCode  bool
	TOTPIssuer           string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPPassword string

	SMSGatewayURL   string
	SMSGatewayToken string
}

// PriceIDs are the Stripe recurring price IDs for each plan tier.
type PriceIDs struct {
	Essential    string
	Professional string
	Premium      string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg := Config{
		Environment: getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DBURL:       os.Getenv("DB_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		CORSOrigins: getList("CORS_ORIGIN", []string{"http://localhost:5173"}),
		AppURL:      getEnv("APP_URL", "http://localhost:5173"),

		TrustedProxies: getList("TRUSTED_PROXIES", nil),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripePriceIDs: PriceIDs{
			Essential:    os.Getenv("STRIPE_PRICE_ESSENTIAL"),
			Professional: os.Getenv("STRIPE_PRICE_PROFESSIONAL"),
			Premium:      os.Getenv("STRIPE_PRICE_PREMIUM"),
		},

		CronSecret:           os.Getenv("CRON_SECRET"),
		AutoCompleteAfter:    getDuration("AUTO_COMPLETE_AFTER", 24*time.Hour),
		AutoCompleteInterval: getDuration("AUTO_COMPLETE_INTERVAL", 15*time.Minute),

		TwoFactorCodeTTL:     getDuration("TWO_FACTOR_CODE_TTL", 10*time.Minute),
		TwoFactorMaxAttempts: getInt("TWO_FACTOR_MAX_ATTEMPTS", 5),
		TwoFactorExposeCode:  getBool("TWO_FACTOR_EXPOSE_CODE", false),
		TOTPIssuer:           getEnv("TOTP_ISSUER", "SalonBook"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),

		SMSGatewayURL:   os.Getenv("SMS_GATEWAY_URL"),
		SMSGatewayToken: os.Getenv("SMS_GATEWAY_TOKEN"),
	}

	if cfg.DBURL == "" {
		return Config{}, fmt.Errorf("missing required environment variable: DB_URL")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing required environment variable: JWT_SECRET")
	}
	if cfg.TwoFactorMaxAttempts < 1 {
		cfg.TwoFactorMaxAttempts = 1
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return fallback
}
