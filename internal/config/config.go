package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OrderSvcAddr      string
	GRPCAddr          string
	PostgresDSN       string
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Currency          string
	GatewayTimeout    time.Duration
	AdminTokenHash    string
	CORSOrigins       []string
	StalePaymentAfter time.Duration
	SweepInterval     time.Duration
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] %s=%q is not a duration, using %s", k, v, def)
		return def
	}
	return d
}

func Load() Config {
	_ = godotenv.Load() // load .env if it exists
	cfg := Config{
		OrderSvcAddr:      getenv("ORDER_SERVICE_ADDR", ":8082"),
		GRPCAddr:          getenv("ORDER_GRPC_ADDR", ":50052"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		Currency:          strings.ToUpper(getenv("PAYMENT_CURRENCY", "INR")),
		GatewayTimeout:    getduration("GATEWAY_TIMEOUT", 10*time.Second),
		AdminTokenHash:    os.Getenv("ADMIN_TOKEN_HASH"),
		CORSOrigins:       splitList(getenv("CORS_ORIGINS", "*")),
		StalePaymentAfter: getduration("STALE_PAYMENT_AFTER", 24*time.Hour),
		SweepInterval:     getduration("SWEEP_INTERVAL", 5*time.Minute),
	}
	log.Printf("[config] ORDER_SERVICE_ADDR=%s", cfg.OrderSvcAddr)
	log.Printf("[config] ORDER_GRPC_ADDR=%s", cfg.GRPCAddr)
	log.Printf("[config] POSTGRES_DSN set=%t", cfg.PostgresDSN != "")
	log.Printf("[config] RAZORPAY_KEY_ID=%s RAZORPAY_KEY_SECRET set=%t", cfg.RazorpayKeyID, cfg.RazorpayKeySecret != "")
	log.Printf("[config] PAYMENT_CURRENCY=%s", cfg.Currency)
	if cfg.DemoPayments() {
		log.Printf("[config] payment gateway credentials missing, running in demo mode")
	}
	return cfg
}

// DemoPayments reports that no gateway credentials are configured.
func (c Config) DemoPayments() bool {
	return c.RazorpayKeyID == "" && c.RazorpayKeySecret == ""
}

var ErrPartialGateway = errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET must be set together")

// Validate rejects combinations the service cannot run with.
func (c Config) Validate() error {
	if (c.RazorpayKeyID == "") != (c.RazorpayKeySecret == "") {
		return ErrPartialGateway
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
