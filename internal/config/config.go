package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string `validate:"required"`
	DatabaseURI string `validate:"required"`

	GatewayBaseURL     string        `validate:"required,url"`
	GatewayKeyID       string        `validate:"required"`
	GatewayKeySecret   string        `validate:"required"`
	GatewayTimeout     time.Duration `validate:"gt=0"`
	SettlementCurrency string        `validate:"required,len=3,uppercase"`
	SuccessRedirectURL string        `validate:"required,url"`

	TokenSecret     string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	ReconcileInterval time.Duration `validate:"gt=0"`
	ReconcileAfter    time.Duration `validate:"gte=0"`
	ReconcileBatch    int           `validate:"gte=1"`
	ReconcileWorkers  int           `validate:"gte=1"`

	KafkaBrokers []string `validate:"omitempty,dive,hostname_port"`
	KafkaTopic   string   `validate:"required_with=KafkaBrokers"`
}

const (
	defaultRunAddress         = ":8080"
	defaultGatewayBaseURL     = "https://api.razorpay.com"
	defaultGatewayTimeout     = 10 * time.Second
	defaultSettlementCurrency = "INR"
	defaultSuccessRedirectURL = "http://localhost:3000/paymentsuccess"
	defaultTokenSecret        = "change-me-in-production"
	defaultShutdownTimeout    = 10 * time.Second
	defaultReconcileInterval  = time.Minute
	defaultReconcileAfter     = 15 * time.Minute
	defaultReconcileBatch     = 32
	defaultReconcileWorkers   = 4
	defaultKafkaTopic         = "storefront.orders.confirmed"
)

// Load parses configuration from an optional .env file, flags and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		GatewayBaseURL:     getString(lookup, "GATEWAY_BASE_URL", defaultGatewayBaseURL),
		GatewayKeyID:       getString(lookup, "GATEWAY_KEY_ID", ""),
		GatewayKeySecret:   getString(lookup, "GATEWAY_KEY_SECRET", ""),
		GatewayTimeout:     getDuration(lookup, "GATEWAY_TIMEOUT", defaultGatewayTimeout),
		SettlementCurrency: getString(lookup, "SETTLEMENT_CURRENCY", defaultSettlementCurrency),
		SuccessRedirectURL: getString(lookup, "SUCCESS_REDIRECT_URL", defaultSuccessRedirectURL),
		TokenSecret:        getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ReconcileInterval:  getDuration(lookup, "RECONCILE_INTERVAL", defaultReconcileInterval),
		ReconcileAfter:     getDuration(lookup, "RECONCILE_AFTER", defaultReconcileAfter),
		ReconcileBatch:     getInt(lookup, "RECONCILE_BATCH", defaultReconcileBatch),
		ReconcileWorkers:   getInt(lookup, "RECONCILE_WORKERS", defaultReconcileWorkers),
		KafkaTopic:         getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
	}

	fs := flag.NewFlagSet("storefront", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		gatewayTimeoutStr    = cfg.GatewayTimeout.String()
		shutdownTimeoutStr   = cfg.ShutdownTimeout.String()
		reconcileIntervalStr = cfg.ReconcileInterval.String()
		reconcileAfterStr    = cfg.ReconcileAfter.String()
		kafkaBrokers         = getString(lookup, "KAFKA_BROKERS", "")
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayBaseURL, "g", cfg.GatewayBaseURL, "Payment gateway base URL")
	fs.StringVar(&cfg.GatewayKeyID, "gateway-key-id", cfg.GatewayKeyID, "Payment gateway public key id")
	fs.StringVar(&gatewayTimeoutStr, "gateway-timeout", gatewayTimeoutStr, "Payment gateway request timeout")
	fs.StringVar(&cfg.SettlementCurrency, "currency", cfg.SettlementCurrency, "Settlement currency code")
	fs.StringVar(&cfg.SuccessRedirectURL, "success-url", cfg.SuccessRedirectURL, "Redirect target after confirmed payment")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&reconcileIntervalStr, "reconcile-interval", reconcileIntervalStr, "Interval between reconciliation passes")
	fs.StringVar(&reconcileAfterStr, "reconcile-after", reconcileAfterStr, "Minimum age of a pending order before reconciliation")
	fs.IntVar(&cfg.ReconcileBatch, "reconcile-batch", cfg.ReconcileBatch, "Maximum orders per reconciliation pass")
	fs.IntVar(&cfg.ReconcileWorkers, "reconcile-workers", cfg.ReconcileWorkers, "Number of concurrent reconciliation workers")
	fs.StringVar(&kafkaBrokers, "kafka-brokers", kafkaBrokers, "Comma separated Kafka brokers for order events")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for order events")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.GatewayTimeout, err = time.ParseDuration(gatewayTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid gateway timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ReconcileAfter, err = time.ParseDuration(reconcileAfterStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile age: %w", err)
	}

	if cfg.GatewayKeySecret, err = readSecretFile(lookup, "GATEWAY_KEY_SECRET_FILE", cfg.GatewayKeySecret); err != nil {
		return nil, err
	}

	if cfg.TokenSecret, err = readSecretFile(lookup, "TOKEN_SECRET_FILE", cfg.TokenSecret); err != nil {
		return nil, err
	}

	cfg.KafkaBrokers = splitList(kafkaBrokers)
	cfg.SettlementCurrency = strings.ToUpper(strings.TrimSpace(cfg.SettlementCurrency))

	if cfg.ReconcileWorkers <= 0 {
		cfg.ReconcileWorkers = defaultReconcileWorkers
	}

	if cfg.ReconcileBatch <= 0 {
		cfg.ReconcileBatch = defaultReconcileBatch
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = defaultGatewayTimeout
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayKeyID == "" || cfg.GatewayKeySecret == "" {
		return nil, fmt.Errorf("gateway key id and secret must be provided")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LogValue keeps secrets out of structured logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_address", c.RunAddress),
		slog.String("gateway_base_url", c.GatewayBaseURL),
		slog.String("gateway_key_id", c.GatewayKeyID),
		slog.Duration("gateway_timeout", c.GatewayTimeout),
		slog.String("currency", c.SettlementCurrency),
		slog.String("success_redirect_url", c.SuccessRedirectURL),
		slog.Duration("reconcile_interval", c.ReconcileInterval),
		slog.Duration("reconcile_after", c.ReconcileAfter),
		slog.Int("reconcile_batch", c.ReconcileBatch),
		slog.Int("reconcile_workers", c.ReconcileWorkers),
		slog.Any("kafka_brokers", c.KafkaBrokers),
		slog.String("kafka_topic", c.KafkaTopic),
	)
}

func readSecretFile(lookup envLookup, key, current string) (string, error) {
	path, ok := lookup(key)
	if !ok || path == "" {
		return current, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(key), err)
	}
	return strings.TrimSpace(string(content)), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
