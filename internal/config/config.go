package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Port        int
	DatabaseURL string
	JWTSecret   string

	LogLevel  string
	LogFormat string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Mercado Pago credentials. The webhook secret has no default and
	// no bypass: reconciliation refuses to start without it.
	MPAccessToken   string
	MPBaseURL       string
	MPWebhookSecret string

	// DefaultPhoneRegion is the ISO country applied to phone numbers
	// entered without a country code (e.g. "BR").
	DefaultPhoneRegion string

	Plans map[string]PlanConfig
}

// PlanConfig is one row of the plan price table.
type PlanConfig struct {
	ID       string   `toml:"-" json:"id"`
	Name     string   `toml:"name" json:"name"`
	Price    float64  `toml:"price" json:"price"`
	Currency string   `toml:"currency" json:"currency"`
	Features []string `toml:"features" json:"features"`
}

type planFile struct {
	Plans map[string]PlanConfig `toml:"plans"`
}

// Load reads configuration from the environment and the optional plan
// catalog file referenced by PLANS_CONFIG.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               envInt("PORT", 8080),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		LogLevel:           envDefault("LOG_LEVEL", "info"),
		LogFormat:          envDefault("LOG_FORMAT", "json"),
		RedisAddr:          envDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            envInt("REDIS_DB", 0),
		MinioEndpoint:      envDefault("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:     envDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:     envDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:        envDefault("MINIO_BUCKET", "agendai-events"),
		MinioUseSSL:        os.Getenv("MINIO_USE_SSL") == "true",
		MPAccessToken:      os.Getenv("MP_ACCESS_TOKEN"),
		MPBaseURL:          envDefault("MP_BASE_URL", "https://api.mercadopago.com"),
		MPWebhookSecret:    os.Getenv("MP_WEBHOOK_SECRET"),
		DefaultPhoneRegion: envDefault("DEFAULT_PHONE_REGION", "BR"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if cfg.MPWebhookSecret == "" {
		return nil, fmt.Errorf("MP_WEBHOOK_SECRET environment variable is required")
	}

	plans, err := loadPlanCatalog(os.Getenv("PLANS_CONFIG"))
	if err != nil {
		return nil, err
	}
	cfg.Plans = plans

	return cfg, nil
}

// loadPlanCatalog reads the TOML price table, falling back to the
// built-in catalog when no file is configured.
func loadPlanCatalog(path string) (map[string]PlanConfig, error) {
	if path == "" {
		return defaultPlans(), nil
	}

	var file planFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to load plan catalog: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plan catalog %s defines no plans", path)
	}
	for id, plan := range file.Plans {
		plan.ID = id
		file.Plans[id] = plan
	}
	return file.Plans, nil
}

func defaultPlans() map[string]PlanConfig {
	return map[string]PlanConfig{
		"pro": {
			ID:       "pro",
			Name:     "Pro",
			Price:    49.90,
			Currency: "BRL",
			Features: []string{
				"Unlimited bookings",
				"WhatsApp confirmations",
				"Up to 5 staff members",
			},
		},
		"enterprise": {
			ID:       "enterprise",
			Name:     "Enterprise",
			Price:    149.90,
			Currency: "BRL",
			Features: []string{
				"Everything in Pro",
				"Unlimited staff members",
				"Priority support",
			},
		},
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
