package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	TokenTTLMinutes int    `mapstructure:"TOKEN_TTL_MINUTES"`

	GatewayPort  string `mapstructure:"GATEWAY_PORT"`
	IdentityPort string `mapstructure:"IDENTITY_PORT"`
	ImagingPort  string `mapstructure:"IMAGING_PORT"`
	WorkflowPort string `mapstructure:"WORKFLOW_PORT"`
	BillingPort  string `mapstructure:"BILLING_PORT"`

	IdentityURL string `mapstructure:"IDENTITY_URL"`
	ImagingURL  string `mapstructure:"IMAGING_URL"`
	WorkflowURL string `mapstructure:"WORKFLOW_URL"`
	BillingURL  string `mapstructure:"BILLING_URL"`

	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`

	MinioEndpoint  string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket    string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL_MINUTES", 30)
	v.SetDefault("GATEWAY_PORT", "8000")
	v.SetDefault("IDENTITY_PORT", "8001")
	v.SetDefault("IMAGING_PORT", "8002")
	v.SetDefault("WORKFLOW_PORT", "8003")
	v.SetDefault("BILLING_PORT", "8004")
	v.SetDefault("IDENTITY_URL", "http://localhost:8001")
	v.SetDefault("IMAGING_URL", "http://localhost:8002")
	v.SetDefault("WORKFLOW_URL", "http://localhost:8003")
	v.SetDefault("BILLING_URL", "http://localhost:8004")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	v.SetDefault("MINIO_SECRET_KEY", "minioadmin")
	v.SetDefault("MINIO_BUCKET", "medical-images")
	v.SetDefault("MINIO_USE_SSL", false)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("GATEWAY_PORT")
	v.BindEnv("IDENTITY_PORT")
	v.BindEnv("IMAGING_PORT")
	v.BindEnv("WORKFLOW_PORT")
	v.BindEnv("BILLING_PORT")
	v.BindEnv("IDENTITY_URL")
	v.BindEnv("IMAGING_URL")
	v.BindEnv("WORKFLOW_URL")
	v.BindEnv("BILLING_URL")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("MINIO_ENDPOINT")
	v.BindEnv("MINIO_ACCESS_KEY")
	v.BindEnv("MINIO_SECRET_KEY")
	v.BindEnv("MINIO_BUCKET")
	v.BindEnv("MINIO_USE_SSL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.JWTSecret = "insecure-dev-secret"
		log.Println("WARNING: JWT_SECRET not set, using an insecure development secret")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ServicePort returns the configured listen port for a named service.
func (c *Config) ServicePort(service string) (string, error) {
	switch service {
	case "gateway":
		return c.GatewayPort, nil
	case "identity":
		return c.IdentityPort, nil
	case "imaging":
		return c.ImagingPort, nil
	case "workflow":
		return c.WorkflowPort, nil
	case "billing":
		return c.BillingPort, nil
	}
	return "", fmt.Errorf("unknown service %q", service)
}
