package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/yukikurage/task-service/internal/constants"
)

type Config struct {
	Port         string        `env:"PORT"           envDefault:"8080"`
	GinMode      string        `env:"GIN_MODE"       envDefault:"debug"`
	DBDriver     string        `env:"DB_DRIVER"      envDefault:"mysql"`
	DBHost       string        `env:"DB_HOST"        envDefault:"localhost"`
	DBPort       string        `env:"DB_PORT"        envDefault:"3306"`
	DBUser       string        `env:"DB_USER"        envDefault:"taskuser"`
	DBPassword   string        `env:"DB_PASSWORD"    envDefault:"taskpassword"`
	DBName       string        `env:"DB_NAME"        envDefault:"task_service"`
	SQLitePath   string        `env:"DB_SQLITE_PATH" envDefault:"task_service.db"`
	JWTSecret    string        `env:"JWT_SECRET"`
	JWTTTL       time.Duration `env:"JWT_TTL"        envDefault:"24h"`
	BcryptCost   int           `env:"BCRYPT_COST"    envDefault:"10"`
	OpenAIAPIKey string        `env:"OPENAI_API_KEY"`
	OTelEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	} else {
		log.Println(".env file not found, relying on environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that have no safe default.
func (c *Config) Validate() error {
	if len(c.JWTSecret) < constants.MinJWTSecretBytes {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", constants.MinJWTSecretBytes)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	switch strings.ToLower(c.DBDriver) {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
