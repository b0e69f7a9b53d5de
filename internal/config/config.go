package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddr          string `env:"HTTP_ADDR" envDefault:":8081"`
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`

	DB   DBConfig
	AMQP AMQPConfig
	Log  LogConfig
}

type DBConfig struct {
	Driver       string `env:"DB_DRIVER" envDefault:"postgres"`
	User         string `env:"DB_USER" envDefault:"postgres"`
	Password     string `env:"DB_PASSWORD"`
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         string `env:"DB_PORT" envDefault:"5432"`
	Name         string `env:"DB_NAME" envDefault:"customers"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	DSN          string `env:"DB_DSN"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	AutoMigrate  bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type AMQPConfig struct {
	URL   string `env:"AMQP_URL"`
	Queue string `env:"AMQP_QUEUE" envDefault:"customer_events"`
}

type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Development bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
}

// GetDSN returns DB_DSN when set, otherwise a postgres URL built from the parts.
func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// Load reads .env (if any) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on OS environment variables")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	switch cfg.DB.Driver {
	case "postgres":
	case "sqlite":
		if cfg.DB.DSN == "" {
			return Config{}, errors.New("DB_DSN is required for the sqlite driver")
		}
	default:
		return Config{}, errors.Newf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}
	return cfg, nil
}
