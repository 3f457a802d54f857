package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	APIBaseURL    string        `env:"API_BASE_URL" envDefault:"http://localhost:5000"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	UserAgent     string        `env:"USER_AGENT" envDefault:"flyer-shopper/0.1.0"`
	Debounce      time.Duration `env:"DEBOUNCE" envDefault:"300ms"`
	MaxQuantity   int           `env:"MAX_QUANTITY" envDefault:"99"`
	StatePath     string        `env:"SHOPPER_STATE_PATH" envDefault:".flyer-shopper/state.db"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"warn"`
	RatePerSecond float64       `env:"RATE_PER_SECOND" envDefault:"5"`
	RateBurst     int           `env:"RATE_BURST" envDefault:"5"`

	RabbitMQ RabbitMQ
}

// RabbitMQ holds RabbitMQ configuration.
type RabbitMQ struct {
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"flyer-shopper-ex"`
	// Queue is declared exclusive with a server generated name when empty.
	Queue      string `env:"RABBITMQ_QUEUE"`
	RoutingKey string `env:"RABBITMQ_ROUTING_KEY" envDefault:"flyers.data.updated"`
}

// Load reads optional .env files and parses environment variables into Config.
// Variables already set in the environment take precedence over .env values.
func Load(files ...string) (Config, error) {
	// missing .env files are fine
	_ = godotenv.Load(files...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("can't parse env variables: %w", err)
	}

	return cfg, nil
}
