package config

import (
	"os"
)

type Config struct {
	HTTP_PORT      string `env:"HTTP_PORT"`
	DB_STRING      string `env:"DB_STRING"`
	KAFKA_BROKERS  string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC    string `env:"KAFKA_TOPIC"`
	KAFKA_GROUP_ID string `env:"KAFKA_GROUP_ID"`
	PAYMENTS_URL   string `env:"PAYMENTS_URL"`
	ORDERS_URL     string `env:"ORDERS_URL"`
	JWT_SECRET     string `env:"JWT_SECRET"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:      os.Getenv("HTTP_PORT"),
		DB_STRING:      os.Getenv("DB_STRING"),
		KAFKA_BROKERS:  os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:    os.Getenv("KAFKA_TOPIC"),
		KAFKA_GROUP_ID: os.Getenv("KAFKA_GROUP_ID"),
		PAYMENTS_URL:   os.Getenv("PAYMENTS_URL"),
		ORDERS_URL:     os.Getenv("ORDERS_URL"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.KAFKA_BROKERS == "" {
		cfg.KAFKA_BROKERS = "localhost:9092"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "order-status-events"
	}
	if cfg.KAFKA_GROUP_ID == "" {
		cfg.KAFKA_GROUP_ID = "cocina-orders"
	}

	return cfg, nil
}
