package config

import (
	"os"
)

type Config struct {
	HTTP_PORT string `env:"HTTP_PORT"`
	DB_STRING string `env:"DB_STRING"`

	REDIS_ADDR string `env:"REDIS_ADDR"`

	KAFKA_BROKERS  string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC    string `env:"KAFKA_TOPIC"`
	KAFKA_GROUP_ID string `env:"KAFKA_GROUP_ID"`

	JWT_SECRET string `env:"JWT_SECRET"`

	PAYMENT_API_URL        string `env:"PAYMENT_API_URL"`
	PAYMENT_API_KEY        string `env:"PAYMENT_API_KEY"`
	PAYMENT_WEBHOOK_SECRET string `env:"PAYMENT_WEBHOOK_SECRET"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:              os.Getenv("HTTP_PORT"),
		DB_STRING:              os.Getenv("DB_STRING"),
		REDIS_ADDR:             os.Getenv("REDIS_ADDR"),
		KAFKA_BROKERS:          os.Getenv("KAFKA_BROKERS"),
		KAFKA_TOPIC:            os.Getenv("KAFKA_TOPIC"),
		KAFKA_GROUP_ID:         os.Getenv("KAFKA_GROUP_ID"),
		JWT_SECRET:             os.Getenv("JWT_SECRET"),
		PAYMENT_API_URL:        os.Getenv("PAYMENT_API_URL"),
		PAYMENT_API_KEY:        os.Getenv("PAYMENT_API_KEY"),
		PAYMENT_WEBHOOK_SECRET: os.Getenv("PAYMENT_WEBHOOK_SECRET"),
	}

	if cfg.HTTP_PORT == "" {
		cfg.HTTP_PORT = "8080"
	}
	if cfg.KAFKA_TOPIC == "" {
		cfg.KAFKA_TOPIC = "notifications"
	}
	if cfg.KAFKA_GROUP_ID == "" {
		cfg.KAFKA_GROUP_ID = "notification-workers"
	}

	return cfg, nil
}
