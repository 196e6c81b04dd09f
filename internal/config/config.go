package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   Server
	Redis    Redis
	Database Database
	Mail     Mail
	Auth     Auth
}

type Server struct {
	Port int `env:"SERVER_PORT" envDefault:"8000"`
}

type Redis struct {
	Addr          string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password      string `env:"REDIS_PASSWORD"`
	DB            int    `env:"REDIS_DB"`
	StreamKey     string `env:"REDIS_STREAM_KEY" envDefault:"reminders:due"`
	Group         string `env:"REDIS_GROUP" envDefault:"reminder-workers"`
	ScheduledZSet string `env:"REDIS_SCHEDULED_ZSET" envDefault:"reminders:scheduled"`
	DLQStreamKey  string `env:"REDIS_DLQ_STREAM_KEY" envDefault:"reminders:dead"`
}

type Database struct {
	DSN string `env:"DATABASE_URL,required"`
}

type Mail struct {
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	FromEmail      string `env:"MAIL_FROM_EMAIL" envDefault:"no-reply@remindly.app"`
	FromName       string `env:"MAIL_FROM_NAME" envDefault:"Remindly"`
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
}

func Load() *Config {
	_ = godotenv.Load()

	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal(err)
	}

	return &c
}
