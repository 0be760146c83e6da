package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv        string
	ServerPort    string
	DBDriver      string
	DatabaseDSN   string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	SessionSecret string
	SessionTTL    time.Duration
	LogLevel      string
	SwaggerHost   string
	ResetDB       bool
}

// Load builds Config from the environment (and an optional .env file) with sensible defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_SECRET", "change-me")
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")

	dsn := v.GetString("DATABASE_DSN")
	if dsn == "" {
		dsn = v.GetString("MYSQL_DSN")
	}

	return &Config{
		AppEnv:        v.GetString("APP_ENV"),
		ServerPort:    v.GetString("SERVER_PORT"),
		DBDriver:      v.GetString("DB_DRIVER"),
		DatabaseDSN:   dsn,
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisDB:       v.GetInt("REDIS_DB"),
		RedisPass:     v.GetString("REDIS_PASSWORD"),
		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		SwaggerHost:   v.GetString("SWAGGER_HOST"),
		ResetDB:       v.GetBool("RESET_DB"),
	}, nil
}

// CookieSecure reports whether session cookies must carry the Secure flag.
func (c *Config) CookieSecure() bool {
	return c.AppEnv == "production"
}
