package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	SMTP      SMTPConfig
	Frontend  FrontendConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret            string
	Algorithm         string
	AccessExpiryMins  int
	RefreshExpiryDays int
	InvitationTTLDays int
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

type FrontendConfig struct {
	BaseURL string
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) AccessExpiry() time.Duration {
	return time.Duration(j.AccessExpiryMins) * time.Minute
}

func (j *JWTConfig) RefreshExpiry() time.Duration {
	return time.Duration(j.RefreshExpiryDays) * 24 * time.Hour
}

func (j *JWTConfig) InvitationExpiry() time.Duration {
	return time.Duration(j.InvitationTTLDays) * 24 * time.Hour
}

func (s *SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "teamly")
	v.SetDefault("DATABASE_PASSWORD", "teamly_secret")
	v.SetDefault("DATABASE_NAME", "teamly")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ALGORITHM", "HS256")
	v.SetDefault("JWT_ACCESS_EXPIRY_MINUTES", 15)
	v.SetDefault("JWT_REFRESH_EXPIRY_DAYS", 7)
	v.SetDefault("JWT_INVITATION_TTL_DAYS", 7)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", 1025)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM_EMAIL", "noreply@teamly.local")
	v.SetDefault("SMTP_FROM_NAME", "Teamly")
	v.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:            v.GetString("JWT_SECRET"),
			Algorithm:         v.GetString("JWT_ALGORITHM"),
			AccessExpiryMins:  v.GetInt("JWT_ACCESS_EXPIRY_MINUTES"),
			RefreshExpiryDays: v.GetInt("JWT_REFRESH_EXPIRY_DAYS"),
			InvitationTTLDays: v.GetInt("JWT_INVITATION_TTL_DAYS"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		Frontend: FrontendConfig{
			BaseURL: v.GetString("FRONTEND_BASE_URL"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
