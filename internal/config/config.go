package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL   string
	RedisAddress  string
	RedisPassword string
	RedisDB       int

	SecretKey string

	AccessTokenTTL time.Duration
	// RefreshTokenTTL defaults to the access window. That mirrors the
	// behavior this service replaced; operators who want longer-lived
	// refresh tokens set REFRESH_TOKEN_TTL explicitly.
	RefreshTokenTTL time.Duration
	ConfirmTokenTTL time.Duration
	CacheTTL        time.Duration

	HTTPAddress    string
	BaseURL        string
	AllowedOrigins []string

	MailServer   string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"SECRET_KEY", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL",
		"CONFIRM_TOKEN_TTL", "CACHE_TTL", "HTTP_ADDRESS", "BASE_URL",
		"ALLOWED_ORIGINS", "MAIL_SERVER", "MAIL_PORT", "MAIL_USERNAME",
		"MAIL_PASSWORD", "MAIL_FROM",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("ACCESS_TOKEN_TTL", "30m")
	viper.SetDefault("REFRESH_TOKEN_TTL", "30m")
	viper.SetDefault("CONFIRM_TOKEN_TTL", "168h")
	viper.SetDefault("CACHE_TTL", "900s")
	viper.SetDefault("HTTP_ADDRESS", ":8080")
	viper.SetDefault("BASE_URL", "http://localhost:8080")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:     viper.GetString("DATABASE_URL"),
		RedisAddress:    viper.GetString("REDIS_ADDRESS"),
		RedisPassword:   viper.GetString("REDIS_PASSWORD"),
		RedisDB:         viper.GetInt("REDIS_DB"),
		SecretKey:       viper.GetString("SECRET_KEY"),
		AccessTokenTTL:  viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: viper.GetDuration("REFRESH_TOKEN_TTL"),
		ConfirmTokenTTL: viper.GetDuration("CONFIRM_TOKEN_TTL"),
		CacheTTL:        viper.GetDuration("CACHE_TTL"),
		HTTPAddress:     viper.GetString("HTTP_ADDRESS"),
		BaseURL:         viper.GetString("BASE_URL"),
		AllowedOrigins:  viper.GetStringSlice("ALLOWED_ORIGINS"),
		MailServer:      viper.GetString("MAIL_SERVER"),
		MailPort:        viper.GetInt("MAIL_PORT"),
		MailUsername:    viper.GetString("MAIL_USERNAME"),
		MailPassword:    viper.GetString("MAIL_PASSWORD"),
		MailFrom:        viper.GetString("MAIL_FROM"),
	}

	for key, val := range map[string]string{
		"DATABASE_URL":  cfg.DatabaseURL,
		"REDIS_ADDRESS": cfg.RedisAddress,
		"SECRET_KEY":    cfg.SecretKey,
	} {
		if val == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	return cfg, nil
}
