// Package config centraliza la configuración por entorno usando
// viper (defaults + AutomaticEnv). Es el único lugar que lee env.
package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Addr  string // address:port donde escucha el API
	DBDSN string // si viene vacío, el server usa repos in-memory

	// Logging
	AppName   string
	LogLevel  string // debug|info|warn|error
	LogFormat string // text|json

	// Cliente SDK / demo
	APIBaseURL  string
	ClientDelay time.Duration // latencia artificial del cliente (0 = sin delay)
}

func Load() Config {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("APP_NAME", "pet-catalog")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("API_BASE_URL", "http://localhost:8080")
	v.SetDefault("CLIENT_DELAY_MS", 0)
	v.AutomaticEnv()

	return Config{
		Addr:        ":" + v.GetString("PORT"),
		DBDSN:       v.GetString("DB_DSN"),
		AppName:     v.GetString("APP_NAME"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		APIBaseURL:  v.GetString("API_BASE_URL"),
		ClientDelay: time.Duration(v.GetInt("CLIENT_DELAY_MS")) * time.Millisecond,
	}
}
