package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	RedisAddr   string
	Port        string

	PlacesAPIKey string
	PlacesAPIURL string
	NominatimURL string
	FetchTimeout time.Duration

	CORSAllowedOrigins []string

	GroupName          string
	BotUserID          string
	BotReplyWebhookURL string
	BotDashboardURL    string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment, after loading the given
// .env files when they exist. Variables already set are never overridden.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	timeout, err := time.ParseDuration(envOrDefault("FETCH_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("FETCH_TIMEOUT: %w", err)
	}

	botUserID := strings.TrimSpace(os.Getenv("BOT_USER_ID"))
	if botUserID != "" {
		if _, err := uuid.Parse(botUserID); err != nil {
			return nil, fmt.Errorf("BOT_USER_ID: %w", err)
		}
	}

	return &Config{
		DatabaseURL:        databaseURL(),
		RedisAddr:          envOrDefault("REDIS_ADDR", "localhost:6379"),
		Port:               envOrDefault("PORT", "8080"),
		PlacesAPIKey:       os.Getenv("GOOGLE_PLACES_API_KEY"),
		PlacesAPIURL:       envOrDefault("PLACES_API_URL", "https://places.googleapis.com"),
		NominatimURL:       envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org/search"),
		FetchTimeout:       timeout,
		CORSAllowedOrigins: splitList(envOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		GroupName:          envOrDefault("WHATSAPP_GROUP_NAME", "Gastrónomos"),
		BotUserID:          botUserID,
		BotReplyWebhookURL: os.Getenv("BOT_REPLY_WEBHOOK_URL"),
		BotDashboardURL:    envOrDefault("BOT_DASHBOARD_URL", "gastronomo-web.vercel.app/dashboard"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "text"),
	}, nil
}

func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	dbHost := envOrDefault("DB_HOST", "localhost")
	dbPort := envOrDefault("DB_PORT", "5432")
	dbName := envOrDefault("DB_NAME", "gastronomos")
	dbUser := envOrDefault("DB_USER", "gastronomos")
	dbPass := envOrDefault("DB_PASS", "gastronomos")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
}

func envOrDefault(key, d string) string {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	return v
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
