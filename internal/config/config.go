package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the Gather services.
type Config struct {
	Environment    string
	HTTPPort       int
	PublicBaseURL  string
	DataStore      string
	MongoURI       string
	MongoDatabase  string
	LogLevel       string
	AllowedOrigins []string
	SessionSecret  string
	SessionTTL     time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	KakaoClientID      string
	KakaoClientSecret  string
}

// Load reads configuration from environment variables with sensible defaults for local development.
func Load() (Config, error) {
	mongoURI, err := getEnvOrFile("MONGO_URI", "/run/secrets/gather_mongo_uri")
	if err != nil {
		return Config{}, err
	}

	sessionSecret, err := getEnvOrFile("SESSION_SECRET", "/run/secrets/gather_session_secret")
	if err != nil {
		return Config{}, err
	}

	googleSecret, err := getEnvOrFile("GOOGLE_CLIENT_SECRET", "")
	if err != nil {
		return Config{}, err
	}

	kakaoSecret, err := getEnvOrFile("KAKAO_CLIENT_SECRET", "")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Environment:    getEnv("APP_ENV", "development"),
		PublicBaseURL:  strings.TrimSuffix(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		DataStore:      strings.ToLower(getEnv("DATA_STORE", "memory")),
		MongoURI:       mongoURI,
		MongoDatabase:  getEnv("MONGO_DATABASE", "gather"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		AllowedOrigins: parseCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		SessionSecret:  strings.TrimSpace(sessionSecret),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: googleSecret,
		KakaoClientID:      getEnv("KAKAO_CLIENT_ID", ""),
		KakaoClientSecret:  kakaoSecret,
	}

	portValue := getEnv("PORT", getEnv("HTTP_PORT", "8080"))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return Config{}, fmt.Errorf("invalid port %q: %w", portValue, err)
	}
	cfg.HTTPPort = port

	ttlValue := getEnv("SESSION_TTL", "12h")
	ttl, err := time.ParseDuration(ttlValue)
	if err != nil || ttl <= 0 {
		return Config{}, fmt.Errorf("invalid session ttl %q", ttlValue)
	}
	cfg.SessionTTL = ttl

	if cfg.DataStore == "mongo" && cfg.MongoURI == "" {
		return Config{}, fmt.Errorf("DATA_STORE is mongo but MONGO_URI is not set")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is not set")
	}

	return cfg, nil
}

// HTTPAddress returns the address the HTTP server should bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// UseInMemoryStore returns true if the in-memory repositories should be used.
func (c Config) UseInMemoryStore() bool {
	return c.DataStore == "memory"
}

// RedirectURL builds the OAuth callback URL for a provider.
func (c Config) RedirectURL(provider string) string {
	return fmt.Sprintf("%s/auth/%s/callback", c.PublicBaseURL, provider)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvOrFile(key, defaultPath string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}

	fileKey := key + "_FILE"
	if path := os.Getenv(fileKey); path != "" {
		return readSecret(path, fileKey)
	}

	if defaultPath != "" {
		return readSecret(defaultPath, key)
	}

	return "", nil
}

func readSecret(path, name string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("config: reading %s (%s): %w", name, path, err)
	}

	value := strings.TrimSpace(string(contents))
	if value == "" {
		return "", fmt.Errorf("config: %s (%s) is empty", name, path)
	}
	return value, nil
}
