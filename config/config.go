package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultDatabasePath  = "permissions.db"
	defaultPort          = "8080"
	defaultTokenTTLHours = 24
)

// defaultJWTSecret is only acceptable for local development; deployments must
// set JWT_SECRET.
const defaultJWTSecret = "super-secret-key"

type Config struct {
	// database path
	DatabasePath string

	// HTTP listen port
	Port string

	// session token settings
	JWTSecret     string
	TokenTTLHours int
	SecureCookies bool

	// CORS origins allowed to reach the API with credentials
	AllowedOrigins []string

	// seed demo data on startup
	SeedOnStart bool
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:4200"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		DatabasePath:   getEnvOrDefault("DATABASE_PATH", defaultDatabasePath),
		Port:           getEnvOrDefault("PORT", defaultPort),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", defaultJWTSecret),
		TokenTTLHours:  getEnvIntOrDefault("TOKEN_TTL_HOURS", defaultTokenTTLHours),
		SecureCookies:  getEnvBoolOrDefault("SECURE_COOKIES", false),
		AllowedOrigins: origins,
		SeedOnStart:    getEnvBoolOrDefault("SEED", false),
	}

	return cfg, nil
}
