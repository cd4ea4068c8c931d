// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting the server needs. It is loaded once in
// main and passed by value to the components that need it.
type Config struct {
	MongoURI     string // MongoDB connection string (required)
	DatabaseName string // database name, defaults to "e4u"
	HTTPPort     string // port the HTTP server listens on
	JWTSecret    string // HMAC secret for app tokens (required)

	// GoogleCredentials is the path to a Firebase service account JSON file.
	// When empty the Firebase SDK falls back to application default
	// credentials; identity login and push notifications are disabled if
	// neither is available.
	GoogleCredentials string

	// GeminiAPIKey enables the advisory (AI) endpoints. Empty disables them;
	// core marketplace operations do not depend on it.
	GeminiAPIKey string

	UploadDir    string // directory where ad images are written
	RateLimitRPM int    // per-key requests per minute on sensitive routes
}

// Load reads configuration from the environment, consulting a .env file if
// one exists. It terminates the process when a required value is missing so
// the server never starts half-configured.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	cfg := Config{
		MongoURI:          os.Getenv("MONGODB_URI"),
		DatabaseName:      getEnv("DATABASE_NAME", "e4u"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		GoogleCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		RateLimitRPM:      getEnvAsInt("RATE_LIMIT_RPM", 10),
	}

	if cfg.MongoURI == "" {
		log.Fatal("MONGODB_URI must be set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	return cfg
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
