package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Remote driver selection values.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverNone     = "none" // standalone, offline-only
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Local state
	DataDir string

	// Remote datastore
	RemoteDriver string
	PostgresURI  string
	MongoURI     string
	MongoDB      string

	// Sync
	DebounceQuiet        time.Duration
	ConnectivityProbeURL string
	ConnectivityInterval time.Duration

	// Identity (hosted platform handshake result, if any)
	TelegramUserID   string
	TelegramUsername string
	AnonymousUser    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		DataDir: getEnv("DATA_DIR", "./data"),

		RemoteDriver: getEnv("REMOTE_DRIVER", DriverNone),
		PostgresURI:  getEnv("POSTGRES_DSN", ""),
		MongoURI:     getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "flightlog"),

		DebounceQuiet:        time.Duration(getEnvAsInt("SYNC_DEBOUNCE_MS", 3000)) * time.Millisecond,
		ConnectivityProbeURL: getEnv("CONNECTIVITY_PROBE_URL", "https://clients3.google.com/generate_204"),
		ConnectivityInterval: time.Duration(getEnvAsInt("CONNECTIVITY_INTERVAL", 15)) * time.Second,

		TelegramUserID:   getEnv("TELEGRAM_USER_ID", ""),
		TelegramUsername: getEnv("TELEGRAM_USERNAME", ""),
		AnonymousUser:    getEnvAsBool("TELEGRAM_ANONYMOUS", false),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
