package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort         string        // Application port
	DBDriver        string        // Database driver: mysql, postgres or sqlite
	DBUser          string        // Database user
	DBPassword      string        // Database password
	DBHost          string        // Database host
	DBPort          string        // Database port
	DBName          string        // Database name
	DBPath          string        // SQLite file path
	DBDebug         bool          // Log every SQL statement
	SessionSecret   string        // Session token signing key
	RedisAddr       string        // Redis server address, empty disables redis
	RedisPass       string        // Redis password
	RedisDB         int           // Redis database number
	IsProd          bool          // Is production environment
	OpenAIKey       string        // Provider API key, empty means offline mode
	OpenAIBaseURL   string        // Provider base URL override
	OpenAIModel     string        // Provider model name
	ProviderTimeout time.Duration // Bound on a single provider call
	QuestionWindow  time.Duration // Minimum spacing between questions
	HistoryCacheTTL time.Duration // Redis TTL for cached history lists
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		AppPort:         getenv("APP_PORT", "8080"),                       // Application port
		DBDriver:        getenv("DB_DRIVER", "mysql"),                     // Database driver
		DBUser:          os.Getenv("DB_USER"),                             // Database user
		DBPassword:      os.Getenv("DB_PASSWORD"),                         // Database password
		DBHost:          getenv("DB_HOST", "127.0.0.1"),                   // Database host
		DBPort:          os.Getenv("DB_PORT"),                             // Database port
		DBName:          os.Getenv("DB_NAME"),                             // Database name
		DBPath:          getenv("DB_PATH", "app.db"),                      // SQLite file
		DBDebug:         os.Getenv("DB_DEBUG") == "1",                     // SQL logging
		SessionSecret:   getenv("SESSION_SECRET", "dev-secret"),           // Session signing key
		RedisAddr:       os.Getenv("REDIS_ADDR"),                          // Redis server address
		RedisPass:       os.Getenv("REDIS_PASS"),                          // Redis password
		RedisDB:         redisDB,                                          // Redis database number
		IsProd:          os.Getenv("IS_PROD") == "true",                   // Is production environment
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),                      // Provider API key
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),                     // Provider base URL
		OpenAIModel:     getenv("OPENAI_MODEL", "gpt-4o-mini"),            // Provider model
		ProviderTimeout: getDuration("PROVIDER_TIMEOUT", 15*time.Second),  // Provider call bound
		QuestionWindow:  getDuration("QUESTION_WINDOW", 24*time.Hour),     // Question spacing
		HistoryCacheTTL: getDuration("HISTORY_CACHE_TTL", 60*time.Second), // History cache TTL
	}
}

// getenv returns the variable or def when unset
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v // Use the environment value
	}
	return def // Fall back to default
}

// getDuration parses a Go duration, falling back to def on absence or error
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def // Ignore invalid durations
	}
	return d
}
