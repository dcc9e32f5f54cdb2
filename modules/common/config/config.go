package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config - every environment-driven setting for the studio server
type Config struct {
	// Server
	Port string

	// Supabase (staged uploads + public client key)
	SupabaseURL        string
	SupabaseServiceKey string
	SupabaseAnonKey    string
	StorageBucket      string

	// Providers
	PhotoroomAPIKey   string
	PhotoroomAPIURL   string
	ReplicateAPIToken string
	ReplicateAPIURL   string
	GeminiAPIKey      string
	GeminiModel       string

	// Redis (optional - live status snapshots)
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool
}

var globalConfig *Config

// LoadConfig - load .env (if present) and environment variables
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	useTLS := true
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	redisEnabled := false
	if enStr := os.Getenv("REDIS_ENABLED"); enStr != "" {
		if parsed, err := strconv.ParseBool(enStr); err == nil {
			redisEnabled = parsed
		}
	}

	globalConfig = &Config{
		Port: getEnv("PORT", "8080"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		StorageBucket:      getEnv("STORAGE_BUCKET", "model-agent-temp"),

		PhotoroomAPIKey:   getEnv("PHOTOROOM_API_KEY", ""),
		PhotoroomAPIURL:   getEnv("PHOTOROOM_API_URL", "https://image-api.photoroom.com/v2/edit"),
		ReplicateAPIToken: getEnv("REPLICATE_API_TOKEN", ""),
		ReplicateAPIURL:   getEnv("REPLICATE_API_URL", "https://api.replicate.com/v1/predictions"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash-image"),

		RedisEnabled:  redisEnabled,
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Supabase: %s (bucket: %s)", globalConfig.SupabaseURL, globalConfig.StorageBucket)
	log.Printf("   Gemini: %s", globalConfig.GeminiModel)
	log.Printf("   Redis: enabled=%v %s:%s (TLS: %v)", globalConfig.RedisEnabled, globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)

	return globalConfig, nil
}

// GetConfig - fetch the loaded configuration
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// SetConfigForTest - swap the global config (tests only)
func SetConfigForTest(cfg *Config) {
	globalConfig = cfg
}

// validate - missing provider credentials surface per-request as configuration
// errors, so only values the server cannot start without are checked here.
func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

// getEnv - environment variable with default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis connection string
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
