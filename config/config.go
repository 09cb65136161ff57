package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"nscollab/database"
	"nscollab/models"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL      string
	DatabaseName     string
	DatabaseMaxConns int32 // 0 keeps the pgx default
	DatabaseMinConns int32

	// HTTP configuration
	HTTPAddr           string
	CORSAllowedOrigins []string

	// Demoday configuration
	DefaultAngelBalance models.Cents // Funding granted to each angel at registration
	HostDiscordIDs      []int64      // Discord IDs allowed to host every event

	// Discord configuration
	DiscordBotToken          string // Optional, enables announcements
	DiscordAnnounceChannelID string
	DiscordGuildID           string // Optional, registers slash commands in one guild only

	// NATS configuration
	NATSServers string // Optional, enables event forwarding (comma-separated)

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() (string, error) {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// DatabasePoolOptions returns the configured connection pool sizing
func (c *Config) DatabasePoolOptions() database.PoolOptions {
	return database.PoolOptions{
		MaxConns: c.DatabaseMaxConns,
		MinConns: c.DatabaseMinConns,
	}
}

// IsHost returns true if the Discord ID is a global Demoday host
func (c *Config) IsHost(discordID int64) bool {
	for _, id := range c.HostDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

// DefaultHostID returns the host assigned to newly created events, if any
func (c *Config) DefaultHostID() *int64 {
	if len(c.HostDiscordIDs) == 0 {
		return nil
	}
	id := c.HostDiscordIDs[0]
	return &id
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine, the environment may already be populated
	_ = godotenv.Load()

	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr:           getEnvWithDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		// Demoday settings with defaults
		DefaultAngelBalance: models.DefaultAngelBalance,

		// Discord
		DiscordBotToken:          os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordAnnounceChannelID: os.Getenv("DISCORD_ANNOUNCE_CHANNEL_ID"),
		DiscordGuildID:           os.Getenv("DISCORD_GUILD_ID"),

		// NATS
		NATSServers: os.Getenv("NATS_SERVERS"),

		// Logging
		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if balance := os.Getenv("DEMODAY_DEFAULT_BALANCE"); balance != "" {
		units, err := strconv.ParseInt(balance, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("DEMODAY_DEFAULT_BALANCE must be a positive whole number of units")
		}
		cents, ok := models.AngelBalanceFromUnits(units)
		if !ok {
			return nil, fmt.Errorf("DEMODAY_DEFAULT_BALANCE must be between 1 and %d units", int64(models.MaxAngelBalance/models.CentsPerUnit))
		}
		config.DefaultAngelBalance = cents
	}

	// Pool sizing
	for _, setting := range []struct {
		key    string
		target *int32
	}{
		{"DATABASE_MAX_CONNS", &config.DatabaseMaxConns},
		{"DATABASE_MIN_CONNS", &config.DatabaseMinConns},
	} {
		value := os.Getenv(setting.key)
		if value == "" {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number", setting.key)
		}
		*setting.target = int32(n)
	}
	if config.DatabaseMaxConns > 0 && config.DatabaseMinConns > config.DatabaseMaxConns {
		return nil, fmt.Errorf("DATABASE_MIN_CONNS must not exceed DATABASE_MAX_CONNS")
	}

	// Parse host Discord IDs
	for _, idStr := range splitList(os.Getenv("DEMODAY_HOST_IDS")) {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEMODAY_HOST_IDS entry %q: %w", idStr, err)
		}
		config.HostDiscordIDs = append(config.HostDiscordIDs, id)
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DiscordBotToken != "" && config.DiscordAnnounceChannelID == "" {
			return nil, fmt.Errorf("DISCORD_ANNOUNCE_CHANNEL_ID is required when DISCORD_BOT_TOKEN is set")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:         "test",
		HTTPAddr:            ":0",
		DefaultAngelBalance: models.DefaultAngelBalance,
		HostDiscordIDs:      []int64{999999}, // Default test host
		LogLevel:            "debug",
	}
}
