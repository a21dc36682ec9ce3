package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API configuration
	HTTPAddr     string
	JWTSecret    string
	AdminAddress common.Address

	// Randomness beacon whose records lotteries may commit to
	BeaconPublicKey []byte

	// Slot clock
	SlotGenesis  time.Time
	SlotDuration time.Duration

	// Event publishing
	NATSEnabled bool
	NATSServers string

	// Discord announcements
	DiscordToken     string
	DiscordChannelID string

	// Error reporting
	SentryDSN string

	// Environment
	Environment string // "development", "production" or "test"
}

// fileConfig is the optional TOML overlay named by LOTTERY_CONFIG_FILE.
// Environment variables win over the file.
type fileConfig struct {
	DatabaseURL      string `toml:"database_url"`
	DatabaseName     string `toml:"database_name"`
	HTTPAddr         string `toml:"http_addr"`
	AdminAddress     string `toml:"admin_address"`
	BeaconPublicKey  string `toml:"beacon_public_key"`
	SlotGenesis      string `toml:"slot_genesis"`
	SlotDuration     string `toml:"slot_duration"`
	NATSEnabled      bool   `toml:"nats_enabled"`
	NATSServers      string `toml:"nats_servers"`
	DiscordChannelID string `toml:"discord_channel_id"`
	Environment      string `toml:"environment"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:     ":0",
		JWTSecret:    "test-secret",
		SlotGenesis:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		SlotDuration: time.Second,
		NATSServers:  "nats://localhost:4222",
		Environment:  "test",
	}
}

// load loads configuration from the optional TOML file and environment variables
func load() (*Config, error) {
	file := fileConfig{}
	if path := os.Getenv("LOTTERY_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return build(file, os.Getenv)
}

func build(file fileConfig, getenv func(string) string) (*Config, error) {
	pick := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}

	config := &Config{
		DatabaseURL:      pick("DATABASE_URL", file.DatabaseURL),
		DatabaseName:     pick("DATABASE_NAME", file.DatabaseName),
		HTTPAddr:         pick("HTTP_ADDR", file.HTTPAddr),
		JWTSecret:        getenv("JWT_SECRET"),
		NATSEnabled:      file.NATSEnabled,
		NATSServers:      pick("NATS_SERVERS", file.NATSServers),
		DiscordToken:     getenv("DISCORD_TOKEN"),
		DiscordChannelID: pick("DISCORD_CHANNEL_ID", file.DiscordChannelID),
		SentryDSN:        getenv("SENTRY_DSN"),
		Environment:      pick("ENVIRONMENT", file.Environment),
		SlotDuration:     400 * time.Millisecond,
	}

	if enabled := getenv("NATS_ENABLED"); enabled != "" {
		parsed, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid NATS_ENABLED %q: %w", enabled, err)
		}
		config.NATSEnabled = parsed
	}

	if admin := pick("ADMIN_ADDRESS", file.AdminAddress); admin != "" {
		if !common.IsHexAddress(admin) {
			return nil, fmt.Errorf("invalid ADMIN_ADDRESS %q", admin)
		}
		config.AdminAddress = common.HexToAddress(admin)
	}

	if key := pick("BEACON_PUBLIC_KEY", file.BeaconPublicKey); key != "" {
		decoded, err := hexutil.Decode(key)
		if err != nil {
			return nil, fmt.Errorf("invalid BEACON_PUBLIC_KEY: %w", err)
		}
		config.BeaconPublicKey = decoded
	}

	if genesis := pick("SLOT_GENESIS", file.SlotGenesis); genesis != "" {
		parsed, err := time.Parse(time.RFC3339, genesis)
		if err != nil {
			return nil, fmt.Errorf("invalid SLOT_GENESIS %q: %w", genesis, err)
		}
		config.SlotGenesis = parsed.UTC()
	}

	if duration := pick("SLOT_DURATION", file.SlotDuration); duration != "" {
		parsed, err := time.ParseDuration(duration)
		if err != nil {
			return nil, fmt.Errorf("invalid SLOT_DURATION %q: %w", duration, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("SLOT_DURATION must be positive, got %s", parsed)
		}
		config.SlotDuration = parsed
	}

	// Set defaults if not specified
	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.NATSServers == "" {
		config.NATSServers = "nats://localhost:4222"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		if config.SlotGenesis.IsZero() {
			return nil, fmt.Errorf("SLOT_GENESIS is required")
		}
		if len(config.BeaconPublicKey) == 0 {
			return nil, fmt.Errorf("BEACON_PUBLIC_KEY is required")
		}
	}

	return config, nil
}

// DiscordEnabled reports whether announcements should be posted
func (c *Config) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannelID != ""
}
