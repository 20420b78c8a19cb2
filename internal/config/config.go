package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the placeholder signing key used when JWT_SECRET is unset
const DefaultJWTSecret = "change-me-in-production"

// Config is the process configuration, read from the environment after an
// optional .env file has been loaded.
type Config struct {
	Port        string `env:"PORT" envDefault:"5000"`
	MongoURI    string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB     string `env:"MONGO_DB" envDefault:"electromatrix"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"mongo"` // mongo | memory

	// RedisURL is optional; without it the pool is read straight from the
	// store and the leaderboard is computed from team records.
	RedisURL     string        `env:"REDIS_URL"`
	PoolCacheTTL time.Duration `env:"POOL_CACHE_TTL" envDefault:"10m"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"12h"`

	CORSOrigins []string `env:"CORS_ORIGIN" envSeparator:"," envDefault:"http://localhost:5173"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`

	SectionDuration time.Duration `env:"SECTION_DURATION" envDefault:"20m"`
	PoolsFile       string        `env:"POOLS_FILE"`
}

// Load reads .env (if present) and parses the environment
func Load() (*Config, error) {
	// Missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SectionDuration < time.Second {
		return fmt.Errorf("SECTION_DURATION must be at least 1s, got %s", c.SectionDuration)
	}
	return nil
}

// UsesDefaultSecret reports whether tokens are signed with the public
// placeholder key
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}
