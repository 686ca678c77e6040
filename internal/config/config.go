package config // package config loads application configuration from environment variables

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultTokenTTL is the validity window of every issued access token.
const DefaultTokenTTL = 30 * 24 * time.Hour

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings are only read for the driver
// that is selected: DB_USER/DB_HOST/... for mysql, DB_PATH for sqlite.
type Config struct {
	Env            string        `env:"APP_ENV" envDefault:"dev"`                // application environment (dev/test/prod)
	Port           string        `env:"APP_PORT" envDefault:"8000"`              // HTTP port to listen on
	DBDriver       string        `env:"DB_DRIVER" envDefault:"sqlite"`           // mysql | sqlite
	DBUser         string        `env:"DB_USER"`                                 // database username
	DBPass         string        `env:"DB_PASS"`                                 // database password (optional)
	DBHost         string        `env:"DB_HOST" envDefault:"127.0.0.1"`          // database host address
	DBPort         string        `env:"DB_PORT" envDefault:"3306"`               // database port number
	DBName         string        `env:"DB_NAME" envDefault:"wilddict"`           // database name
	DBPath         string        `env:"DB_PATH" envDefault:"wilddict.db"`        // sqlite file
	JWTSecret      string        `env:"JWT_SECRET"`                              // secret used to sign JWTs
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"720h"`             // access token time-to-live
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`             // bcrypt cost for password hashing
	EnforceActive  bool          `env:"AUTH_ENFORCE_ACTIVE" envDefault:"true"`   // re-check is_active on every request
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`         // bound for per-request DB work
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// IsProd reports whether the process runs in production mode.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// ErrMissingSecret is returned by Validate when no signing secret is set in
// production mode.
var ErrMissingSecret = errors.New("JWT_SECRET is required in production")

// Validate checks cross-field constraints that env tags cannot express.
func (c Config) Validate() error {
	if c.IsProd() && c.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.DBDriver {
	case "mysql":
		if c.DBUser == "" {
			return errors.New("DB_USER is required for the mysql driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// Parse reads the configuration from the environment without side effects.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads an optional .env file, parses the environment and returns a
// Config.  Invalid or incomplete configuration is fatal.  Outside production
// a missing JWT_SECRET is replaced by a random per-process secret, so tokens
// do not survive a restart.
func Load() Config {
	_ = godotenv.Load() // .env is optional; real env vars take precedence
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret(32)
		if err != nil {
			log.Fatalf("config: generate secret: %v", err)
		}
		cfg.JWTSecret = secret
		log.Printf("config: JWT_SECRET not set, using an ephemeral secret (env=%s)", cfg.Env)
	}
	return cfg
}

func randomSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
