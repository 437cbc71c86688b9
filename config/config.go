package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-logger/glog"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	auth "github.com/goliatone/go-shop-auth"
)

// Store drivers
const (
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the server configuration. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	Port string `envconfig:"PORT" default:"8080"`

	StoreDriver   string `envconfig:"STORE_DRIVER" default:"mongo"`
	MongoURI      string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"shop"`
	DatabaseDSN   string `envconfig:"DATABASE_DSN" default:"file:shop.db?cache=shared"`

	SigningKey           string            `envconfig:"JWT_SECRET" required:"true"`
	SigningKeyID         string            `envconfig:"JWT_KEY_ID" default:"primary"`
	PreviousSigningKeys  map[string]string `envconfig:"JWT_PREVIOUS_SECRETS"`
	SigningMethod        string            `envconfig:"JWT_SIGNING_METHOD" default:"HS256"`
	TokenExpirationHours int               `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
	Issuer               string            `envconfig:"JWT_ISSUER"`
	Audience             []string          `envconfig:"JWT_AUDIENCE"`

	ContextKey  string `envconfig:"CONTEXT_KEY" default:"user"`
	TokenLookup string `envconfig:"TOKEN_LOOKUP" default:"header:Authorization"`
	AuthScheme  string `envconfig:"AUTH_SCHEME" default:"Bearer"`
	BcryptCost  int    `envconfig:"BCRYPT_COST" default:"10"`

	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"shop.activity"`

	CORSAllowOrigins string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	CatalogAdminOnly bool   `envconfig:"CATALOG_ADMIN_ONLY" default:"false"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string `envconfig:"LOG_FORMAT" default:"json"`
}

var _ auth.Config = Config{}

// Load reads the optional env files, then the environment. A missing env
// file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks values envconfig cannot express
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if strings.TrimSpace(c.SigningKey) == "" {
		return errors.New("config: JWT_SECRET must not be blank")
	}

	if c.SigningMethod != "HS256" {
		return fmt.Errorf("config: unsupported JWT_SIGNING_METHOD %q", c.SigningMethod)
	}

	if c.TokenExpirationHours <= 0 {
		return fmt.Errorf("config: JWT_EXPIRATION_HOURS must be positive, got %d", c.TokenExpirationHours)
	}

	return nil
}

// Addr is the listen address
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// LoggerLevel normalizes LOG_LEVEL to a glog level, defaulting to info
func (c Config) LoggerLevel() string {
	return glog.NormalizeLevel(c.LogLevel)
}

func (c Config) GetSigningKey() string {
	return c.SigningKey
}

func (c Config) GetSigningKeyID() string {
	return c.SigningKeyID
}

func (c Config) GetPreviousSigningKeys() map[string]string {
	return c.PreviousSigningKeys
}

func (c Config) GetSigningMethod() string {
	return c.SigningMethod
}

func (c Config) GetContextKey() string {
	return c.ContextKey
}

func (c Config) GetTokenExpiration() int {
	return c.TokenExpirationHours
}

func (c Config) GetTokenLookup() string {
	return c.TokenLookup
}

func (c Config) GetAuthScheme() string {
	return c.AuthScheme
}

func (c Config) GetIssuer() string {
	return c.Issuer
}

func (c Config) GetAudience() []string {
	return c.Audience
}

func (c Config) GetPasswordCost() int {
	return c.BcryptCost
}
