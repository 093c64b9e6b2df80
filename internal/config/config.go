package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	HTTPAddr string
	LogLevel string
	WebDir   string

	CartStorageDriver  string
	CartSQLitePath     string
	CartStorageKey     string
	CartDynamoTable    string
	CartPersistTimeout time.Duration

	DatabaseURL     string
	RedisAddr       string
	CatalogCacheTTL time.Duration

	KafkaBrokers      []string
	KafkaCartTopic    string
	KafkaCatalogTopic string
	KafkaGroupID      string

	SMTPHost string
	SMTPPort string
	SMTPFrom string
}

// Load reads .env when present, then the environment. The returned notice is non-empty
// when no .env file was loaded.
func Load(envFiles ...string) (*Config, string) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	notice := ""
	if err := godotenv.Load(envFiles...); err != nil {
		notice = fmt.Sprintf(".env file not found (%v), using system environment variables", err)
	}

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		WebDir:   os.Getenv("WEB_DIR"),

		CartStorageDriver:  strings.ToLower(getEnv("CART_STORAGE_DRIVER", DriverSQLite)),
		CartSQLitePath:     getEnv("CART_SQLITE_PATH", "klassico_cart.db"),
		CartStorageKey:     getEnv("CART_STORAGE_KEY", "klassico_cart"),
		CartDynamoTable:    getEnv("CART_DYNAMO_TABLE", "klassico_cart_state"),
		CartPersistTimeout: getEnvDuration("CART_PERSIST_TIMEOUT", 2*time.Second),

		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CatalogCacheTTL: getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		KafkaBrokers:      csv(os.Getenv("KAFKA_BROKERS")),
		KafkaCartTopic:    getEnv("KAFKA_CART_TOPIC", "klassico.cart-activity"),
		KafkaCatalogTopic: getEnv("KAFKA_CATALOG_TOPIC", "klassico.catalog-updates"),
		KafkaGroupID:      getEnv("KAFKA_GROUP_ID", "klassico-storefront"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getEnv("SMTP_PORT", "1025"),
		SMTPFrom: getEnv("SMTP_FROM", "orders@klassico.in"),
	}, notice
}

func (c *Config) Validate() error {
	switch c.CartStorageDriver {
	case DriverSQLite, DriverDynamoDB, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown CART_STORAGE_DRIVER %q", ErrInvalidConfig, c.CartStorageDriver)
	}
	if c.CartStorageDriver == DriverSQLite && c.CartSQLitePath == "" {
		return fmt.Errorf("%w: CART_SQLITE_PATH is required for the sqlite driver", ErrInvalidConfig)
	}
	if c.CartStorageDriver == DriverDynamoDB && c.CartDynamoTable == "" {
		return fmt.Errorf("%w: CART_DYNAMO_TABLE is required for the dynamodb driver", ErrInvalidConfig)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", ErrInvalidConfig)
	}
	if c.CartPersistTimeout <= 0 {
		return fmt.Errorf("%w: CART_PERSIST_TIMEOUT must be positive", ErrInvalidConfig)
	}
	return nil
}

// KafkaEnabled is false when no brokers are configured
func (c *Config) KafkaEnabled() bool { return len(c.KafkaBrokers) > 0 }

func (c *Config) RedisEnabled() bool { return c.RedisAddr != "" }

func (c *Config) SMTPEnabled() bool { return c.SMTPHost != "" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// plain integers are seconds
	if n := getEnvInt(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

func csv(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
