package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreBackendMongo    = "mongo"
	StoreBackendPostgres = "postgres"
)

// MongoConfig хранит конфигурацию для MongoDB
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// PostgresConfig хранит конфигурацию для PostgreSQL
type PostgresConfig struct {
	URL   string
	Table string
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	Enabled bool
	URL     string
	Workers int
}

type RestConfig struct {
	Port           string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type SearchConfig struct {
	CandidateLimit   int
	FuzzyCutoff      float64
	EbrochureBaseURL string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	StoreBackend string
	Mongo        MongoConfig
	Postgres     PostgresConfig
	RabbitMQ     RabbitMQConfig
	Rest         RestConfig
	Search       SearchConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig загружает .env (если он есть) и читает конфигурацию из переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using environment only.\n", envPath)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "property-search-service")

	cfg.StoreBackend = strings.ToLower(getEnvAsString("STORE_BACKEND", StoreBackendMongo))
	switch cfg.StoreBackend {
	case StoreBackendMongo:
		cfg.Mongo.URI = os.Getenv("MONGODB_URI")
		if cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("MONGODB_URI environment variable is required for the mongo backend")
		}
		cfg.Mongo.Database = getEnvAsString("DB_NAME", "properties")
		cfg.Mongo.Collection = getEnvAsString("COLLECTION_NAME", "listings")
	case StoreBackendPostgres:
		cfg.Postgres.URL = os.Getenv("DATABASE_URL")
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres backend")
		}
		cfg.Postgres.Table = getEnvAsString("LISTINGS_TABLE", "listings")
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q (expected %q or %q)", cfg.StoreBackend, StoreBackendMongo, StoreBackendPostgres)
	}

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			return nil, fmt.Errorf("RABBITMQ_URL environment variable is required when RABBITMQ_ENABLED is true")
		}
		cfg.RabbitMQ.Workers = getEnvAsInt("CONSUMER_WORKERS", 4)
	}

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS")
	cfg.Rest.RateLimitRPS = getEnvAsFloat("REST_RATE_LIMIT_RPS", 20)
	cfg.Rest.RateLimitBurst = getEnvAsInt("REST_RATE_LIMIT_BURST", 40)

	cfg.Search = LoadSearchConfig()

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

// LoadSearchConfig читает только настройки движка, без хранилища и очереди
func LoadSearchConfig() SearchConfig {
	return SearchConfig{
		CandidateLimit:   getEnvAsInt("SEARCH_CANDIDATE_LIMIT", 40),
		FuzzyCutoff:      getEnvAsFloat("SEARCH_FUZZY_CUTOFF", 0.8),
		EbrochureBaseURL: getEnvAsString("EBROCHURE_BASE_URL", ""),
	}
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt логирует предупреждение, если значение есть, но не является int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as float: %v. Using default value: %g\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return value
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists || valStr == "" {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}

// getEnvAsList - список через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
