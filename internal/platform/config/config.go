package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultGraphileWorkerSchema = "graphile_worker"

type Config struct {
	Host  string
	Port  string
	Debug bool

	GraphileWorkerSchema string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	PoolMaxSize     int
	PoolWaitTimeout time.Duration

	// JWTKey is empty when the API runs without authentication.
	JWTKey []byte
	JWTExp time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Host:                 getEnv("HOST", "0.0.0.0"),
		Port:                 getEnv("PORT", "80"),
		Debug:                getEnvAsBool("DEBUG", false),
		GraphileWorkerSchema: getEnv("GRAPHILE_WORKER_SCHEMA", DefaultGraphileWorkerSchema),
		DBHost:               getEnv("PG_HOST", "localhost"),
		DBPort:               getEnv("PG_PORT", "5432"),
		DBUser:               getEnv("PG_USER", "postgres"),
		DBPassword:           getEnv("PG_PASSWORD", ""),
		DBName:               getEnv("PG_DBNAME", "postgres"),
		DBSslMode:            getEnv("PG_SSLMODE", "disable"),
		PoolMaxSize:          getEnvAsInt("PG_POOL_MAX_SIZE", 16),
		PoolWaitTimeout:      time.Duration(getEnvAsInt("PG_POOL_TIMEOUT_WAIT", 5)) * time.Second,
		JWTKey:               []byte(getEnv("JWT_SECRET", "")),
		JWTExp:               time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
	}
	if cfg.PoolMaxSize < 1 {
		cfg.PoolMaxSize = 1
	}
	if _, err := strconv.ParseUint(cfg.Port, 10, 16); err != nil {
		return nil, fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}
	if cfg.GraphileWorkerSchema == "" {
		return nil, fmt.Errorf("GRAPHILE_WORKER_SCHEMA must not be empty")
	}

	cfg.DBConnStr = "host=" + quoteDSNValue(cfg.DBHost) +
		" port=" + quoteDSNValue(cfg.DBPort) +
		" user=" + quoteDSNValue(cfg.DBUser) +
		" password=" + quoteDSNValue(cfg.DBPassword) +
		" dbname=" + quoteDSNValue(cfg.DBName) +
		" sslmode=" + quoteDSNValue(cfg.DBSslMode)

	return cfg, nil
}

func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) AuthEnabled() bool {
	return len(c.JWTKey) > 0
}

// quoteDSNValue quotes a keyword/value connection string value so empty
// passwords and values with spaces survive parsing.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
