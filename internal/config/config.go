package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port    string
	Storage string // postgres|memory

	DbHost     string
	DbPort     string
	DbUser     string
	DbPass     string
	DbName     string
	DbSSLMode  string
	DbMaxConns string

	JWTSecret      string
	AccessTokenTTL string

	Log      string
	LogLevel string
	Env      string // dev|prod

	RedisAddr     string
	RedisPassword string
	RedisDB       string
	MenuCacheTTL  string

	AMQPURL string

	CORSOrigins string
}

// LoadConfig загружает .env, читает переменные окружения и выставляет дефолты.
// Ничего не логирует — чтобы не создавать зависимость от logger.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	def := func(v, d string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return d
		}
		return v
	}

	cfg := &Config{
		Port:    def(os.Getenv("PORT"), "8080"),
		Storage: strings.ToLower(def(os.Getenv("STORAGE"), StoragePostgres)),

		DbHost:     os.Getenv("DB_HOST"),
		DbPort:     def(os.Getenv("DB_PORT"), "5432"),
		DbUser:     os.Getenv("DB_USER"),
		DbPass:     os.Getenv("DB_PASSWORD"),
		DbName:     os.Getenv("DB_NAME"),
		DbSSLMode:  def(os.Getenv("DB_SSLMODE"), "disable"),
		DbMaxConns: def(os.Getenv("DB_MAX_CONNS"), "10"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: def(os.Getenv("ACCESS_TOKEN_EXPIRY"), "720h"),

		Log:      os.Getenv("LOG"),
		LogLevel: strings.ToLower(def(os.Getenv("LOGLEVEL"), "info")),
		Env:      strings.ToLower(def(os.Getenv("ENV"), "prod")),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       def(os.Getenv("REDIS_DB"), "0"),
		MenuCacheTTL:  def(os.Getenv("MENU_CACHE_TTL"), "5m"),

		AMQPURL: os.Getenv("AMQP_URL"),

		CORSOrigins: def(os.Getenv("CORS_ORIGINS"), "*"),
	}

	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("unknown STORAGE %q (postgres|memory)", cfg.Storage)
	}

	return cfg, nil
}

// Validate возвращает предупреждения и фатальную ошибку (если критично).
func (c *Config) Validate() (warnings []string, err error) {
	if c.Storage == StoragePostgres && (c.DbHost == "" || c.DbUser == "" || c.DbName == "") {
		return nil, fmt.Errorf("incomplete DB config (DB_HOST/DB_USER/DB_NAME)")
	}
	if c.Storage == StorageMemory {
		warnings = append(warnings, "STORAGE=memory: data is lost on restart")
	}

	if strings.TrimSpace(c.JWTSecret) == "" {
		warnings = append(warnings, "JWT_SECRET is empty, owner scope checks are disabled")
	}
	if c.RedisAddr == "" {
		warnings = append(warnings, "REDIS_ADDR is not set, menu cache is disabled")
	}
	if c.AMQPURL == "" {
		warnings = append(warnings, "AMQP_URL is not set, menu events are not published")
	}
	if _, err := time.ParseDuration(c.AccessTokenTTL); err != nil {
		return warnings, fmt.Errorf("bad ACCESS_TOKEN_EXPIRY %q: %w", c.AccessTokenTTL, err)
	}

	return warnings, nil
}

// GetDSN — полная DSN (с паролем)
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s",
		c.DbUser, c.DbPass, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode, c.DbMaxConns,
	)
}

// GetDSNSafe — DSN без пароля (для логов)
func (c *Config) GetDSNSafe() string {
	return fmt.Sprintf(
		"postgres://%s:***@%s:%s/%s?sslmode=%s",
		c.DbUser, c.DbHost, c.DbPort, c.DbName, c.DbSSLMode,
	)
}

func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil {
		return 720 * time.Hour
	}
	return d
}

func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.MenuCacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

func (c *Config) RedisDBIndex() int {
	n, err := strconv.Atoi(c.RedisDB)
	if err != nil {
		return 0
	}
	return n
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, p := range strings.Split(c.CORSOrigins, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
