// Пакет config — загрузка и валидация конфигурации Jobly
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Минимальная длина секрета подписи токенов.
const minSecretKeyLen = 8

// Config содержит все параметры конфигурации Jobly.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s)
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL (disable, require, verify-ca, verify-full)
	DBSSLMode string
	// Размер пула pgxpool
	DBMaxConns int
	DBMinConns int

	// --- Аутентификация ---

	// Секрет подписи HS256-токенов
	SecretKey string
	// URL JWKS внешнего IdP (опционально, включает RS256)
	JWTJWKSURL string
	// Интервал обновления JWKS (по умолчанию 15m)
	JWKSRefreshInterval time.Duration
	// Таймаут HTTP-клиента JWKS (по умолчанию 10s)
	JWKSClientTimeout time.Duration
	// Стоимость bcrypt для паролей пользователей
	BcryptWorkFactor int

	// --- Кэш компаний ---

	// Максимальное количество записей
	CacheSize int
	// Время жизни записи
	CacheTTL time.Duration

	// --- Topologymetrics ---

	// Группа сервиса в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей (по умолчанию 15s)
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// validSSLModes — допустимые значения JOBLY_DB_SSL_MODE.
var validSSLModes = map[string]bool{
	"disable":     true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// JOBLY_PORT — порт HTTP-сервера (по умолчанию 3001)
	cfg.Port, err = getEnvInt("JOBLY_PORT", 3001)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("JOBLY_PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	// JOBLY_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("JOBLY_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("JOBLY_LOG_LEVEL: %w", err)
	}

	// JOBLY_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("JOBLY_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("JOBLY_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("JOBLY_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_HTTP_READ_TIMEOUT: %w", err)
	}

	cfg.HTTPWriteTimeout, err = getEnvDuration("JOBLY_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_HTTP_WRITE_TIMEOUT: %w", err)
	}

	cfg.HTTPIdleTimeout, err = getEnvDuration("JOBLY_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	// JOBLY_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("JOBLY_DB_HOST")
	if err != nil {
		return nil, err
	}

	// JOBLY_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("JOBLY_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_DB_PORT: %w", err)
	}

	// JOBLY_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("JOBLY_DB_NAME")
	if err != nil {
		return nil, err
	}

	// JOBLY_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("JOBLY_DB_USER")
	if err != nil {
		return nil, err
	}

	// JOBLY_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("JOBLY_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// JOBLY_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("JOBLY_DB_SSL_MODE", "disable")
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("JOBLY_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// JOBLY_DB_MAX_CONNS / JOBLY_DB_MIN_CONNS — размер пула (по умолчанию 10 / 0)
	cfg.DBMaxConns, err = getEnvInt("JOBLY_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > math.MaxInt32 {
		return nil, fmt.Errorf("JOBLY_DB_MAX_CONNS: значение %d должно быть >= 1", cfg.DBMaxConns)
	}
	cfg.DBMinConns, err = getEnvInt("JOBLY_DB_MIN_CONNS", 0)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_DB_MIN_CONNS: %w", err)
	}
	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		return nil, fmt.Errorf("JOBLY_DB_MIN_CONNS: значение %d вне диапазона 0-%d", cfg.DBMinConns, cfg.DBMaxConns)
	}

	// --- Аутентификация ---

	// JOBLY_SECRET_KEY — обязательный, секрет HS256
	cfg.SecretKey, err = getEnvRequired("JOBLY_SECRET_KEY")
	if err != nil {
		return nil, err
	}
	if len(cfg.SecretKey) < minSecretKeyLen {
		return nil, fmt.Errorf("JOBLY_SECRET_KEY: длина должна быть не менее %d символов", minSecretKeyLen)
	}

	// JOBLY_JWT_JWKS_URL — опциональный JWKS endpoint
	cfg.JWTJWKSURL = os.Getenv("JOBLY_JWT_JWKS_URL")
	if cfg.JWTJWKSURL != "" {
		u, parseErr := url.Parse(cfg.JWTJWKSURL)
		if parseErr != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("JOBLY_JWT_JWKS_URL: некорректный URL %q", cfg.JWTJWKSURL)
		}
	}

	cfg.JWKSRefreshInterval, err = getEnvDuration("JOBLY_JWKS_REFRESH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_JWKS_REFRESH_INTERVAL: %w", err)
	}

	cfg.JWKSClientTimeout, err = getEnvDuration("JOBLY_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// JOBLY_BCRYPT_WORK_FACTOR — стоимость bcrypt (по умолчанию 12, диапазон 4-31)
	cfg.BcryptWorkFactor, err = getEnvInt("JOBLY_BCRYPT_WORK_FACTOR", 12)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_BCRYPT_WORK_FACTOR: %w", err)
	}
	if cfg.BcryptWorkFactor < 4 || cfg.BcryptWorkFactor > 31 {
		return nil, fmt.Errorf("JOBLY_BCRYPT_WORK_FACTOR: значение %d вне диапазона 4-31", cfg.BcryptWorkFactor)
	}

	// --- Кэш компаний ---

	cfg.CacheSize, err = getEnvInt("JOBLY_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("JOBLY_CACHE_SIZE: значение должно быть > 0")
	}

	cfg.CacheTTL, err = getEnvDuration("JOBLY_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_CACHE_TTL: %w", err)
	}

	// --- Topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("JOBLY_DEPHEALTH_GROUP", "jobly")

	cfg.DephealthCheckInterval, err = getEnvDuration("JOBLY_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("JOBLY_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("JOBLY_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// PostgresURL возвращает URL подключения к PostgreSQL со схемой scheme
// (pgx5 для golang-migrate, postgres для лейблов topologymetrics).
// Логин и пароль экранируются.
func (c *Config) PostgresURL(scheme string) string {
	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
// Значение должно быть > 0.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
