package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"JOBLY_DB_HOST":     "localhost",
		"JOBLY_DB_NAME":     "jobly",
		"JOBLY_DB_USER":     "jobly",
		"JOBLY_DB_PASSWORD": "secret",
		"JOBLY_SECRET_KEY":  "secret-dev",
	}
}

// loadWith очищает обязательные переменные и загружает конфигурацию из envs.
func loadWith(t *testing.T, envs map[string]string) (*Config, error) {
	t.Helper()
	for k := range minimalEnvs() {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	setEnvs(t, envs)
	return Load()
}

func TestLoad_MinimalConfig(t *testing.T) {
	cfg, err := loadWith(t, minimalEnvs())
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 3001 {
		t.Errorf("Port = %d, ожидается 3001", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.JWTJWKSURL != "" {
		t.Errorf("JWTJWKSURL = %q, ожидается пустая строка", cfg.JWTJWKSURL)
	}
	if cfg.JWKSRefreshInterval != 15*time.Minute {
		t.Errorf("JWKSRefreshInterval = %v, ожидается 15m", cfg.JWKSRefreshInterval)
	}
	if cfg.BcryptWorkFactor != 12 {
		t.Errorf("BcryptWorkFactor = %d, ожидается 12", cfg.BcryptWorkFactor)
	}
	if cfg.CacheSize != 1000 {
		t.Errorf("CacheSize = %d, ожидается 1000", cfg.CacheSize)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, ожидается 5m", cfg.CacheTTL)
	}
	if cfg.DephealthGroup != "jobly" {
		t.Errorf("DephealthGroup = %q, ожидается jobly", cfg.DephealthGroup)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 15s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
	if cfg.DBMaxConns != 10 || cfg.DBMinConns != 0 {
		t.Errorf("пул = %d/%d, ожидается 10/0", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	envs := minimalEnvs()
	envs["JOBLY_PORT"] = "8080"
	envs["JOBLY_LOG_LEVEL"] = "debug"
	envs["JOBLY_LOG_FORMAT"] = "text"
	envs["JOBLY_DB_PORT"] = "5433"
	envs["JOBLY_DB_SSL_MODE"] = "require"
	envs["JOBLY_JWT_JWKS_URL"] = "https://idp.example.com/certs"
	envs["JOBLY_BCRYPT_WORK_FACTOR"] = "4"
	envs["JOBLY_CACHE_TTL"] = "1m"
	envs["JOBLY_SHUTDOWN_TIMEOUT"] = "10s"

	cfg, err := loadWith(t, envs)
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, ожидается Debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat = %q, ожидается text", cfg.LogFormat)
	}
	if cfg.DBPort != 5433 {
		t.Errorf("DBPort = %d, ожидается 5433", cfg.DBPort)
	}
	if cfg.DBSSLMode != "require" {
		t.Errorf("DBSSLMode = %q, ожидается require", cfg.DBSSLMode)
	}
	if cfg.JWTJWKSURL != "https://idp.example.com/certs" {
		t.Errorf("JWTJWKSURL = %q", cfg.JWTJWKSURL)
	}
	if cfg.BcryptWorkFactor != 4 {
		t.Errorf("BcryptWorkFactor = %d, ожидается 4", cfg.BcryptWorkFactor)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL = %v, ожидается 1m", cfg.CacheTTL)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	for missing := range minimalEnvs() {
		t.Run(missing, func(t *testing.T) {
			envs := minimalEnvs()
			delete(envs, missing)

			_, err := loadWith(t, envs)
			if err == nil {
				t.Fatalf("Load() не вернул ошибку при отсутствии %s", missing)
			}
			if !strings.Contains(err.Error(), missing) {
				t.Errorf("ошибка %q не содержит имя переменной %s", err, missing)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"JOBLY_PORT", "abc"},
		{"JOBLY_PORT", "70000"},
		{"JOBLY_LOG_LEVEL", "verbose"},
		{"JOBLY_LOG_FORMAT", "xml"},
		{"JOBLY_DB_SSL_MODE", "prefer"},
		{"JOBLY_DB_MAX_CONNS", "0"},
		{"JOBLY_DB_MIN_CONNS", "-1"},
		{"JOBLY_DB_MIN_CONNS", "11"},
		{"JOBLY_SECRET_KEY", "short"},
		{"JOBLY_JWT_JWKS_URL", "not a url"},
		{"JOBLY_BCRYPT_WORK_FACTOR", "3"},
		{"JOBLY_BCRYPT_WORK_FACTOR", "32"},
		{"JOBLY_CACHE_SIZE", "0"},
		{"JOBLY_CACHE_TTL", "-1m"},
		{"JOBLY_SHUTDOWN_TIMEOUT", "five"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			envs := minimalEnvs()
			envs[tt.key] = tt.value

			if _, err := loadWith(t, envs); err == nil {
				t.Errorf("Load() не вернул ошибку при %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     5432,
		DBName:     "jobly",
		DBUser:     "u",
		DBPassword: "p",
		DBSSLMode:  "disable",
	}

	want := "host=db port=5432 dbname=jobly user=u password=p sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", got, want)
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := &Config{
		DBHost:     "db",
		DBPort:     5432,
		DBName:     "jobly",
		DBUser:     "u",
		DBPassword: "p@ss/word",
		DBSSLMode:  "disable",
	}

	want := "pgx5://u:p%40ss%2Fword@db:5432/jobly?sslmode=disable"
	if got := cfg.PostgresURL("pgx5"); got != want {
		t.Errorf("PostgresURL() = %q, ожидается %q", got, want)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := parseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("parseLogLevel(%q) = %v, %v; ожидается %v", in, got, err, want)
		}
	}
}
