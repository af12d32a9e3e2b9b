// Пакет database — PostgreSQL для Jobly: пул pgxpool, схема через
// golang-migrate (встроенные миграции) и readiness с учётом версии схемы.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigkaa/jobly/internal/config"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable — таблица версий golang-migrate (по умолчанию драйвера pgx5).
const migrationsTable = "schema_migrations"

// undefinedTableCode — SQLSTATE отсутствующей таблицы.
const undefinedTableCode = "42P01"

// readyTimeout — предельное время проверки готовности.
const readyTimeout = 3 * time.Second

// Connect открывает пул с размерами из конфигурации и проверяет его ping-ом.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	poolCfg.MinConns = int32(cfg.DBMinConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула подключений: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка подключения к PostgreSQL: %w", err)
	}

	logger.Info("Подключение к PostgreSQL установлено",
		slog.String("host", cfg.DBHost),
		slog.String("database", cfg.DBName),
		slog.Int("max_conns", cfg.DBMaxConns),
	)
	return pool, nil
}

// Migrate доводит схему Jobly (companies, jobs, users, applications)
// до последней версии. Повторный запуск без новых миграций — не ошибка.
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	m, err := newMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("ошибка чтения версии схемы: %w", err)
	}
	logger.Info("Схема Jobly актуальна",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// newMigrator собирает migrate.Migrate поверх встроенных миграций.
func newMigrator(cfg *config.Config) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, cfg.PostgresURL("pgx5"))
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	return m, nil
}

// ReadinessChecker — готовность PostgreSQL для /health/ready:
// база отвечает и схема не осталась в состоянии dirty после сбоя миграции.
type ReadinessChecker struct {
	pool *pgxpool.Pool
}

func NewReadinessChecker(pool *pgxpool.Pool) *ReadinessChecker {
	return &ReadinessChecker{pool: pool}
}

// CheckReady возвращает статус ("ok", "fail") и пояснение.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	var (
		version int64
		dirty   bool
	)
	err := c.pool.QueryRow(ctx,
		"SELECT version, dirty FROM "+pgx.Identifier{migrationsTable}.Sanitize()+" LIMIT 1",
	).Scan(&version, &dirty)
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows),
		errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode:
		return "fail", "схема не инициализирована"
	case err != nil:
		return "fail", fmt.Sprintf("PostgreSQL недоступен: %v", err)
	case dirty:
		return "fail", fmt.Sprintf("миграция %d не завершена (dirty)", version)
	}
	return "ok", fmt.Sprintf("схема версии %d", version)
}

// RegisterPoolMetrics публикует состояние пула как jobly_db_pool_* gauge.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	gauges := []struct {
		name, help string
		value      func(*pgxpool.Stat) float64
	}{
		{"jobly_db_pool_total_conns", "Всего соединений в пуле",
			func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
		{"jobly_db_pool_idle_conns", "Свободные соединения",
			func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
		{"jobly_db_pool_acquired_conns", "Занятые соединения",
			func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		{"jobly_db_pool_max_conns", "Максимальный размер пула",
			func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
	}

	for _, g := range gauges {
		value := g.value
		collector := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{Name: g.name, Help: g.help},
			func() float64 { return value(pool.Stat()) },
		)
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("регистрация метрики %s: %w", g.name, err)
		}
	}
	return nil
}
