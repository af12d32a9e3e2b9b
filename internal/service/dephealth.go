// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// Jobly мониторит единственную зависимость — PostgreSQL: SQL checker
// через существующий pgxpool (connection pool mode, critical).
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
//   - app_dependency_status — категория статуса
//   - app_dependency_status_detail — детальный статус
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// postgresDependency — имя зависимости PostgreSQL в метриках и Health().
const postgresDependency = "postgresql"

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// DephealthOptions — параметры мониторинга.
type DephealthOptions struct {
	// ServiceID — имя вершины графа текущего приложения ("jobly").
	ServiceID string
	// Group — имя группы в метриках (JOBLY_DEPHEALTH_GROUP).
	Group string
	// DB — *sql.DB, полученный из pgxpool через stdlib.OpenDBFromPool().
	DB *sql.DB
	// PostgresURL — URL PostgreSQL для лейблов метрик, не для подключения.
	PostgresURL string
	// CheckInterval — интервал проверки (JOBLY_DEPHEALTH_CHECK_INTERVAL).
	CheckInterval time.Duration
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(opts DephealthOptions, logger *slog.Logger) (*DephealthService, error) {
	return newDephealthService(opts, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	opts DephealthOptions,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(opts, logger, dephealth.WithRegisterer(registerer))
}

func newDephealthService(opts DephealthOptions, logger *slog.Logger, extraOpts ...dephealth.Option) (*DephealthService, error) {
	dhOpts := make([]dephealth.Option, 0, 2+len(extraOpts))
	dhOpts = append(dhOpts,
		dephealth.WithLogger(logger),
		// Проверка идёт через *sql.DB (адаптер pgxpool) и отражает
		// реальное состояние пула соединений.
		dephealth.AddDependency(postgresDependency, dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(opts.DB)),
			dephealth.FromURL(opts.PostgresURL),
			dephealth.CheckInterval(opts.CheckInterval),
			dephealth.Critical(true),
		),
	)
	dhOpts = append(dhOpts, extraOpts...)

	dh, err := dephealth.New(opts.ServiceID, opts.Group, dhOpts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен (PostgreSQL)")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
