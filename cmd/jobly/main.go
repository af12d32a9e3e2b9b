// Точка входа Jobly — API вакансий.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// собирает репозитории, сервисы и обработчики, запускает мониторинг
// зависимостей и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigkaa/jobly/internal/api/handlers"
	"github.com/bigkaa/jobly/internal/api/middleware"
	"github.com/bigkaa/jobly/internal/config"
	"github.com/bigkaa/jobly/internal/database"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/server"
	"github.com/bigkaa/jobly/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Jobly запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
		logger.Warn("Метрики пула PostgreSQL не зарегистрированы", slog.String("error", err.Error()))
	}

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	companyRepo := repository.NewCompanyRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// 6. Services
	companyCache := service.NewCompanyCache(cfg.CacheSize, cfg.CacheTTL)
	companiesSvc := service.NewCompanyService(companyRepo, jobRepo, companyCache, logger)
	jobsSvc := service.NewJobService(jobRepo, companyCache, logger)
	usersSvc := service.NewUserService(userRepo, cfg.BcryptWorkFactor, logger)
	tokenIssuer := service.NewTokenIssuer(cfg.SecretKey)

	// 7. topologymetrics — мониторинг PostgreSQL
	dephealthSvc, err := service.NewDephealthService(service.DephealthOptions{
		ServiceID:     "jobly",
		Group:         cfg.DephealthGroup,
		DB:            pgDB,
		PostgresURL:   cfg.PostgresURL("postgres"),
		CheckInterval: cfg.DephealthCheckInterval,
	}, logger)
	var deps handlers.DependencyReporter
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("Ошибка запуска topologymetrics",
			slog.String("error", startErr.Error()),
		)
	} else {
		defer dephealthSvc.Stop()
		deps = dephealthSvc
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 8. Handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), deps)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		companiesSvc,
		jobsSvc,
		usersSvc,
		tokenIssuer,
		logger,
	)

	// 9. JWT middleware: HS256 общим секретом, RS256 через JWKS при наличии URL
	jwtAuth := middleware.NewJWTAuth(cfg.SecretKey, logger)
	if cfg.JWTJWKSURL != "" {
		jwtAuth, err = middleware.NewJWTAuthWithJWKS(
			cfg.SecretKey,
			cfg.JWTJWKSURL,
			cfg.JWKSClientTimeout,
			cfg.JWKSRefreshInterval,
			logger,
		)
		if err != nil {
			logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	logger.Info("JWT middleware инициализирован",
		slog.Bool("jwks_enabled", cfg.JWTJWKSURL != ""),
	)

	// 10. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Jobly остановлен")
}
