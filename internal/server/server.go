// Пакет server — HTTP-сервер Jobly с graceful shutdown.
// Без TLS — TLS termination выполняется на балансировщике.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/jobly/internal/api/errors"
	"github.com/bigkaa/jobly/internal/api/handlers"
	"github.com/bigkaa/jobly/internal/api/middleware"
	"github.com/bigkaa/jobly/internal/config"
)

// Server — HTTP-сервер Jobly.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, jwtAuth *middleware.JWTAuth) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, handler, jwtAuth),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает chi-router: глобальные middleware и маршруты с guard-ами.
// JWT middleware только определяет Identity; доступ проверяют guard-ы маршрутов.
func NewRouter(logger *slog.Logger, h *handlers.APIHandler, jwtAuth *middleware.JWTAuth) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	// Health и metrics проверяются Kubernetes напрямую, без токенов.
	router.Use(jwtAuthWithExclusions(jwtAuth, "/health/", "/metrics"))
	// После JWT: в access log попадает пользователь из Identity.
	router.Use(middleware.RequestLogger(logger))

	router.NotFound(apierrors.RouteNotFound)
	router.MethodNotAllowed(apierrors.MethodNotAllowed)

	router.Get("/health/live", h.HealthLive)
	router.Get("/health/ready", h.HealthReady)
	router.Get("/metrics", h.GetMetrics)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", h.IssueToken)
		r.Post("/register", h.Register)
	})

	router.Route("/companies", func(r chi.Router) {
		r.Get("/", h.ListCompanies)
		r.Get("/{handle}", h.GetCompany)

		r.Group(func(r chi.Router) {
			r.Use(middleware.EnsureIsAdmin())
			r.Post("/", h.CreateCompany)
			r.Patch("/{handle}", h.UpdateCompany)
			r.Delete("/{handle}", h.DeleteCompany)
		})
	})

	router.Route("/jobs", func(r chi.Router) {
		r.Get("/", h.ListJobs)
		r.Get("/{id}", h.GetJob)

		r.Group(func(r chi.Router) {
			r.Use(middleware.EnsureIsAdmin())
			r.Post("/", h.CreateJob)
			r.Patch("/{id}", h.UpdateJob)
			r.Delete("/{id}", h.DeleteJob)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.EnsureIsAdmin())
			r.Post("/", h.CreateUser)
			r.Get("/", h.ListUsers)
		})

		r.Route("/{username}", func(r chi.Router) {
			r.Use(middleware.EnsureThisUserOrAdmin("username"))
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Post("/jobs/{id}", h.ApplyToJob)
		})
	})

	return router
}

// jwtAuthWithExclusions оборачивает JWTAuth.Middleware(), пропуская указанные пути.
// Запросы к путям, начинающимся с любого из excludePrefixes, проходят без JWT.
func jwtAuthWithExclusions(jwtAuth *middleware.JWTAuth, excludePrefixes ...string) func(http.Handler) http.Handler {
	jwtMiddleware := jwtAuth.Middleware()

	return func(next http.Handler) http.Handler {
		withJWT := jwtMiddleware(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			withJWT.ServeHTTP(w, r)
		})
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
