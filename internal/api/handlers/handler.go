// handler.go — основной обработчик API Jobly.
// Объединяет health и бизнес-обработчики, делегируя запросы в сервисный слой.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/jobly/internal/api/errors"
	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/service"
)

// CompanyService — операции над компаниями, нужные обработчикам.
type CompanyService interface {
	Create(ctx context.Context, c *model.Company) (*model.Company, error)
	FindAll(ctx context.Context, filter repository.CompanyFilter) ([]*model.Company, error)
	Get(ctx context.Context, handle string) (*model.Company, error)
	Update(ctx context.Context, handle string, patch service.CompanyPatch) (*model.Company, error)
	Remove(ctx context.Context, handle string) error
}

// JobService — операции над вакансиями.
type JobService interface {
	Create(ctx context.Context, j *model.Job) (*model.Job, error)
	FindAll(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error)
	Get(ctx context.Context, id int) (*model.Job, error)
	Update(ctx context.Context, id int, patch service.JobPatch) (*model.Job, error)
	Remove(ctx context.Context, id int) error
}

// UserService — операции над пользователями.
type UserService interface {
	Register(ctx context.Context, nu service.NewUser) (*model.User, error)
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Get(ctx context.Context, username string) (*model.User, error)
	Update(ctx context.Context, username string, patch service.UserPatch) (*model.User, error)
	Remove(ctx context.Context, username string) error
	ApplyToJob(ctx context.Context, username string, jobID int) error
}

// TokenIssuer выпускает токен для пользователя.
type TokenIssuer interface {
	Issue(u *model.User) (string, error)
}

// APIHandler — основной обработчик API Jobly.
type APIHandler struct {
	health    *HealthHandler
	companies CompanyService
	jobs      JobService
	users     UserService
	tokens    TokenIssuer
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	companies CompanyService,
	jobs JobService,
	users UserService,
	tokens TokenIssuer,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:    health,
		companies: companies,
		jobs:      jobs,
		users:     users,
		tokens:    tokens,
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — проверка liveness.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — проверка readiness.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// maxBodyBytes — предельный размер тела запроса.
const maxBodyBytes = 1 << 20

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst.
// Неизвестные поля и лишние данные после объекта — ошибка.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("некорректный JSON: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("некорректный JSON: ожидается один объект")
	}
	return nil
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// Неизвестные ошибки логируются и скрываются за 500.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, "Неверное имя пользователя или пароль")
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка: "+op)
	}
}
