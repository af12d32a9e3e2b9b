package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bigkaa/jobly/internal/api/handlers"
	"github.com/bigkaa/jobly/internal/api/middleware"
	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/service"
)

const testSecret = "secret-dev"

// --- Заглушки сервисов: всегда успешны ---

type stubCompanies struct{}

func (stubCompanies) Create(_ context.Context, c *model.Company) (*model.Company, error) {
	return c, nil
}

func (stubCompanies) FindAll(context.Context, repository.CompanyFilter) ([]*model.Company, error) {
	return nil, nil
}

func (stubCompanies) Get(_ context.Context, handle string) (*model.Company, error) {
	return &model.Company{Handle: handle}, nil
}

func (stubCompanies) Update(_ context.Context, handle string, _ service.CompanyPatch) (*model.Company, error) {
	return &model.Company{Handle: handle}, nil
}

func (stubCompanies) Remove(context.Context, string) error { return nil }

type stubJobs struct{}

func (stubJobs) Create(_ context.Context, j *model.Job) (*model.Job, error) { return j, nil }

func (stubJobs) FindAll(context.Context, repository.JobFilter) ([]*model.Job, error) {
	return nil, nil
}

func (stubJobs) Get(_ context.Context, id int) (*model.Job, error) { return &model.Job{ID: id}, nil }

func (stubJobs) Update(_ context.Context, id int, _ service.JobPatch) (*model.Job, error) {
	return &model.Job{ID: id}, nil
}

func (stubJobs) Remove(context.Context, int) error { return nil }

type stubUsers struct{}

func (stubUsers) Register(_ context.Context, nu service.NewUser) (*model.User, error) {
	return &model.User{Username: nu.Username, IsAdmin: nu.IsAdmin}, nil
}

func (stubUsers) Authenticate(_ context.Context, username, _ string) (*model.User, error) {
	return &model.User{Username: username}, nil
}

func (stubUsers) FindAll(context.Context) ([]*model.User, error) { return nil, nil }

func (stubUsers) Get(_ context.Context, username string) (*model.User, error) {
	return &model.User{Username: username}, nil
}

func (stubUsers) Update(_ context.Context, username string, _ service.UserPatch) (*model.User, error) {
	return &model.User{Username: username}, nil
}

func (stubUsers) Remove(context.Context, string) error { return nil }

func (stubUsers) ApplyToJob(context.Context, string, int) error { return nil }

// newTestRouter собирает полный router с настоящими JWT middleware и guard-ами.
func newTestRouter() http.Handler {
	logger := slog.Default()
	h := handlers.NewAPIHandler(
		handlers.NewHealthHandler(nil, nil),
		stubCompanies{}, stubJobs{}, stubUsers{},
		service.NewTokenIssuer(testSecret),
		logger,
	)
	return NewRouter(logger, h, middleware.NewJWTAuth(testSecret, logger))
}

// issueToken выпускает токен тем же издателем, что и /auth/token.
func issueToken(t *testing.T, username string, isAdmin bool) string {
	t.Helper()
	token, err := service.NewTokenIssuer(testSecret).Issue(&model.User{Username: username, IsAdmin: isAdmin})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

// TestRouter_Guards проверяет матрицу доступа к маршрутам.
func TestRouter_Guards(t *testing.T) {
	router := newTestRouter()
	admin := issueToken(t, "admin", true)
	u1 := issueToken(t, "u1", false)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		// Публичные маршруты
		{"список компаний анонимно", http.MethodGet, "/companies", "", "", http.StatusOK},
		{"компания анонимно", http.MethodGet, "/companies/c1", "", "", http.StatusOK},
		{"список вакансий анонимно", http.MethodGet, "/jobs", "", "", http.StatusOK},
		{"вакансия анонимно", http.MethodGet, "/jobs/1", "", "", http.StatusOK},
		{"liveness", http.MethodGet, "/health/live", "", "", http.StatusOK},
		{"токен", http.MethodPost, "/auth/token", `{"username":"u1","password":"password1"}`, "", http.StatusOK},

		// Только admin
		{"создание компании admin", http.MethodPost, "/companies", `{"handle":"new","name":"New"}`, admin, http.StatusCreated},
		{"создание компании пользователем", http.MethodPost, "/companies", `{"handle":"new","name":"New"}`, u1, http.StatusUnauthorized},
		{"создание компании анонимно", http.MethodPost, "/companies", `{"handle":"new","name":"New"}`, "", http.StatusUnauthorized},
		{"обновление компании пользователем", http.MethodPatch, "/companies/c1", `{"name":"X"}`, u1, http.StatusUnauthorized},
		{"удаление вакансии admin", http.MethodDelete, "/jobs/1", "", admin, http.StatusOK},
		{"удаление вакансии пользователем", http.MethodDelete, "/jobs/1", "", u1, http.StatusUnauthorized},
		{"список пользователей admin", http.MethodGet, "/users", "", admin, http.StatusOK},
		{"список пользователей пользователем", http.MethodGet, "/users", "", u1, http.StatusUnauthorized},

		// Сам пользователь или admin
		{"свой профиль", http.MethodGet, "/users/u1", "", u1, http.StatusOK},
		{"чужой профиль", http.MethodGet, "/users/u2", "", u1, http.StatusUnauthorized},
		{"чужой профиль admin", http.MethodGet, "/users/u2", "", admin, http.StatusOK},
		{"профиль анонимно", http.MethodGet, "/users/u1", "", "", http.StatusUnauthorized},
		{"свой отклик", http.MethodPost, "/users/u1/jobs/1", "", u1, http.StatusOK},
		{"отклик за другого", http.MethodPost, "/users/u2/jobs/1", "", u1, http.StatusUnauthorized},
		{"удаление себя", http.MethodDelete, "/users/u1", "", u1, http.StatusOK},
		{"своё имя", http.MethodPatch, "/users/u1", `{"firstName":"New"}`, u1, http.StatusOK},
		{"повышение себя до admin", http.MethodPatch, "/users/u1", `{"isAdmin":true}`, u1, http.StatusUnauthorized},
		{"назначение admin администратором", http.MethodPatch, "/users/u1", `{"isAdmin":true}`, admin, http.StatusOK},

		// Токен с чужой подписью — анонимный запрос
		{"поддельный токен", http.MethodGet, "/users/u1", "", u1 + "x", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("%s %s: status = %d, ожидался %d: %s",
					tt.method, tt.path, rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

// TestRouter_TokenRoundTrip проверяет, что токен из /auth/register принимается guard-ами.
func TestRouter_TokenRoundTrip(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(
		`{"username":"new","password":"password","firstName":"f","lastName":"l","email":"new@email.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d: %s", rec.Code, rec.Body.String())
	}

	// {"token":"<jwt>"}
	raw := strings.TrimSpace(rec.Body.String())
	token := strings.TrimSuffix(strings.TrimPrefix(raw, `{"token":"`), `"}`)

	req = httptest.NewRequest(http.MethodGet, "/users/new", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /users/new: status = %d, ожидался 200", rec.Code)
	}
}

// TestRouter_UnknownRoute проверяет JSON-ответы для неизвестных путей и методов.
func TestRouter_UnknownRoute(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{http.MethodGet, "/nope", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPut, "/companies", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, ожидался %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), `"code":"`+tt.wantCode+`"`) {
				t.Errorf("тело = %s, ожидался код %s", rec.Body.String(), tt.wantCode)
			}
		})
	}
}
