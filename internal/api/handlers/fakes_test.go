package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/service"
)

// --- Mock services ---

type fakeCompanyService struct {
	createFn  func(ctx context.Context, c *model.Company) (*model.Company, error)
	findAllFn func(ctx context.Context, filter repository.CompanyFilter) ([]*model.Company, error)
	getFn     func(ctx context.Context, handle string) (*model.Company, error)
	updateFn  func(ctx context.Context, handle string, patch service.CompanyPatch) (*model.Company, error)
	removeFn  func(ctx context.Context, handle string) error
}

func (f *fakeCompanyService) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return c, nil
}

func (f *fakeCompanyService) FindAll(ctx context.Context, filter repository.CompanyFilter) ([]*model.Company, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeCompanyService) Get(ctx context.Context, handle string) (*model.Company, error) {
	if f.getFn != nil {
		return f.getFn(ctx, handle)
	}
	return nil, service.ErrNotFound
}

func (f *fakeCompanyService) Update(ctx context.Context, handle string, patch service.CompanyPatch) (*model.Company, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, handle, patch)
	}
	return &model.Company{Handle: handle}, nil
}

func (f *fakeCompanyService) Remove(ctx context.Context, handle string) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, handle)
	}
	return nil
}

type fakeJobService struct {
	createFn  func(ctx context.Context, j *model.Job) (*model.Job, error)
	findAllFn func(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error)
	getFn     func(ctx context.Context, id int) (*model.Job, error)
	updateFn  func(ctx context.Context, id int, patch service.JobPatch) (*model.Job, error)
	removeFn  func(ctx context.Context, id int) error
}

func (f *fakeJobService) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	if f.createFn != nil {
		return f.createFn(ctx, j)
	}
	created := *j
	created.ID = 1
	return &created, nil
}

func (f *fakeJobService) FindAll(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeJobService) Get(ctx context.Context, id int) (*model.Job, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (f *fakeJobService) Update(ctx context.Context, id int, patch service.JobPatch) (*model.Job, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return &model.Job{ID: id}, nil
}

func (f *fakeJobService) Remove(ctx context.Context, id int) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, id)
	}
	return nil
}

type fakeUserService struct {
	registerFn     func(ctx context.Context, nu service.NewUser) (*model.User, error)
	authenticateFn func(ctx context.Context, username, password string) (*model.User, error)
	findAllFn      func(ctx context.Context) ([]*model.User, error)
	getFn          func(ctx context.Context, username string) (*model.User, error)
	updateFn       func(ctx context.Context, username string, patch service.UserPatch) (*model.User, error)
	removeFn       func(ctx context.Context, username string) error
	applyToJobFn   func(ctx context.Context, username string, jobID int) error
}

func (f *fakeUserService) Register(ctx context.Context, nu service.NewUser) (*model.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, nu)
	}
	return &model.User{Username: nu.Username, IsAdmin: nu.IsAdmin}, nil
}

func (f *fakeUserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if f.authenticateFn != nil {
		return f.authenticateFn(ctx, username, password)
	}
	return nil, service.ErrInvalidCredentials
}

func (f *fakeUserService) FindAll(ctx context.Context) ([]*model.User, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeUserService) Get(ctx context.Context, username string) (*model.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, username)
	}
	return nil, service.ErrNotFound
}

func (f *fakeUserService) Update(ctx context.Context, username string, patch service.UserPatch) (*model.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, username, patch)
	}
	return &model.User{Username: username}, nil
}

func (f *fakeUserService) Remove(ctx context.Context, username string) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, username)
	}
	return nil
}

func (f *fakeUserService) ApplyToJob(ctx context.Context, username string, jobID int) error {
	if f.applyToJobFn != nil {
		return f.applyToJobFn(ctx, username, jobID)
	}
	return nil
}

// fakeTokenIssuer возвращает предсказуемый токен "token-<username>".
type fakeTokenIssuer struct{}

func (fakeTokenIssuer) Issue(u *model.User) (string, error) {
	return "token-" + u.Username, nil
}

// --- Helpers ---

type testServices struct {
	companies *fakeCompanyService
	jobs      *fakeJobService
	users     *fakeUserService
}

func newTestServices() *testServices {
	return &testServices{
		companies: &fakeCompanyService{},
		jobs:      &fakeJobService{},
		users:     &fakeUserService{},
	}
}

// router собирает chi-router с обработчиками без guard-ов:
// авторизация проверяется тестами пакетов middleware и server.
func (s *testServices) router() http.Handler {
	h := NewAPIHandler(NewHealthHandler(nil, nil), s.companies, s.jobs, s.users, fakeTokenIssuer{}, slog.Default())

	r := chi.NewRouter()
	r.Post("/auth/token", h.IssueToken)
	r.Post("/auth/register", h.Register)
	r.Get("/companies", h.ListCompanies)
	r.Post("/companies", h.CreateCompany)
	r.Get("/companies/{handle}", h.GetCompany)
	r.Patch("/companies/{handle}", h.UpdateCompany)
	r.Delete("/companies/{handle}", h.DeleteCompany)
	r.Get("/jobs", h.ListJobs)
	r.Post("/jobs", h.CreateJob)
	r.Get("/jobs/{id}", h.GetJob)
	r.Patch("/jobs/{id}", h.UpdateJob)
	r.Delete("/jobs/{id}", h.DeleteJob)
	r.Get("/users", h.ListUsers)
	r.Post("/users", h.CreateUser)
	r.Get("/users/{username}", h.GetUser)
	r.Patch("/users/{username}", h.UpdateUser)
	r.Delete("/users/{username}", h.DeleteUser)
	r.Post("/users/{username}/jobs/{id}", h.ApplyToJob)
	return r
}

// do выполняет запрос и возвращает recorder.
func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody декодирует JSON-ответ в map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("некорректный JSON ответа %q: %v", rec.Body.String(), err)
	}
	return body
}

// errorCode извлекает error.code из ответа ошибки.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("ответ %q не содержит error", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}
