package service

import (
	"context"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// --- Mock repositories ---

// mockCompanyRepo — мок CompanyRepository для unit-тестов.
type mockCompanyRepo struct {
	createFn  func(ctx context.Context, c *model.Company) (*model.Company, error)
	findAllFn func(ctx context.Context, filter repository.CompanyFilter) ([]*model.Company, error)
	getFn     func(ctx context.Context, handle string) (*model.Company, error)
	updateFn  func(ctx context.Context, handle string, patch sqlfrag.Payload) (*model.Company, error)
	removeFn  func(ctx context.Context, handle string) error
}

func (m *mockCompanyRepo) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	return c, nil
}

func (m *mockCompanyRepo) FindAll(ctx context.Context, filter repository.CompanyFilter) ([]*model.Company, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockCompanyRepo) Get(ctx context.Context, handle string) (*model.Company, error) {
	if m.getFn != nil {
		return m.getFn(ctx, handle)
	}
	return nil, repository.ErrNotFound
}

func (m *mockCompanyRepo) Update(ctx context.Context, handle string, patch sqlfrag.Payload) (*model.Company, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, handle, patch)
	}
	if _, err := sqlfrag.BuildSetClause(patch, nil); err != nil {
		return nil, err
	}
	return &model.Company{Handle: handle}, nil
}

func (m *mockCompanyRepo) Remove(ctx context.Context, handle string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, handle)
	}
	return nil
}

// mockJobRepo — мок JobRepository для unit-тестов.
type mockJobRepo struct {
	createFn        func(ctx context.Context, j *model.Job) (*model.Job, error)
	findAllFn       func(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error)
	listByCompanyFn func(ctx context.Context, handle string) ([]*model.Job, error)
	getFn           func(ctx context.Context, id int) (*model.Job, error)
	updateFn        func(ctx context.Context, id int, patch sqlfrag.Payload) (*model.Job, error)
	removeFn        func(ctx context.Context, id int) error
}

func (m *mockJobRepo) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	if m.createFn != nil {
		return m.createFn(ctx, j)
	}
	created := *j
	created.ID = 1
	return &created, nil
}

func (m *mockJobRepo) FindAll(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockJobRepo) ListByCompany(ctx context.Context, handle string) ([]*model.Job, error) {
	if m.listByCompanyFn != nil {
		return m.listByCompanyFn(ctx, handle)
	}
	return nil, nil
}

func (m *mockJobRepo) Get(ctx context.Context, id int) (*model.Job, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockJobRepo) Update(ctx context.Context, id int, patch sqlfrag.Payload) (*model.Job, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	if _, err := sqlfrag.BuildSetClause(patch, nil); err != nil {
		return nil, err
	}
	return &model.Job{ID: id}, nil
}

func (m *mockJobRepo) Remove(ctx context.Context, id int) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, id)
	}
	return nil
}

// mockUserRepo — мок UserRepository для unit-тестов.
type mockUserRepo struct {
	createFn          func(ctx context.Context, u *model.User) (*model.User, error)
	getWithPasswordFn func(ctx context.Context, username string) (*model.User, error)
	findAllFn         func(ctx context.Context) ([]*model.User, error)
	getFn             func(ctx context.Context, username string) (*model.User, error)
	updateFn          func(ctx context.Context, username string, patch sqlfrag.Payload) (*model.User, error)
	removeFn          func(ctx context.Context, username string) error
	applyToJobFn      func(ctx context.Context, username string, jobID int) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) (*model.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	created := *u
	created.PasswordHash = ""
	return &created, nil
}

func (m *mockUserRepo) GetWithPassword(ctx context.Context, username string) (*model.User, error) {
	if m.getWithPasswordFn != nil {
		return m.getWithPasswordFn(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepo) Get(ctx context.Context, username string) (*model.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, username)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Update(ctx context.Context, username string, patch sqlfrag.Payload) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, username, patch)
	}
	if _, err := sqlfrag.BuildSetClause(patch, nil); err != nil {
		return nil, err
	}
	return &model.User{Username: username}, nil
}

func (m *mockUserRepo) Remove(ctx context.Context, username string) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, username)
	}
	return nil
}

func (m *mockUserRepo) ApplyToJob(ctx context.Context, username string, jobID int) error {
	if m.applyToJobFn != nil {
		return m.applyToJobFn(ctx, username, jobID)
	}
	return nil
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
