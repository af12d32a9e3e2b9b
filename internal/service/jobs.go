// jobs.go — сервис вакансий.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// JobPatch — частичное обновление вакансии.
// id и companyHandle не изменяются.
type JobPatch struct {
	Title  *string
	Salary *int
	Equity *string
}

// payload переводит патч в набор полей в фиксированном порядке.
func (p JobPatch) payload() sqlfrag.Payload {
	var out sqlfrag.Payload
	if p.Title != nil {
		out = out.Set("title", *p.Title)
	}
	if p.Salary != nil {
		out = out.Set("salary", *p.Salary)
	}
	if p.Equity != nil {
		out = out.Set("equity", *p.Equity)
	}
	return out
}

// JobService — бизнес-логика вакансий.
type JobService struct {
	jobs   repository.JobRepository
	cache  *CompanyCache
	logger *slog.Logger
}

// NewJobService создаёт сервис вакансий.
// cache — кэш карточек компаний: вакансии входят в карточку, поэтому
// изменения вакансий инвалидируют соответствующие записи.
func NewJobService(jobs repository.JobRepository, cache *CompanyCache, logger *slog.Logger) *JobService {
	return &JobService{
		jobs:   jobs,
		cache:  cache,
		logger: logger.With(slog.String("component", "job_service")),
	}
}

// Create создаёт вакансию. Несуществующая компания — ErrValidation.
func (s *JobService) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	var v validationErrors
	v.checkLength("title", j.Title, 1, 255)
	v.checkNonNegative("salary", j.Salary)
	v.checkEquity("equity", j.Equity)
	v.checkLength("companyHandle", j.CompanyHandle, 1, 25)
	if err := v.err(); err != nil {
		return nil, err
	}

	created, err := s.jobs.Create(ctx, j)
	if err != nil {
		return nil, translateRepoError(err, "вакансия", "создание вакансии")
	}

	s.cache.Delete(created.CompanyHandle)
	s.logger.Info("Вакансия создана",
		slog.Int("id", created.ID),
		slog.String("company", created.CompanyHandle),
	)
	return created, nil
}

// FindAll возвращает вакансии по фильтру.
func (s *JobService) FindAll(ctx context.Context, filter repository.JobFilter) ([]*model.Job, error) {
	if filter.MinSalary != nil && *filter.MinSalary < 0 {
		return nil, fmt.Errorf("%w: minSalary должен быть >= 0", ErrValidation)
	}

	jobs, err := s.jobs.FindAll(ctx, filter)
	if err != nil {
		return nil, translateRepoError(err, "вакансии", "поиск вакансий")
	}
	return jobs, nil
}

// Get возвращает вакансию по id.
func (s *JobService) Get(ctx context.Context, id int) (*model.Job, error) {
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, fmt.Sprintf("вакансия %d", id), "получение вакансии")
	}
	return j, nil
}

// Update частично обновляет вакансию. Пустой патч — ErrValidation.
func (s *JobService) Update(ctx context.Context, id int, patch JobPatch) (*model.Job, error) {
	var v validationErrors
	if patch.Title != nil {
		v.checkLength("title", *patch.Title, 1, 255)
	}
	v.checkNonNegative("salary", patch.Salary)
	v.checkEquity("equity", patch.Equity)
	if err := v.err(); err != nil {
		return nil, err
	}

	updated, err := s.jobs.Update(ctx, id, patch.payload())
	if err != nil {
		return nil, translateRepoError(err, fmt.Sprintf("вакансия %d", id), "обновление вакансии")
	}

	s.cache.Delete(updated.CompanyHandle)
	s.logger.Info("Вакансия обновлена", slog.Int("id", id))
	return updated, nil
}

// Remove удаляет вакансию.
func (s *JobService) Remove(ctx context.Context, id int) error {
	if err := s.jobs.Remove(ctx, id); err != nil {
		return translateRepoError(err, fmt.Sprintf("вакансия %d", id), "удаление вакансии")
	}

	// handle компании после удаления неизвестен
	s.cache.Purge()
	s.logger.Info("Вакансия удалена", slog.Int("id", id))
	return nil
}
