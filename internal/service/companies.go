// companies.go — сервис компаний.
// Координирует репозитории компаний и вакансий, LRU-кэш карточек и валидацию.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// CompanyPatch — частичное обновление компании. nil — поле не меняется.
type CompanyPatch struct {
	Name         *string
	Description  *string
	NumEmployees *int
	LogoURL      *string
}

// payload переводит патч в набор полей в фиксированном порядке.
func (p CompanyPatch) payload() sqlfrag.Payload {
	var out sqlfrag.Payload
	if p.Name != nil {
		out = out.Set("name", *p.Name)
	}
	if p.Description != nil {
		out = out.Set("description", *p.Description)
	}
	if p.NumEmployees != nil {
		out = out.Set("numEmployees", *p.NumEmployees)
	}
	if p.LogoURL != nil {
		out = out.Set("logoUrl", *p.LogoURL)
	}
	return out
}

// CompanyService — бизнес-логика компаний.
type CompanyService struct {
	companies repository.CompanyRepository
	jobs      repository.JobRepository
	cache     *CompanyCache
	logger    *slog.Logger
}

// NewCompanyService создаёт сервис компаний.
func NewCompanyService(
	companies repository.CompanyRepository,
	jobs repository.JobRepository,
	cache *CompanyCache,
	logger *slog.Logger,
) *CompanyService {
	return &CompanyService{
		companies: companies,
		jobs:      jobs,
		cache:     cache,
		logger:    logger.With(slog.String("component", "company_service")),
	}
}

// Create создаёт компанию. Дублирующийся handle — ErrConflict.
func (s *CompanyService) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	var v validationErrors
	v.checkLength("handle", c.Handle, 1, 25)
	v.checkLength("name", c.Name, 1, 255)
	v.checkNonNegative("numEmployees", c.NumEmployees)
	v.checkURL("logoUrl", c.LogoURL)
	if err := v.err(); err != nil {
		return nil, err
	}

	created, err := s.companies.Create(ctx, c)
	if err != nil {
		return nil, translateRepoError(err, "компания "+c.Handle, "создание компании")
	}

	s.logger.Info("Компания создана", slog.String("handle", created.Handle))
	return created, nil
}

// FindAll возвращает компании по фильтру.
// minEmployees > maxEmployees — ErrValidation.
func (s *CompanyService) FindAll(ctx context.Context, filter repository.CompanyFilter) ([]*model.Company, error) {
	if filter.MinEmployees != nil && filter.MaxEmployees != nil && *filter.MinEmployees > *filter.MaxEmployees {
		return nil, fmt.Errorf("%w: minEmployees не может быть больше maxEmployees", ErrValidation)
	}

	companies, err := s.companies.FindAll(ctx, filter)
	if err != nil {
		return nil, translateRepoError(err, "компании", "поиск компаний")
	}
	return companies, nil
}

// Get возвращает компанию с вакансиями. Сначала ищет в кэше.
func (s *CompanyService) Get(ctx context.Context, handle string) (*model.Company, error) {
	if c, ok := s.cache.Get(handle); ok {
		return c, nil
	}

	c, err := s.companies.Get(ctx, handle)
	if err != nil {
		return nil, translateRepoError(err, "компания "+handle, "получение компании")
	}

	jobs, err := s.jobs.ListByCompany(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("получение вакансий компании: %w", err)
	}
	c.Jobs = jobs

	s.cache.Set(handle, c)
	return c, nil
}

// Update частично обновляет компанию. Пустой патч — ErrValidation.
func (s *CompanyService) Update(ctx context.Context, handle string, patch CompanyPatch) (*model.Company, error) {
	var v validationErrors
	if patch.Name != nil {
		v.checkLength("name", *patch.Name, 1, 255)
	}
	v.checkNonNegative("numEmployees", patch.NumEmployees)
	v.checkURL("logoUrl", patch.LogoURL)
	if err := v.err(); err != nil {
		return nil, err
	}

	updated, err := s.companies.Update(ctx, handle, patch.payload())
	if err != nil {
		return nil, translateRepoError(err, "компания "+handle, "обновление компании")
	}

	s.cache.Delete(handle)
	s.logger.Info("Компания обновлена", slog.String("handle", handle))
	return updated, nil
}

// Remove удаляет компанию вместе с её вакансиями.
func (s *CompanyService) Remove(ctx context.Context, handle string) error {
	if err := s.companies.Remove(ctx, handle); err != nil {
		return translateRepoError(err, "компания "+handle, "удаление компании")
	}

	s.cache.Delete(handle)
	s.logger.Info("Компания удалена", slog.String("handle", handle))
	return nil
}
