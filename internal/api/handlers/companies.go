// companies.go — обработчики /companies endpoints.
package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/jobly/internal/api/errors"
	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/service"
)

// CreateCompany — POST /companies. Доступ: admin.
func (h *APIHandler) CreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	company, err := h.companies.Create(r.Context(), &model.Company{
		Handle:       req.Handle,
		Name:         req.Name,
		Description:  req.Description,
		NumEmployees: req.NumEmployees,
		LogoURL:      req.LogoURL,
	})
	if err != nil {
		h.writeServiceError(w, err, "создание компании")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"company": mapCompany(company)})
}

// ListCompanies — GET /companies.
// Фильтры: nameLike, minEmployees, maxEmployees.
func (h *APIHandler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCompanyFilter(r.URL.Query())
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	companies, err := h.companies.FindAll(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err, "поиск компаний")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"companies": mapCompanies(companies)})
}

// GetCompany — GET /companies/{handle}. Включает вакансии компании.
func (h *APIHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Get(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		h.writeServiceError(w, err, "получение компании")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"company": mapCompanyDetail(company)})
}

// UpdateCompany — PATCH /companies/{handle}. Доступ: admin.
func (h *APIHandler) UpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	company, err := h.companies.Update(r.Context(), chi.URLParam(r, "handle"), service.CompanyPatch{
		Name:         req.Name,
		Description:  req.Description,
		NumEmployees: req.NumEmployees,
		LogoURL:      req.LogoURL,
	})
	if err != nil {
		h.writeServiceError(w, err, "обновление компании")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"company": mapCompany(company)})
}

// DeleteCompany — DELETE /companies/{handle}. Доступ: admin.
func (h *APIHandler) DeleteCompany(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	if err := h.companies.Remove(r.Context(), handle); err != nil {
		h.writeServiceError(w, err, "удаление компании")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": handle})
}

// parseCompanyFilter разбирает query-параметры фильтра компаний.
// Неизвестный параметр — ошибка.
func parseCompanyFilter(q url.Values) (repository.CompanyFilter, error) {
	var f repository.CompanyFilter
	for key := range q {
		value := q.Get(key)
		switch key {
		case "nameLike":
			f.NameLike = &value
		case "minEmployees":
			n, err := parseIntParam(key, value)
			if err != nil {
				return f, err
			}
			f.MinEmployees = &n
		case "maxEmployees":
			n, err := parseIntParam(key, value)
			if err != nil {
				return f, err
			}
			f.MaxEmployees = &n
		default:
			return f, fmt.Errorf("неизвестный параметр фильтра: %s", key)
		}
	}
	return f, nil
}

// parseIntParam разбирает целочисленный query-параметр.
// Значения вне диапазона INTEGER отклоняются.
func parseIntParam(key, value string) (int, error) {
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: ожидается 32-битное целое число", key)
	}
	return int(n), nil
}
