// jobs.go — обработчики /jobs endpoints.
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

// CreateJob — POST /jobs. Доступ: admin.
func (h *APIHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	job, err := h.jobs.Create(r.Context(), &model.Job{
		Title:         req.Title,
		Salary:        req.Salary,
		Equity:        req.Equity,
		CompanyHandle: req.CompanyHandle,
	})
	if err != nil {
		h.writeServiceError(w, err, "создание вакансии")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"job": mapJob(job)})
}

// ListJobs — GET /jobs.
// Фильтры: title, minSalary, hasEquity.
func (h *APIHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	filter, err := parseJobFilter(r.URL.Query())
	if err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	jobs, err := h.jobs.FindAll(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err, "поиск вакансий")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"jobs": mapJobs(jobs)})
}

// GetJob — GET /jobs/{id}.
func (h *APIHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	job, err := h.jobs.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "получение вакансии")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"job": mapJob(job)})
}

// UpdateJob — PATCH /jobs/{id}. Доступ: admin.
func (h *APIHandler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	var req jobUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	job, err := h.jobs.Update(r.Context(), id, service.JobPatch{
		Title:  req.Title,
		Salary: req.Salary,
		Equity: req.Equity,
	})
	if err != nil {
		h.writeServiceError(w, err, "обновление вакансии")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"job": mapJob(job)})
}

// DeleteJob — DELETE /jobs/{id}. Доступ: admin.
func (h *APIHandler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	if err := h.jobs.Remove(r.Context(), id); err != nil {
		h.writeServiceError(w, err, "удаление вакансии")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// jobIDParam извлекает {id} из пути. Некорректный id или id вне INTEGER — 400.
func jobIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		apierrors.ValidationError(w, "id вакансии должен быть 32-битным целым числом")
		return 0, false
	}
	return int(id), true
}

// parseJobFilter разбирает query-параметры фильтра вакансий.
func parseJobFilter(q url.Values) (repository.JobFilter, error) {
	var f repository.JobFilter
	for key := range q {
		value := q.Get(key)
		switch key {
		case "title":
			f.Title = &value
		case "minSalary":
			n, err := parseIntParam(key, value)
			if err != nil {
				return f, err
			}
			f.MinSalary = &n
		case "hasEquity":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return f, fmt.Errorf("%s: ожидается true или false", key)
			}
			f.HasEquity = b
		default:
			return f, fmt.Errorf("неизвестный параметр фильтра: %s", key)
		}
	}
	return f, nil
}
