// users.go — обработчики /users endpoints.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/jobly/internal/api/errors"
	"github.com/bigkaa/jobly/internal/api/middleware"
	"github.com/bigkaa/jobly/internal/service"
)

// CreateUser — POST /users. Доступ: admin.
// В отличие от регистрации позволяет создать администратора.
// Ответ содержит пользователя и его токен.
func (h *APIHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), service.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     string(req.Email),
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		h.writeServiceError(w, err, "создание пользователя")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.writeServiceError(w, err, "выпуск токена")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": mapUser(user), "token": token})
}

// ListUsers — GET /users. Доступ: admin.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.FindAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "получение пользователей")
		return
	}

	items := make([]*userResponse, len(users))
	for i, u := range users {
		items[i] = mapUser(u)
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": items})
}

// GetUser — GET /users/{username}. Доступ: сам пользователь или admin.
func (h *APIHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeServiceError(w, err, "получение пользователя")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": mapUserDetail(user)})
}

// UpdateUser — PATCH /users/{username}. Доступ: сам пользователь или admin.
// Поле isAdmin принимается только от администратора.
func (h *APIHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	if req.IsAdmin != nil && !middleware.IsAdmin(middleware.IdentityFromContext(r.Context())) {
		h.logger.Warn("Попытка изменить isAdmin без прав администратора",
			slog.String("username", middleware.UsernameFromContext(r.Context())),
			slog.String("target", chi.URLParam(r, "username")),
		)
		apierrors.Unauthorized(w, "Изменять isAdmin может только администратор")
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "username"), service.UserPatch{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     emailPtr(req.Email),
		IsAdmin:   req.IsAdmin,
	})
	if err != nil {
		h.writeServiceError(w, err, "обновление пользователя")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": mapUser(user)})
}

// DeleteUser — DELETE /users/{username}. Доступ: сам пользователь или admin.
func (h *APIHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if err := h.users.Remove(r.Context(), username); err != nil {
		h.writeServiceError(w, err, "удаление пользователя")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deleted": username})
}

// ApplyToJob — POST /users/{username}/jobs/{id}. Доступ: сам пользователь или admin.
func (h *APIHandler) ApplyToJob(w http.ResponseWriter, r *http.Request) {
	id, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	if err := h.users.ApplyToJob(r.Context(), chi.URLParam(r, "username"), id); err != nil {
		h.writeServiceError(w, err, "отклик на вакансию")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"applied": id})
}
