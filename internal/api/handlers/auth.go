// auth.go — обработчики /auth endpoints: выпуск токена и регистрация.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/jobly/internal/api/errors"
	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/service"
)

// IssueToken — POST /auth/token.
// Проверяет имя пользователя и пароль, возвращает {"token": "..."}.
func (h *APIHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.ValidationError(w, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		apierrors.ValidationError(w, "Необходимо указать username и password")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, err, "аутентификация")
		return
	}

	h.writeToken(w, http.StatusOK, user)
}

// Register — POST /auth/register.
// Создаёт обычного пользователя (не администратора) и возвращает его токен.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
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
	})
	if err != nil {
		h.writeServiceError(w, err, "регистрация")
		return
	}

	h.writeToken(w, http.StatusCreated, user)
}

// writeToken выпускает токен и записывает ответ {"token": "..."}.
func (h *APIHandler) writeToken(w http.ResponseWriter, status int, user *model.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.writeServiceError(w, err, "выпуск токена")
		return
	}

	h.logger.Debug("Токен выпущен", slog.String("username", user.Username))
	writeJSON(w, status, map[string]string{"token": token})
}
