// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"

	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidCredentials — неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
)

// translateRepoError переводит ошибку репозитория в ошибку сервисного слоя.
// subject — описание ресурса для сообщения ("компания c1"), op — операция
// для обёртки прочих (инфраструктурных) ошибок.
func translateRepoError(err error, subject, op string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, subject)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s", ErrConflict, subject)
	case errors.Is(err, repository.ErrForeignKey), errors.Is(err, sqlfrag.ErrInvalidInput):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
