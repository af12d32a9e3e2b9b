// users.go — сервис пользователей: регистрация, проверка пароля, отклики.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/repository"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// UserPatch — частичное обновление пользователя.
// Password передаётся открытым текстом и хешируется перед записью.
type UserPatch struct {
	Password  *string
	FirstName *string
	LastName  *string
	Email     *string
	IsAdmin   *bool
}

// NewUser — данные для регистрации пользователя.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     string
	IsAdmin   bool
}

// UserService — бизнес-логика пользователей.
type UserService struct {
	users      repository.UserRepository
	workFactor int
	logger     *slog.Logger
}

// NewUserService создаёт сервис пользователей.
// workFactor — стоимость bcrypt (4..31).
func NewUserService(users repository.UserRepository, workFactor int, logger *slog.Logger) *UserService {
	return &UserService{
		users:      users,
		workFactor: workFactor,
		logger:     logger.With(slog.String("component", "user_service")),
	}
}

// Register создаёт пользователя. Дублирующийся username — ErrConflict.
func (s *UserService) Register(ctx context.Context, nu NewUser) (*model.User, error) {
	var v validationErrors
	v.checkLength("username", nu.Username, 1, 25)
	v.checkLength("password", nu.Password, 5, 20)
	v.checkLength("firstName", nu.FirstName, 1, 25)
	v.checkLength("lastName", nu.LastName, 1, 25)
	v.checkLength("email", nu.Email, 6, 60)
	if err := v.err(); err != nil {
		return nil, err
	}

	hash, err := s.hash(nu.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, &model.User{
		Username:     nu.Username,
		PasswordHash: hash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Email:        nu.Email,
		IsAdmin:      nu.IsAdmin,
	})
	if err != nil {
		return nil, translateRepoError(err, "пользователь "+nu.Username, "регистрация пользователя")
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("username", created.Username),
		slog.Bool("is_admin", created.IsAdmin),
	)
	return created, nil
}

// Authenticate проверяет пароль пользователя.
// Неизвестный пользователь и неверный пароль неразличимы: ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetWithPassword(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("аутентификация пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("Неверный пароль", slog.String("username", username))
		return nil, ErrInvalidCredentials
	}

	u.PasswordHash = ""
	return u, nil
}

// FindAll возвращает всех пользователей.
func (s *UserService) FindAll(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, translateRepoError(err, "пользователи", "получение пользователей")
	}
	return users, nil
}

// Get возвращает пользователя с идентификаторами вакансий, на которые он откликнулся.
func (s *UserService) Get(ctx context.Context, username string) (*model.User, error) {
	u, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, translateRepoError(err, "пользователь "+username, "получение пользователя")
	}
	return u, nil
}

// Update частично обновляет пользователя. Пустой патч — ErrValidation.
func (s *UserService) Update(ctx context.Context, username string, patch UserPatch) (*model.User, error) {
	var v validationErrors
	if patch.Password != nil {
		v.checkLength("password", *patch.Password, 5, 20)
	}
	if patch.FirstName != nil {
		v.checkLength("firstName", *patch.FirstName, 1, 25)
	}
	if patch.LastName != nil {
		v.checkLength("lastName", *patch.LastName, 1, 25)
	}
	if patch.Email != nil {
		v.checkLength("email", *patch.Email, 6, 60)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	payload, err := s.payload(patch)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, username, payload)
	if err != nil {
		return nil, translateRepoError(err, "пользователь "+username, "обновление пользователя")
	}

	_, passwordChanged := payload.Get("password")
	s.logger.Info("Пользователь обновлён",
		slog.String("username", username),
		slog.Any("fields", payload.Keys()),
		slog.Bool("password_changed", passwordChanged),
	)
	return updated, nil
}

// Remove удаляет пользователя.
func (s *UserService) Remove(ctx context.Context, username string) error {
	if err := s.users.Remove(ctx, username); err != nil {
		return translateRepoError(err, "пользователь "+username, "удаление пользователя")
	}

	s.logger.Info("Пользователь удалён", slog.String("username", username))
	return nil
}

// ApplyToJob записывает отклик пользователя на вакансию.
// Несуществующий пользователь или вакансия — ErrNotFound, повторный отклик — ErrConflict.
func (s *UserService) ApplyToJob(ctx context.Context, username string, jobID int) error {
	err := s.users.ApplyToJob(ctx, username, jobID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrForeignKey):
		return fmt.Errorf("%w: пользователь %s или вакансия %d", ErrNotFound, username, jobID)
	default:
		return translateRepoError(err, fmt.Sprintf("отклик %s на вакансию %d", username, jobID), "отклик на вакансию")
	}

	s.logger.Info("Отклик на вакансию",
		slog.String("username", username),
		slog.Int("job_id", jobID),
	)
	return nil
}

// payload переводит патч в набор полей; пароль хешируется.
func (s *UserService) payload(p UserPatch) (sqlfrag.Payload, error) {
	var out sqlfrag.Payload
	if p.Password != nil {
		hash, err := s.hash(*p.Password)
		if err != nil {
			return nil, err
		}
		out = out.Set("password", hash)
	}
	if p.FirstName != nil {
		out = out.Set("firstName", *p.FirstName)
	}
	if p.LastName != nil {
		out = out.Set("lastName", *p.LastName)
	}
	if p.Email != nil {
		out = out.Set("email", *p.Email)
	}
	if p.IsAdmin != nil {
		out = out.Set("isAdmin", *p.IsAdmin)
	}
	return out, nil
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.workFactor)
	if err != nil {
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}
	return string(hash), nil
}
