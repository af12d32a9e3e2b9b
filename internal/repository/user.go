package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// userColumns — публичные столбцы таблицы users (без пароля).
const userColumns = `username, first_name, last_name, email, is_admin`

// userFields — маппинг полей API пользователя в столбцы таблицы.
var userFields = sqlfrag.FieldMap{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

// UserRepository — интерфейс доступа к пользователям и откликам.
type UserRepository interface {
	// Create регистрирует пользователя. Дублирующийся username — ErrConflict.
	Create(ctx context.Context, u *model.User) (*model.User, error)
	// GetWithPassword возвращает пользователя вместе с хешем пароля.
	GetWithPassword(ctx context.Context, username string) (*model.User, error)
	// FindAll возвращает всех пользователей, отсортированных по username.
	FindAll(ctx context.Context) ([]*model.User, error)
	// Get возвращает пользователя с ID вакансий, на которые он откликнулся.
	Get(ctx context.Context, username string) (*model.User, error)
	// Update частично обновляет пользователя полями patch.
	Update(ctx context.Context, username string, patch sqlfrag.Payload) (*model.User, error)
	// Remove удаляет пользователя.
	Remove(ctx context.Context, username string) error
	// ApplyToJob записывает отклик пользователя на вакансию.
	// Несуществующий пользователь или вакансия — ErrForeignKey, повторный отклик — ErrConflict.
	ApplyToJob(ctx context.Context, username string, jobID int) error
}

// userRepo — реализация UserRepository через pgx.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) (*model.User, error) {
	query, args, err := bindNamed(`
		INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		VALUES (:username, :password, :firstName, :lastName, :email, :isAdmin)
		RETURNING `+userColumns,
		map[string]any{
			"username":  u.Username,
			"password":  u.PasswordHash,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"email":     u.Email,
			"isAdmin":   u.IsAdmin,
		})
	if err != nil {
		return nil, err
	}

	created, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: пользователь %s уже существует", ErrConflict, u.Username)
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return created, nil
}

func (r *userRepo) GetWithPassword(ctx context.Context, username string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s, password FROM users WHERE username = $1`, userColumns)

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, username).Scan(
		&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin, &u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM users ORDER BY username`, userColumns))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	var result []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

func (r *userRepo) Get(ctx context.Context, username string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)

	u, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT job_id FROM applications WHERE username = $1 ORDER BY job_id`, username)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения откликов: %w", err)
	}
	jobs, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования откликов: %w", err)
	}
	u.Jobs = jobs

	return u, nil
}

func (r *userRepo) Update(ctx context.Context, username string, patch sqlfrag.Payload) (*model.User, error) {
	set, err := sqlfrag.BuildSetClause(patch, userFields)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE username = $%d RETURNING %s`,
		set.Clause, set.NextArg(), userColumns,
	)
	args := append(set.Values, username)

	u, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) Remove(ctx context.Context, username string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepo) ApplyToJob(ctx context.Context, username string, jobID int) error {
	query, args, err := bindNamed(
		`INSERT INTO applications (username, job_id) VALUES (:username, :jobId)`,
		map[string]any{"username": username, "jobId": jobID},
	)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: пользователь %s или вакансия %d", ErrForeignKey, username, jobID)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: отклик уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания отклика: %w", err)
	}
	return nil
}

// scanUser сканирует строку userColumns.
func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
		return nil, err
	}
	return u, nil
}
