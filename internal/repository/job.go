package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// jobColumns — список столбцов таблицы jobs для SELECT/RETURNING.
// equity читается как текст: NUMERIC без потери точности.
const jobColumns = `id, title, salary, equity::text, company_handle`

// jobFields — маппинг полей API вакансии в столбцы таблицы.
var jobFields = sqlfrag.FieldMap{
	"title":         "title",
	"minSalary":     "salary",
	"companyHandle": "company_handle",
}

// equityCondition — условие фильтра hasEquity (без параметров).
const equityCondition = `equity > 0`

// JobFilter — параметры поиска вакансий.
type JobFilter struct {
	// Title — подстрока названия (без учёта регистра)
	Title *string
	// MinSalary — строго больше
	MinSalary *int
	// HasEquity — только вакансии с ненулевой долей
	HasEquity bool
}

// Payload переводит параметризуемую часть фильтра в набор полей для sqlfrag.
// HasEquity не имеет значения и добавляется к условию отдельно.
func (f JobFilter) Payload() sqlfrag.Payload {
	var p sqlfrag.Payload
	if f.Title != nil {
		p = p.Set("title", *f.Title)
	}
	if f.MinSalary != nil {
		p = p.Set("minSalary", *f.MinSalary)
	}
	return p
}

// JobRepository — интерфейс доступа к вакансиям.
type JobRepository interface {
	// Create создаёт вакансию. Несуществующая компания — ErrForeignKey.
	Create(ctx context.Context, j *model.Job) (*model.Job, error)
	// FindAll возвращает вакансии, отсортированные по названию.
	FindAll(ctx context.Context, filter JobFilter) ([]*model.Job, error)
	// ListByCompany возвращает вакансии компании, отсортированные по id.
	ListByCompany(ctx context.Context, handle string) ([]*model.Job, error)
	// Get возвращает вакансию по id.
	Get(ctx context.Context, id int) (*model.Job, error)
	// Update частично обновляет вакансию полями patch.
	Update(ctx context.Context, id int, patch sqlfrag.Payload) (*model.Job, error)
	// Remove удаляет вакансию.
	Remove(ctx context.Context, id int) error
}

// jobRepo — реализация JobRepository через pgx.
type jobRepo struct {
	db DBTX
}

// NewJobRepository создаёт репозиторий вакансий.
func NewJobRepository(db DBTX) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, j *model.Job) (*model.Job, error) {
	query, args, err := bindNamed(`
		INSERT INTO jobs (title, salary, equity, company_handle)
		VALUES (:title, :salary, :equity, :companyHandle)
		RETURNING `+jobColumns,
		map[string]any{
			"title":         j.Title,
			"salary":        j.Salary,
			"equity":        optionalString(j.Equity),
			"companyHandle": j.CompanyHandle,
		})
	if err != nil {
		return nil, err
	}

	created, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: компания %s", ErrForeignKey, j.CompanyHandle)
		}
		return nil, fmt.Errorf("ошибка создания вакансии: %w", err)
	}
	return created, nil
}

func (r *jobRepo) FindAll(ctx context.Context, filter JobFilter) ([]*model.Job, error) {
	where, err := buildWhere(filter.Payload(), jobFields)
	if err != nil {
		return nil, err
	}

	clause := where.Clause
	if filter.HasEquity {
		if where.Empty() {
			clause = "WHERE " + equityCondition
		} else {
			clause += " AND " + equityCondition
		}
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs %s ORDER BY title, id`, jobColumns, clause)
	return r.queryJobs(ctx, query, where.Values...)
}

func (r *jobRepo) ListByCompany(ctx context.Context, handle string) ([]*model.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE company_handle = $1 ORDER BY id`, jobColumns)
	return r.queryJobs(ctx, query, handle)
}

func (r *jobRepo) Get(ctx context.Context, id int) (*model.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns)

	j, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения вакансии: %w", err)
	}
	return j, nil
}

func (r *jobRepo) Update(ctx context.Context, id int, patch sqlfrag.Payload) (*model.Job, error) {
	set, err := sqlfrag.BuildSetClause(patch, jobFields)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`UPDATE jobs SET %s WHERE id = $%d RETURNING %s`,
		set.Clause, set.NextArg(), jobColumns,
	)
	args := append(set.Values, id)

	j, err := scanJob(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления вакансии: %w", err)
	}
	return j, nil
}

func (r *jobRepo) Remove(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления вакансии: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// queryJobs выполняет SELECT jobColumns и сканирует все строки.
func (r *jobRepo) queryJobs(ctx context.Context, query string, args ...any) ([]*model.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска вакансий: %w", err)
	}
	defer rows.Close()

	var result []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования вакансии: %w", err)
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

// scanJob сканирует строку jobColumns.
func scanJob(row pgx.Row) (*model.Job, error) {
	j := &model.Job{}
	if err := row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
		return nil, err
	}
	return j, nil
}

// optionalString разыменовывает указатель; nil — SQL NULL.
// Строка передаётся в текстовом формате, PostgreSQL сам приводит её к NUMERIC.
func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
