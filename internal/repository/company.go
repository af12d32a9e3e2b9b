package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/jobly/internal/domain/model"
	"github.com/bigkaa/jobly/internal/sqlfrag"
)

// companyColumns — список столбцов таблицы companies для SELECT-запросов.
const companyColumns = `handle, name, description, num_employees, logo_url`

// companyFields — маппинг полей API компании в столбцы таблицы.
// Используется и для SET, и для WHERE.
var companyFields = sqlfrag.FieldMap{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
	"nameLike":     "name",
	"minEmployees": "num_employees",
	"maxEmployees": "num_employees",
}

// CompanyFilter — параметры поиска компаний.
// Все поля — указатели, nil = фильтр не применяется.
type CompanyFilter struct {
	// NameLike — подстрока названия (без учёта регистра)
	NameLike *string
	// MinEmployees — строго больше
	MinEmployees *int
	// MaxEmployees — строго меньше
	MaxEmployees *int
}

// Payload переводит фильтр в упорядоченный набор полей для sqlfrag.
func (f CompanyFilter) Payload() sqlfrag.Payload {
	var p sqlfrag.Payload
	if f.NameLike != nil {
		p = p.Set("nameLike", *f.NameLike)
	}
	if f.MinEmployees != nil {
		p = p.Set("minEmployees", *f.MinEmployees)
	}
	if f.MaxEmployees != nil {
		p = p.Set("maxEmployees", *f.MaxEmployees)
	}
	return p
}

// CompanyRepository — интерфейс доступа к компаниям.
type CompanyRepository interface {
	// Create создаёт компанию. Дублирующийся handle — ErrConflict.
	Create(ctx context.Context, c *model.Company) (*model.Company, error)
	// FindAll возвращает компании, отсортированные по названию.
	FindAll(ctx context.Context, filter CompanyFilter) ([]*model.Company, error)
	// Get возвращает компанию по handle (без вакансий).
	Get(ctx context.Context, handle string) (*model.Company, error)
	// Update частично обновляет компанию полями patch.
	Update(ctx context.Context, handle string, patch sqlfrag.Payload) (*model.Company, error)
	// Remove удаляет компанию.
	Remove(ctx context.Context, handle string) error
}

// companyRepo — реализация CompanyRepository через pgx.
type companyRepo struct {
	db DBTX
}

// NewCompanyRepository создаёт репозиторий компаний.
func NewCompanyRepository(db DBTX) CompanyRepository {
	return &companyRepo{db: db}
}

func (r *companyRepo) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	query, args, err := bindNamed(`
		INSERT INTO companies (handle, name, description, num_employees, logo_url)
		VALUES (:handle, :name, :description, :numEmployees, :logoUrl)
		RETURNING `+companyColumns,
		map[string]any{
			"handle":       c.Handle,
			"name":         c.Name,
			"description":  c.Description,
			"numEmployees": c.NumEmployees,
			"logoUrl":      c.LogoURL,
		})
	if err != nil {
		return nil, err
	}

	created, err := scanCompany(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: компания %s уже существует", ErrConflict, c.Handle)
		}
		return nil, fmt.Errorf("ошибка создания компании: %w", err)
	}
	return created, nil
}

func (r *companyRepo) FindAll(ctx context.Context, filter CompanyFilter) ([]*model.Company, error) {
	where, err := buildWhere(filter.Payload(), companyFields)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM companies %s ORDER BY name`, companyColumns, where.Clause)

	rows, err := r.db.Query(ctx, query, where.Values...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска компаний: %w", err)
	}
	defer rows.Close()

	var result []*model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования компании: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации результатов: %w", err)
	}
	return result, nil
}

func (r *companyRepo) Get(ctx context.Context, handle string) (*model.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE handle = $1`, companyColumns)

	c, err := scanCompany(r.db.QueryRow(ctx, query, handle))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения компании: %w", err)
	}
	return c, nil
}

func (r *companyRepo) Update(ctx context.Context, handle string, patch sqlfrag.Payload) (*model.Company, error) {
	set, err := sqlfrag.BuildSetClause(patch, companyFields)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`UPDATE companies SET %s WHERE handle = $%d RETURNING %s`,
		set.Clause, set.NextArg(), companyColumns,
	)
	args := append(set.Values, handle)

	c, err := scanCompany(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: компания с таким названием уже существует", ErrConflict)
		}
		return nil, fmt.Errorf("ошибка обновления компании: %w", err)
	}
	return c, nil
}

func (r *companyRepo) Remove(ctx context.Context, handle string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM companies WHERE handle = $1`, handle)
	if err != nil {
		return fmt.Errorf("ошибка удаления компании: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanCompany сканирует строку companyColumns.
func scanCompany(row pgx.Row) (*model.Company, error) {
	c := &model.Company{}
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
		return nil, err
	}
	return c, nil
}

// buildWhere строит WHERE-фрагмент; пустой набор фильтров — пустой фрагмент.
func buildWhere(p sqlfrag.Payload, fields sqlfrag.FieldMap) (sqlfrag.Fragment, error) {
	if len(p) == 0 {
		return sqlfrag.Fragment{}, nil
	}
	return sqlfrag.BuildFilterClause(p, fields)
}
