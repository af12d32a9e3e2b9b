// Пакет repository — слой доступа к данным PostgreSQL для Jobly.
// Все запросы — чистый SQL через pgx, без ORM. Частичные обновления
// и фильтры строятся через sqlfrag, INSERT-запросы пишутся с именованными
// параметрами (:name) и переводятся в $n через go-sqlparams.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mikeschinkel/go-sqlparams"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ключ).
	ErrConflict = errors.New("конфликт — запись уже существует")
	// ErrForeignKey — ссылка на несуществующую запись.
	ErrForeignKey = errors.New("ссылка на несуществующую запись")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isForeignKeyViolation проверяет, является ли ошибка нарушением внешнего ключа.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// postgresParam форматирует позиционный параметр PostgreSQL.
func postgresParam(i int) string {
	return fmt.Sprintf("$%d", i)
}

// bindNamed переводит запрос с именованными параметрами (:title) в
// позиционные ($1) и собирает аргументы в порядке первого появления.
// Повторное использование имени ссылается на тот же $n.
// Отсутствие значения для параметра — ошибка.
func bindNamed(query string, params map[string]any) (string, []any, error) {
	parsed, err := sqlparams.ParseSQL(sqlparams.SQLQuery(query), postgresParam)
	if err != nil {
		return "", nil, fmt.Errorf("ошибка разбора запроса: %w", err)
	}

	names := parsed.Parameters()
	args := make([]any, 0, len(names))
	for _, p := range names {
		v, ok := params[string(p.Name)]
		if !ok {
			return "", nil, fmt.Errorf("не задано значение параметра :%s", p.Name)
		}
		args = append(args, v)
	}

	return string(parsed.SQL), args, nil
}
