// Пакет sqlfrag — построение параметризованных фрагментов SQL (SET и WHERE)
// из частичных наборов полей. Чистые функции: без I/O и состояния.
// Значения никогда не попадают в текст запроса — только в список аргументов.
package sqlfrag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Ошибки построения фрагментов.
var (
	// ErrInvalidInput — некорректные входные данные для построителя.
	ErrInvalidInput = errors.New("некорректные входные данные")
	// ErrNoData — пустой набор полей для обновления.
	ErrNoData = fmt.Errorf("%w: нет данных для обновления", ErrInvalidInput)
	// ErrNoFilters — пустой набор фильтров.
	ErrNoFilters = fmt.Errorf("%w: фильтры не заданы", ErrInvalidInput)
)

// FieldMap — маппинг логического имени поля (API) в имя столбца (БД).
// Ключи, отсутствующие в маппинге, используются как имя столбца без изменений.
type FieldMap map[string]string

// Column возвращает имя столбца для логического поля.
func (m FieldMap) Column(key string) string {
	if col, ok := m[key]; ok && col != "" {
		return col
	}
	return key
}

// Field — пара логическое поле / значение.
type Field struct {
	Key   string
	Value any
}

// Payload — упорядоченный набор полей.
// Порядок элементов определяет порядок фрагментов и номеров $-параметров.
type Payload []Field

// Set добавляет поле в конец набора или заменяет значение существующего
// поля, сохраняя его позицию.
func (p Payload) Set(key string, value any) Payload {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return append(p, Field{Key: key, Value: value})
}

// Get возвращает значение поля по ключу.
func (p Payload) Get(key string) (any, bool) {
	for _, f := range p {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys возвращает ключи в порядке добавления.
func (p Payload) Keys() []string {
	keys := make([]string, len(p))
	for i, f := range p {
		keys[i] = f.Key
	}
	return keys
}

// Fragment — результат построения: текст условия с $1..$n
// и значения, где Values[i-1] соответствует $i.
type Fragment struct {
	Clause string
	Values []any
}

// NextArg возвращает номер следующего свободного $-параметра.
// Используется, когда после фрагмента дописывается собственное условие
// (например, WHERE handle = $n после SET).
func (f Fragment) NextArg() int {
	return len(f.Values) + 1
}

// Empty сообщает, что фрагмент не содержит условий.
func (f Fragment) Empty() bool {
	return f.Clause == ""
}

// Operator — оператор сравнения для фильтра.
type Operator string

// Операторы фильтрации. Границы строгие: > и <.
const (
	OpGreater Operator = ">"
	OpLess    Operator = "<"
	OpILike   Operator = "ILIKE"
)

// filterOperators — фиксированный набор распознаваемых ключей фильтрации.
// Новые измерения фильтра добавляются сюда, а не обобщением алгоритма.
var filterOperators = map[string]Operator{
	// поиск по подстроке (без учёта регистра)
	"nameLike": OpILike,
	"title":    OpILike,
	// нижняя граница
	"minEmployees": OpGreater,
	"minSalary":    OpGreater,
	// верхняя граница
	"maxEmployees": OpLess,
}

// FilterOperator возвращает оператор для ключа фильтра.
// ok=false — ключ не распознан и будет пропущен BuildFilterClause.
func FilterOperator(key string) (op Operator, ok bool) {
	op, ok = filterOperators[key]
	return op, ok
}

// BuildSetClause строит SET-часть UPDATE для частичного обновления.
//
//	{firstName: "Aliya", age: 32}, {firstName: "first_name"}
//	→ `"first_name"=$1, "age"=$2`, ["Aliya", 32]
//
// Пустой payload — ErrNoData.
func BuildSetClause(payload Payload, fields FieldMap) (Fragment, error) {
	if len(payload) == 0 {
		return Fragment{}, ErrNoData
	}

	cols := make([]string, 0, len(payload))
	values := make([]any, 0, len(payload))
	for i, f := range payload {
		cols = append(cols, fmt.Sprintf("%s=$%d", quoteIdent(fields.Column(f.Key)), i+1))
		values = append(values, f.Value)
	}

	return Fragment{
		Clause: strings.Join(cols, ", "),
		Values: values,
	}, nil
}

// BuildFilterClause строит WHERE-условие из распознаваемых ключей фильтра.
//
//	{nameLike: "rick", minEmployees: 225, maxEmployees: 300}
//	→ `WHERE "name" ILIKE $1 AND "num_employees" > $2 AND "num_employees" < $3`,
//	  ["%rick%", 225, 300]
//
// Нераспознанные ключи пропускаются; номер параметра считается по уже
// добавленным условиям, поэтому $-параметры всегда идут подряд.
// Значение для ILIKE оборачивается в %...% только в Values — исходный payload не изменяется.
// Пустой payload — ErrNoFilters. Если ни один ключ не распознан — пустой Fragment.
func BuildFilterClause(payload Payload, fields FieldMap) (Fragment, error) {
	if len(payload) == 0 {
		return Fragment{}, ErrNoFilters
	}

	var conditions []string
	var values []any
	for _, f := range payload {
		op, ok := FilterOperator(f.Key)
		if !ok {
			continue
		}

		value := f.Value
		if op == OpILike {
			value = wrapPattern(f.Value)
		}
		values = append(values, value)

		conditions = append(conditions,
			fmt.Sprintf("%s %s $%d", quoteIdent(fields.Column(f.Key)), op, len(values)))
	}

	if len(conditions) == 0 {
		return Fragment{}, nil
	}

	return Fragment{
		Clause: "WHERE " + strings.Join(conditions, " AND "),
		Values: values,
	}, nil
}

// wrapPattern оборачивает значение в %...% для поиска по подстроке.
func wrapPattern(v any) string {
	if s, ok := v.(string); ok {
		return "%" + s + "%"
	}
	return fmt.Sprintf("%%%v%%", v)
}

// quoteIdent экранирует имя столбца как SQL-идентификатор.
func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
