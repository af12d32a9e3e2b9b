// Пакет model — доменные модели Jobly.
package model

// Company — компания, публикующая вакансии (таблица companies).
type Company struct {
	// Handle — уникальный идентификатор компании (первичный ключ)
	Handle string
	// Name — название компании (уникальное)
	Name string
	// Description — описание компании
	Description string
	// NumEmployees — количество сотрудников (опционально)
	NumEmployees *int
	// LogoURL — URL логотипа (опционально)
	LogoURL *string
	// Jobs — вакансии компании. Заполняется только при получении одной компании.
	Jobs []*Job
}
