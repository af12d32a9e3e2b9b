package model

// Job — вакансия компании (таблица jobs).
type Job struct {
	// ID — serial первичный ключ
	ID int
	// Title — название вакансии
	Title string
	// Salary — зарплата (опционально, >= 0)
	Salary *int
	// Equity — доля в компании, NUMERIC в диапазоне [0, 1].
	// Хранится строкой, чтобы не терять точность при переводе в float.
	Equity *string
	// CompanyHandle — handle компании-владельца
	CompanyHandle string
}
