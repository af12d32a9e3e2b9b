package model

// User — пользователь Jobly (таблица users).
type User struct {
	// Username — уникальное имя пользователя (первичный ключ)
	Username string
	// PasswordHash — bcrypt-хеш пароля. Никогда не отдаётся наружу.
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	// IsAdmin — флаг администратора
	IsAdmin bool
	// Jobs — ID вакансий, на которые пользователь откликнулся.
	// Заполняется только при получении одного пользователя.
	Jobs []int
}
