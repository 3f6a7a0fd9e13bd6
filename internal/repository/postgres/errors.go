package postgres

// Коды ошибок PostgreSQL, которые переводятся в доменные ошибки
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)
