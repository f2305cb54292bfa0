package entities

// User и Product - снапшоты ответов внешних сервисов.
// Не сохраняются как источник правды, актуальны только на момент вызова.
type User struct {
	ID    int64
	Name  string
	Email string
	Phone string
}

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       float64
	Stock       int
	Category    string
}
