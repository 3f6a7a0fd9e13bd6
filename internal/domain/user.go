package domain

// Role - глобальная роль пользователя (не связана с ролью в команде)
type Role string

// Возможные глобальные роли
const (
	RoleUser    Role = "USER"    // Обычный пользователь
	RoleSupport Role = "SUPPORT" // Поддержка: видит и правит чужие задачи
	RoleAdmin   Role = "ADMIN"   // Администратор: вдобавок меняет глобальные роли
)

// Valid проверяет, что роль входит в список известных
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSupport, RoleAdmin:
		return true
	}
	return false
}

// IsElevated возвращает true для ролей с правами на чужие задачи
func (r Role) IsElevated() bool {
	return r == RoleSupport || r == RoleAdmin
}

// User представляет пользователя. Email - уникальный ключ.
// Задачи пользователя не хранятся в записи, а выбираются по OwnerEmail.
type User struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}

// IsElevated возвращает true, если у пользователя глобальная роль SUPPORT или ADMIN
func (u *User) IsElevated() bool {
	return u != nil && u.Role.IsElevated()
}
