package domain

import "errors"

// Виды ошибок. Каждая конкретная доменная ошибка относится ровно к одному виду,
// поэтому errors.Is(err, ErrNotFound) работает для любой ошибки "не найдено".
var (
	// ErrNotFound возвращается когда ресурс действительно не существует
	ErrNotFound = errors.New("resource not found")

	// ErrNoPermission возвращается когда ресурс существует, но у пользователя нет прав
	ErrNoPermission = errors.New("no permission")

	// ErrAlreadyExists возвращается при повторном создании существующей сущности
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict возвращается при конфликте состояния (дубликат заявки, устаревшая версия)
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument возвращается при некорректных входных данных
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthorized возвращается при неудачной аутентификации
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")
)

// kindError - конкретная ошибка, привязанная к одному из видов выше
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Конкретные доменные ошибки
var (
	ErrUserNotFound        = newError(ErrNotFound, "user not found")
	ErrTeamNotFound        = newError(ErrNotFound, "team not found")
	ErrTaskNotFound        = newError(ErrNotFound, "task not found")
	ErrJoinRequestNotFound = newError(ErrNotFound, "join request not found")
	ErrInvalidJoinCode     = newError(ErrNotFound, "join code is invalid")

	// ErrNotTeamMember - целевой пользователь не состоит в команде
	ErrNotTeamMember = newError(ErrNotFound, "user is not a member of this team")

	// ErrNotTeamAdmin - действующий пользователь не администратор команды
	ErrNotTeamAdmin = newError(ErrNoPermission, "only team admins can do this")

	// ErrNotTeamOwner - действие доступно только владельцу команды
	ErrNotTeamOwner = newError(ErrNoPermission, "only the team owner can do this")

	// ErrOwnerProtected - владельца нельзя удалить, понизить или повысить
	ErrOwnerProtected = newError(ErrNoPermission, "team owner cannot be removed or have their role changed")

	// ErrAdminProtected - администратор может удалить только владелец
	ErrAdminProtected = newError(ErrNoPermission, "only the team owner can remove an admin")

	// ErrTaskAccessDenied - нет прав на действия с задачей
	ErrTaskAccessDenied = newError(ErrNoPermission, "no permission to act on this task")

	// ErrNotElevated - требуется глобальная роль SUPPORT или ADMIN
	ErrNotElevated = newError(ErrNoPermission, "elevated role required")

	// ErrNotGlobalAdmin - требуется глобальная роль ADMIN
	ErrNotGlobalAdmin = newError(ErrNoPermission, "admin role required")

	ErrAlreadyMember = newError(ErrAlreadyExists, "user is already a member of this team")
	ErrUserExists    = newError(ErrAlreadyExists, "user already exists")
	ErrJoinCodeTaken = newError(ErrAlreadyExists, "join code is already taken")

	// ErrDuplicateRequest - заявка на вступление уже существует
	ErrDuplicateRequest = newError(ErrConflict, "join request already exists")

	// ErrStaleVersion - запись была изменена другим запросом
	ErrStaleVersion = newError(ErrConflict, "record was modified concurrently")

	// ErrJoinCodeExhausted - не удалось подобрать свободный код приглашения
	ErrJoinCodeExhausted = newError(ErrConflict, "could not generate a unique join code")

	ErrInvalidPriority      = newError(ErrInvalidArgument, "invalid task priority")
	ErrInvalidProgress      = newError(ErrInvalidArgument, "invalid task progress")
	ErrInvalidTeamType      = newError(ErrInvalidArgument, "invalid team type")
	ErrInvalidTeamRole      = newError(ErrInvalidArgument, "invalid team role")
	ErrInvalidRole          = newError(ErrInvalidArgument, "invalid user role")
	ErrInvalidTimeWindow    = newError(ErrInvalidArgument, "task must end after it starts")
	ErrWrongPassword        = newError(ErrInvalidArgument, "old password is incorrect")
	ErrPasswordNotConfirmed = newError(ErrInvalidArgument, "new password is not confirmed")
)

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок API
const (
	CodeNotFound        ErrorCode = "NOT_FOUND"        // Ресурс не найден
	CodeNoPermission    ErrorCode = "NO_PERMISSION"    // Нет прав
	CodeAlreadyExists   ErrorCode = "ALREADY_EXISTS"   // Сущность уже существует
	CodeConflict        ErrorCode = "CONFLICT"         // Конфликт состояния
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT" // Некорректные данные
	CodeUnauthorized    ErrorCode = "UNAUTHORIZED"     // Не авторизован
	CodeInternal        ErrorCode = "INTERNAL_ERROR"   // Непредвиденная ошибка
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrNoPermission):
		return CodeNoPermission
	case errors.Is(err, ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrConflict):
		return CodeConflict
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return CodeUnauthorized
	default:
		return CodeInternal
	}
}
