package repository

import (
	"context"
	"time"

	"github.com/aidar/taskmanager/internal/domain"
)

// UserRepository - справочник пользователей (ключ - email)
type UserRepository interface {
	// Create создает пользователя, ErrUserExists если email занят
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail получает пользователя по email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateProfile обновляет имя и фамилию
	UpdateProfile(ctx context.Context, email, firstName, lastName string) error

	// UpdateRole обновляет глобальную роль
	UpdateRole(ctx context.Context, email string, role domain.Role) error

	// UpdatePassword обновляет хеш пароля
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// TeamRepository - хранилище команд
type TeamRepository interface {
	// Create сохраняет новую команду и заполняет ее ID и Version.
	// ErrJoinCodeTaken если код приглашения уже занят.
	Create(ctx context.Context, team *domain.Team) error

	// GetByID получает команду со всеми участниками
	GetByID(ctx context.Context, teamID int64) (*domain.Team, error)

	// GetByJoinCode получает команду по коду приглашения
	GetByJoinCode(ctx context.Context, code string) (*domain.Team, error)

	// GetByTaskID находит команду, которой принадлежит задача
	GetByTaskID(ctx context.Context, taskID int64) (*domain.Team, error)

	// JoinCodeExists проверяет, занят ли код приглашения
	JoinCodeExists(ctx context.Context, code string) (bool, error)

	// Update сохраняет команду, если ее версия не изменилась с момента чтения.
	// При успехе увеличивает team.Version, иначе возвращает ErrStaleVersion.
	Update(ctx context.Context, team *domain.Team) error
}

// TaskRepository - хранилище задач
type TaskRepository interface {
	// Create сохраняет новую задачу и заполняет ее ID и Version
	Create(ctx context.Context, task *domain.Task) error

	// GetByID получает задачу по ID
	GetByID(ctx context.Context, taskID int64) (*domain.Task, error)

	// Update сохраняет задачу с проверкой версии (см. TeamRepository.Update)
	Update(ctx context.Context, task *domain.Task) error

	// Delete физически удаляет задачу
	Delete(ctx context.Context, taskID int64) error

	// ListByOwner возвращает все задачи пользователя
	ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.Task, error)

	// ListByTeamAndOwner возвращает задачи участника, созданные через команду
	ListByTeamAndOwner(ctx context.Context, teamID int64, ownerEmail string) ([]*domain.Task, error)

	// ListAll возвращает все задачи
	ListAll(ctx context.Context) ([]*domain.Task, error)

	// ListDue возвращает задачи, которые могут стать просроченными к моменту now
	ListDue(ctx context.Context, now time.Time) ([]*domain.Task, error)
}

// JoinRequestRepository - реестр заявок на вступление
type JoinRequestRepository interface {
	// Create сохраняет заявку, ErrDuplicateRequest если заявка на эту пару уже есть
	Create(ctx context.Context, req *domain.JoinRequest) error

	// GetByID получает заявку по ID
	GetByID(ctx context.Context, requestID int64) (*domain.JoinRequest, error)

	// FindByUserAndTeam ищет заявку пользователя в команду
	FindByUserAndTeam(ctx context.Context, userEmail string, teamID int64) (*domain.JoinRequest, error)

	// ListByTeam возвращает заявки в команду, старые первыми
	ListByTeam(ctx context.Context, teamID int64) ([]*domain.JoinRequest, error)

	// Delete удаляет заявку по ID
	Delete(ctx context.Context, requestID int64) error
}

// ProgressCount - число задач в одном состоянии
type ProgressCount struct {
	Progress domain.TaskProgress `json:"progress"`
	Count    int                 `json:"count"`
}

// PriorityCount - число задач с одним приоритетом
type PriorityCount struct {
	Priority domain.TaskPriority `json:"priority"`
	Count    int                 `json:"count"`
}

// TaskStats - агрегированная статистика по набору задач
type TaskStats struct {
	Total      int             `json:"total"`
	ByProgress []ProgressCount `json:"by_progress"`
	ByPriority []PriorityCount `json:"by_priority"`
}

// StatsRepository считает статистику по задачам
type StatsRepository interface {
	// TaskStats считает статистику по всем задачам
	TaskStats(ctx context.Context) (*TaskStats, error)

	// TeamTaskStats считает статистику по задачам команды
	TeamTaskStats(ctx context.Context, teamID int64) (*TaskStats, error)
}
