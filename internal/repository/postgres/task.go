package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/taskmanager/internal/domain"
)

// TaskRepository реализует repository.TaskRepository для PostgreSQL
type TaskRepository struct {
	db *pgxpool.Pool
}

// NewTaskRepository создает новый экземпляр TaskRepository
func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, name, description, from_at, to_at, priority, progress, owner_email, team_id, version`

// Create создает новую задачу
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (name, description, from_at, to_at, priority, progress, owner_email, team_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version
	`

	err := r.db.QueryRow(ctx, query,
		task.Name, task.Description, task.From, task.To, task.Priority, task.Progress, task.OwnerEmail, task.TeamID,
	).Scan(&task.ID, &task.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			if pgErr.ConstraintName == "tasks_team_id_fkey" {
				return domain.ErrTeamNotFound
			}
			return domain.ErrUserNotFound
		}
		return err
	}

	return nil
}

// GetByID получает задачу по ID
func (r *TaskRepository) GetByID(ctx context.Context, taskID int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.QueryRow(ctx, query, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// Update сохраняет задачу, если ее версия не изменилась
func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET name = $1, description = $2, from_at = $3, to_at = $4, priority = $5, progress = $6,
		    owner_email = $7, team_id = $8, version = version + 1, updated_at = NOW()
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	var newVersion int64
	err := r.db.QueryRow(ctx, query,
		task.Name, task.Description, task.From, task.To, task.Priority, task.Progress,
		task.OwnerEmail, task.TeamID, task.ID, task.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, task.ID); getErr != nil {
				return getErr
			}
			return domain.ErrStaleVersion
		}
		return err
	}

	task.Version = newVersion
	return nil
}

// Delete физически удаляет задачу
func (r *TaskRepository) Delete(ctx context.Context, taskID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// ListByOwner возвращает все задачи пользователя
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_email = $1 ORDER BY id`
	return r.list(ctx, query, ownerEmail)
}

// ListByTeamAndOwner возвращает задачи участника, созданные через команду
func (r *TaskRepository) ListByTeamAndOwner(ctx context.Context, teamID int64, ownerEmail string) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE team_id = $1 AND owner_email = $2 ORDER BY id`
	return r.list(ctx, query, teamID, ownerEmail)
}

// ListAll возвращает все задачи
func (r *TaskRepository) ListAll(ctx context.Context) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY id`
	return r.list(ctx, query)
}

// ListDue возвращает незавершенные задачи со сроком не позже now
func (r *TaskRepository) ListDue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE to_at <= $1 AND progress NOT IN ('FINISHED', 'OVERDUE', 'CLOSED')
		ORDER BY id
	`
	return r.list(ctx, query, now)
}

func (r *TaskRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		&task.From,
		&task.To,
		&task.Priority,
		&task.Progress,
		&task.OwnerEmail,
		&task.TeamID,
		&task.Version,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
