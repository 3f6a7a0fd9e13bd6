package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/repository"
)

// StatsRepository реализует repository.StatsRepository для PostgreSQL
type StatsRepository struct {
	db *pgxpool.Pool
}

// NewStatsRepository создает новый экземпляр StatsRepository
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// TaskStats считает статистику по всем задачам
func (r *StatsRepository) TaskStats(ctx context.Context) (*repository.TaskStats, error) {
	progressQuery := `
		SELECT progress, COUNT(*)
		FROM tasks
		GROUP BY progress
		ORDER BY CASE progress
			WHEN 'TODO' THEN 0 WHEN 'PLANNING' THEN 1 WHEN 'IN_PROGRESS' THEN 2
			WHEN 'FINISHED' THEN 3 WHEN 'OVERDUE' THEN 4 ELSE 5 END
	`
	priorityQuery := `
		SELECT priority, COUNT(*)
		FROM tasks
		GROUP BY priority
		ORDER BY CASE priority
			WHEN 'HIGHEST' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END
	`

	return r.collect(ctx, progressQuery, priorityQuery)
}

// TeamTaskStats считает статистику по задачам команды
func (r *StatsRepository) TeamTaskStats(ctx context.Context, teamID int64) (*repository.TaskStats, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, teamID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrTeamNotFound
	}

	progressQuery := `
		SELECT progress, COUNT(*)
		FROM tasks
		WHERE team_id = $1
		GROUP BY progress
		ORDER BY CASE progress
			WHEN 'TODO' THEN 0 WHEN 'PLANNING' THEN 1 WHEN 'IN_PROGRESS' THEN 2
			WHEN 'FINISHED' THEN 3 WHEN 'OVERDUE' THEN 4 ELSE 5 END
	`
	priorityQuery := `
		SELECT priority, COUNT(*)
		FROM tasks
		WHERE team_id = $1
		GROUP BY priority
		ORDER BY CASE priority
			WHEN 'HIGHEST' THEN 0 WHEN 'HIGH' THEN 1 WHEN 'MEDIUM' THEN 2 ELSE 3 END
	`

	return r.collect(ctx, progressQuery, priorityQuery, teamID)
}

func (r *StatsRepository) collect(ctx context.Context, progressQuery, priorityQuery string, args ...any) (*repository.TaskStats, error) {
	stats := &repository.TaskStats{
		ByProgress: []repository.ProgressCount{},
		ByPriority: []repository.PriorityCount{},
	}

	rows, err := r.db.Query(ctx, progressQuery, args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var pc repository.ProgressCount
		if err := rows.Scan(&pc.Progress, &pc.Count); err != nil {
			rows.Close()
			return nil, err
		}
		stats.ByProgress = append(stats.ByProgress, pc)
		stats.Total += pc.Count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, priorityQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pc repository.PriorityCount
		if err := rows.Scan(&pc.Priority, &pc.Count); err != nil {
			return nil, err
		}
		stats.ByPriority = append(stats.ByPriority, pc)
	}

	return stats, rows.Err()
}
