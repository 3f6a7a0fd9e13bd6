package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/taskmanager/internal/domain"
)

// JoinRequestRepository реализует repository.JoinRequestRepository для PostgreSQL
type JoinRequestRepository struct {
	db *pgxpool.Pool
}

// NewJoinRequestRepository создает новый экземпляр JoinRequestRepository
func NewJoinRequestRepository(db *pgxpool.Pool) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create создает заявку на вступление
func (r *JoinRequestRepository) Create(ctx context.Context, req *domain.JoinRequest) error {
	query := `
		INSERT INTO join_requests (user_email, team_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, req.UserEmail, req.TeamID).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == uniqueViolation { // заявка на эту пару уже есть
				return domain.ErrDuplicateRequest
			}
			if pgErr.Code == foreignKeyViolation {
				if pgErr.ConstraintName == "join_requests_team_id_fkey" {
					return domain.ErrTeamNotFound
				}
				return domain.ErrUserNotFound
			}
		}
		return err
	}

	return nil
}

// GetByID получает заявку по ID
func (r *JoinRequestRepository) GetByID(ctx context.Context, requestID int64) (*domain.JoinRequest, error) {
	query := `SELECT id, user_email, team_id, created_at FROM join_requests WHERE id = $1`
	return r.get(ctx, query, requestID)
}

// FindByUserAndTeam ищет заявку пользователя в команду
func (r *JoinRequestRepository) FindByUserAndTeam(ctx context.Context, userEmail string, teamID int64) (*domain.JoinRequest, error) {
	query := `SELECT id, user_email, team_id, created_at FROM join_requests WHERE user_email = $1 AND team_id = $2`
	return r.get(ctx, query, userEmail, teamID)
}

// ListByTeam возвращает заявки в команду в порядке поступления
func (r *JoinRequestRepository) ListByTeam(ctx context.Context, teamID int64) ([]*domain.JoinRequest, error) {
	query := `
		SELECT id, user_email, team_id, created_at
		FROM join_requests
		WHERE team_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]*domain.JoinRequest, 0)
	for rows.Next() {
		var req domain.JoinRequest
		if err := rows.Scan(&req.ID, &req.UserEmail, &req.TeamID, &req.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}

	return requests, rows.Err()
}

// Delete удаляет заявку по ID
func (r *JoinRequestRepository) Delete(ctx context.Context, requestID int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM join_requests WHERE id = $1`, requestID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrJoinRequestNotFound
	}

	return nil
}

func (r *JoinRequestRepository) get(ctx context.Context, query string, args ...any) (*domain.JoinRequest, error) {
	var req domain.JoinRequest
	err := r.db.QueryRow(ctx, query, args...).Scan(&req.ID, &req.UserEmail, &req.TeamID, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJoinRequestNotFound
		}
		return nil, err
	}

	return &req, nil
}
