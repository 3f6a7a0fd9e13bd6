package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidar/taskmanager/internal/domain"
)

// TeamRepository реализует repository.TeamRepository для PostgreSQL.
// Участники хранятся в team_members, флаг is_admin отмечает администраторов.
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository создает новый экземпляр TeamRepository
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

const teamColumns = `id, name, description, type, join_code, owner_email, number_of_members, version`

// Create создает новую команду вместе с ее участниками
func (r *TeamRepository) Create(ctx context.Context, team *domain.Team) error {
	// Start transaction
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx) // Ignore error as it will fail if transaction was committed
	}()

	query := `
		INSERT INTO teams (name, description, type, join_code, owner_email, number_of_members)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version
	`

	err = tx.QueryRow(ctx, query,
		team.Name, team.Description, team.Type, team.JoinCode, team.Owner, team.NumberOfMembers,
	).Scan(&team.ID, &team.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == uniqueViolation {
				return domain.ErrJoinCodeTaken
			}
			if pgErr.Code == foreignKeyViolation {
				return domain.ErrUserNotFound
			}
		}
		return err
	}

	if err := syncMembers(ctx, tx, team); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID получает команду со всеми участниками
func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return r.get(ctx, query, teamID)
}

// GetByJoinCode получает команду по коду приглашения
func (r *TeamRepository) GetByJoinCode(ctx context.Context, code string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE join_code = $1`

	team, err := r.get(ctx, query, code)
	if errors.Is(err, domain.ErrTeamNotFound) {
		return nil, domain.ErrInvalidJoinCode
	}
	return team, err
}

// GetByTaskID находит команду, через которую создана задача
func (r *TeamRepository) GetByTaskID(ctx context.Context, taskID int64) (*domain.Team, error) {
	query := `
		SELECT t.id, t.name, t.description, t.type, t.join_code, t.owner_email, t.number_of_members, t.version
		FROM teams t
		JOIN tasks task ON task.team_id = t.id
		WHERE task.id = $1
	`
	return r.get(ctx, query, taskID)
}

// JoinCodeExists проверяет, занят ли код приглашения
func (r *TeamRepository) JoinCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM teams WHERE join_code = $1)`

	var exists bool
	err := r.db.QueryRow(ctx, query, code).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	return exists, nil
}

// Update сохраняет команду с проверкой версии
func (r *TeamRepository) Update(ctx context.Context, team *domain.Team) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `
		UPDATE teams
		SET name = $1, description = $2, type = $3, join_code = $4,
		    number_of_members = $5, version = version + 1, updated_at = NOW()
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	var newVersion int64
	err = tx.QueryRow(ctx, query,
		team.Name, team.Description, team.Type, team.JoinCode, team.NumberOfMembers, team.ID, team.Version,
	).Scan(&newVersion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Отличаем удаленную команду от параллельного изменения
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM teams WHERE id = $1)`, team.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return domain.ErrTeamNotFound
			}
			return domain.ErrStaleVersion
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrJoinCodeTaken
		}
		return err
	}

	if err := syncMembers(ctx, tx, team); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	team.Version = newVersion
	return nil
}

// get читает строку команды и ее участников
func (r *TeamRepository) get(ctx context.Context, query string, arg any) (*domain.Team, error) {
	var team domain.Team
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.Type,
		&team.JoinCode,
		&team.Owner,
		&team.NumberOfMembers,
		&team.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}

	membersQuery := `
		SELECT user_email, is_admin
		FROM team_members
		WHERE team_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, membersQuery, team.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	team.Members = []string{}
	team.Admins = []string{}
	for rows.Next() {
		var (
			email   string
			isAdmin bool
		)
		if err := rows.Scan(&email, &isAdmin); err != nil {
			return nil, err
		}
		team.Members = append(team.Members, email)
		if isAdmin {
			team.Admins = append(team.Admins, email)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &team, nil
}

// syncMembers приводит team_members к составу team.Members/team.Admins.
// Уже существующие строки сохраняют свой id, поэтому порядок вступления не теряется.
func syncMembers(ctx context.Context, tx pgx.Tx, team *domain.Team) error {
	_, err := tx.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND NOT (user_email = ANY($2))`,
		team.ID, team.Members,
	)
	if err != nil {
		return err
	}

	upsert := `
		INSERT INTO team_members (team_id, user_email, is_admin)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id, user_email) DO UPDATE
		SET is_admin = EXCLUDED.is_admin
	`
	for _, member := range team.Members {
		if _, err := tx.Exec(ctx, upsert, team.ID, member, team.IsAdmin(member)); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return domain.ErrUserNotFound
			}
			return err
		}
	}

	return nil
}
