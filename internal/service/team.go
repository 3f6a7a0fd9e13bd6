package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/permission"
	"github.com/aidar/taskmanager/internal/repository"
)

// JoinOutcome reports what joining by code did
type JoinOutcome string

// Possible join outcomes
const (
	JoinOutcomeJoined    JoinOutcome = "joined"    // caller is now a member
	JoinOutcomeRequested JoinOutcome = "requested" // a join request awaits an admin
)

// createAttempts bounds retries when another team grabs the drawn code
// between the availability check and the insert.
const createAttempts = 3

// TeamInput holds the user-editable team fields
type TeamInput struct {
	Name        string
	Description string
	Type        domain.TeamType
}

// JoinRequestAuthorizer decides whether actor may delete req.
// A nil authorizer deletes unconditionally.
type JoinRequestAuthorizer func(actor *domain.User, team *domain.Team, req *domain.JoinRequest) error

// TeamService manages team lifecycle: creation, join codes, join requests and membership
type TeamService struct {
	teamRepo    repository.TeamRepository
	userRepo    repository.UserRepository
	requestRepo repository.JoinRequestRepository
	codes       *JoinCodeGenerator
	logger      *slog.Logger
}

// NewTeamService creates a new TeamService
func NewTeamService(
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	requestRepo repository.JoinRequestRepository,
	codes *JoinCodeGenerator,
	logger *slog.Logger,
) *TeamService {
	return &TeamService{
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		codes:       codes,
		logger:      logger,
	}
}

// CreateTeam creates a team owned by the caller with a freshly drawn join code
func (s *TeamService) CreateTeam(ctx context.Context, in TeamInput, actingEmail string) (*domain.Team, error) {
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidTeamType
	}

	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(ctx, s.teamRepo.JoinCodeExists)
		if err != nil {
			return nil, err
		}

		team := domain.NewTeam(in.Name, in.Description, in.Type, actor.Email, code)
		err = s.teamRepo.Create(ctx, team)
		if errors.Is(err, domain.ErrJoinCodeTaken) && attempt < createAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.logger.Info("team created", "team_id", team.ID, "owner", team.Owner, "type", team.Type)
		return team, nil
	}
}

// GetTeam returns a team to its members and to elevated users
func (s *TeamService) GetTeam(ctx context.Context, teamID int64, actingEmail string) (*domain.Team, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	if err := permission.CanViewTeam(actor, team); err != nil {
		return nil, err
	}
	return team, nil
}

// EditTeam changes name, description and type. Team admins only.
func (s *TeamService) EditTeam(ctx context.Context, teamID int64, in TeamInput, actingEmail string) (*domain.Team, error) {
	if !in.Type.Valid() {
		return nil, domain.ErrInvalidTeamType
	}

	actor, team, err := s.actorAndTeam(ctx, actingEmail, teamID)
	if err != nil {
		return nil, err
	}

	if err := permission.CanEditTeam(actor, team); err != nil {
		return nil, err
	}

	team.Name = in.Name
	team.Description = in.Description
	team.Type = in.Type

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

// JoinByCode adds the caller to a public team or files a join request for a private one
func (s *TeamService) JoinByCode(ctx context.Context, code, actingEmail string) (JoinOutcome, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return "", err
	}

	team, err := s.teamRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return "", err
	}

	if team.IsMember(actor.Email) {
		return "", domain.ErrAlreadyMember
	}

	_, err = s.requestRepo.FindByUserAndTeam(ctx, actor.Email, team.ID)
	switch {
	case err == nil:
		return "", domain.ErrDuplicateRequest
	case !errors.Is(err, domain.ErrNotFound):
		return "", err
	}

	switch team.Type {
	case domain.TeamPublic:
		// Public teams admit on behalf of the owner
		if err := s.AddMember(ctx, code, actor.Email, team.Owner); err != nil {
			return "", err
		}
		return JoinOutcomeJoined, nil

	case domain.TeamPrivate:
		req := &domain.JoinRequest{UserEmail: actor.Email, TeamID: team.ID}
		if err := s.requestRepo.Create(ctx, req); err != nil {
			return "", err
		}
		s.logger.Info("join request created", "team_id", team.ID, "user", actor.Email, "request_id", req.ID)
		return JoinOutcomeRequested, nil

	default:
		return "", domain.ErrInvalidTeamType
	}
}

// AddMember adds targetEmail to the team identified by code. The caller must be
// a team admin. A pending join request of the target is consumed on success.
func (s *TeamService) AddMember(ctx context.Context, code, targetEmail, actingEmail string) error {
	target, err := s.userRepo.GetByEmail(ctx, targetEmail)
	if err != nil {
		return err
	}

	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return err
	}

	team, err := s.teamRepo.GetByJoinCode(ctx, code)
	if err != nil {
		return err
	}

	if err := permission.CanAddMember(actor, team); err != nil {
		return err
	}
	if err := team.AddMember(target.Email); err != nil {
		return err
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return err
	}

	s.logger.Info("team member added", "team_id", team.ID, "user", target.Email, "by", actor.Email)
	return s.consumeJoinRequest(ctx, target.Email, team.ID)
}

// ChangeRole promotes a member to ADMIN (owner only) or demotes an admin to MEMBER (any admin)
func (s *TeamService) ChangeRole(ctx context.Context, targetEmail string, teamID int64, role domain.TeamRole, actingEmail string) error {
	actor, team, err := s.actorAndTeam(ctx, actingEmail, teamID)
	if err != nil {
		return err
	}

	if err := permission.CanChangeRole(actor, targetEmail, role, team); err != nil {
		return err
	}
	if err := team.SetRole(targetEmail, role); err != nil {
		return err
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return err
	}

	s.logger.Info("team role changed", "team_id", team.ID, "user", targetEmail, "role", role, "by", actor.Email)
	return nil
}

// RemoveMember removes targetEmail from the team. The owner can never be removed.
func (s *TeamService) RemoveMember(ctx context.Context, targetEmail string, teamID int64, actingEmail string) error {
	actor, team, err := s.actorAndTeam(ctx, actingEmail, teamID)
	if err != nil {
		return err
	}

	if err := permission.CanRemoveMember(actor, targetEmail, team); err != nil {
		return err
	}
	if err := team.RemoveMember(targetEmail); err != nil {
		return err
	}
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return err
	}

	s.logger.Info("team member removed", "team_id", team.ID, "user", targetEmail, "by", actor.Email)
	return nil
}

// ListJoinRequests returns pending requests of a team to its admins
func (s *TeamService) ListJoinRequests(ctx context.Context, teamID int64, actingEmail string) ([]*domain.JoinRequest, error) {
	actor, team, err := s.actorAndTeam(ctx, actingEmail, teamID)
	if err != nil {
		return nil, err
	}

	if err := permission.CanReviewJoinRequests(actor, team); err != nil {
		return nil, err
	}
	return s.requestRepo.ListByTeam(ctx, team.ID)
}

// ApproveJoinRequest adds the requester to the team; AddMember consumes the request
func (s *TeamService) ApproveJoinRequest(ctx context.Context, requestID int64, actingEmail string) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	team, err := s.teamRepo.GetByID(ctx, req.TeamID)
	if err != nil {
		return err
	}

	return s.AddMember(ctx, team.JoinCode, req.UserEmail, actingEmail)
}

// DeleteJoinRequest removes a join request. Authorization is the caller's
// choice: authorize is consulted when non-nil.
func (s *TeamService) DeleteJoinRequest(ctx context.Context, requestID int64, actingEmail string, authorize JoinRequestAuthorizer) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}

	if authorize != nil {
		actor, team, err := s.actorAndTeam(ctx, actingEmail, req.TeamID)
		if err != nil {
			return err
		}
		if err := authorize(actor, team, req); err != nil {
			return err
		}
	}

	if err := s.requestRepo.Delete(ctx, req.ID); err != nil {
		return err
	}

	s.logger.Info("join request deleted", "request_id", req.ID, "team_id", req.TeamID, "by", actingEmail)
	return nil
}

// consumeJoinRequest deletes the pending request of the pair, if any
func (s *TeamService) consumeJoinRequest(ctx context.Context, userEmail string, teamID int64) error {
	req, err := s.requestRepo.FindByUserAndTeam(ctx, userEmail, teamID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = s.requestRepo.Delete(ctx, req.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (s *TeamService) actorAndTeam(ctx context.Context, actingEmail string, teamID int64) (*domain.User, *domain.Team, error) {
	actor, err := resolveActor(ctx, s.userRepo, actingEmail)
	if err != nil {
		return nil, nil, err
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}

	return actor, team, nil
}
