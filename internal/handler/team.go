package handler

import (
	"net/http"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/middleware"
	"github.com/aidar/taskmanager/internal/permission"
	"github.com/aidar/taskmanager/internal/service"
)

// TeamHandler обрабатывает эндпоинты команд
type TeamHandler struct {
	teamService *service.TeamService
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// TeamRequest представляет тело запроса на создание или изменение команды
type TeamRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Type        domain.TeamType `json:"type" validate:"required,oneof=PUBLIC PRIVATE"`
}

// JoinTeamRequest представляет тело запроса на вступление по коду
type JoinTeamRequest struct {
	JoinCode string `json:"join_code" validate:"required"`
}

// AddMemberRequest представляет тело запроса на добавление участника
type AddMemberRequest struct {
	JoinCode string `json:"join_code" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// ChangeRoleRequest представляет тело запроса на смену роли в команде
type ChangeRoleRequest struct {
	Email string          `json:"email" validate:"required,email"`
	Role  domain.TeamRole `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

// TeamResponse представляет ответ с командой
type TeamResponse struct {
	Team *domain.Team `json:"team"`
}

// JoinTeamResponse представляет результат вступления по коду
type JoinTeamResponse struct {
	Status service.JoinOutcome `json:"status"`
}

// JoinRequestListResponse представляет ответ со списком заявок
type JoinRequestListResponse struct {
	Requests []*domain.JoinRequest `json:"requests"`
}

func (req TeamRequest) input() service.TeamInput {
	return service.TeamInput{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	}
}

// CreateTeam обрабатывает POST /teams
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), req.input(), middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, TeamResponse{Team: team})
}

// GetTeam обрабатывает GET /teams/{teamID}
func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), teamID, middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

// EditTeam обрабатывает PUT /teams/{teamID}
func (h *TeamHandler) EditTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	var req TeamRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	team, err := h.teamService.EditTeam(r.Context(), teamID, req.input(), middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team})
}

// JoinTeam обрабатывает POST /teams/join
func (h *TeamHandler) JoinTeam(w http.ResponseWriter, r *http.Request) {
	var req JoinTeamRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	outcome, err := h.teamService.JoinByCode(r.Context(), req.JoinCode, middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, JoinTeamResponse{Status: outcome})
}

// AddMember обрабатывает POST /teams/members
func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var req AddMemberRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	if err := h.teamService.AddMember(r.Context(), req.JoinCode, req.Email, middleware.GetEmailFromContext(r.Context())); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "member added")
}

// ChangeRole обрабатывает PUT /teams/{teamID}/members/role
func (h *TeamHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	var req ChangeRoleRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	acting := middleware.GetEmailFromContext(r.Context())
	if err := h.teamService.ChangeRole(r.Context(), req.Email, teamID, req.Role, acting); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "role changed")
}

// RemoveMember обрабатывает DELETE /teams/{teamID}/members?email=...
func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	target := r.URL.Query().Get("email")
	if target == "" {
		RespondWithError(w, r, http.StatusBadRequest, string(domain.CodeInvalidArgument), "email query parameter is required")
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), target, teamID, middleware.GetEmailFromContext(r.Context())); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "member removed")
}

// ListJoinRequests обрабатывает GET /teams/{teamID}/requests
func (h *TeamHandler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	requests, err := h.teamService.ListJoinRequests(r.Context(), teamID, middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, JoinRequestListResponse{Requests: requests})
}

// ApproveJoinRequest обрабатывает POST /teams/requests/{requestID}/approve
func (h *TeamHandler) ApproveJoinRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := idParam(r, "requestID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	if err := h.teamService.ApproveJoinRequest(r.Context(), requestID, middleware.GetEmailFromContext(r.Context())); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "member added")
}

// DeleteJoinRequest обрабатывает DELETE /teams/requests/{requestID}.
// Заявку может отозвать ее автор или отклонить администратор команды.
func (h *TeamHandler) DeleteJoinRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := idParam(r, "requestID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	acting := middleware.GetEmailFromContext(r.Context())
	if err := h.teamService.DeleteJoinRequest(r.Context(), requestID, acting, permission.CanDeleteJoinRequest); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "join request deleted")
}
