package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/middleware"
	"github.com/aidar/taskmanager/internal/service"
)

// UserHandler обрабатывает эндпоинты пользователей
type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// UpdateProfileRequest представляет тело запроса на изменение профиля
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

// ChangePasswordRequest представляет тело запроса на смену пароля
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=6"`
	Confirmation string `json:"confirmation" validate:"required"`
}

// ChangeUserRoleRequest представляет тело запроса на смену глобальной роли
type ChangeUserRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=USER SUPPORT ADMIN"`
}

// UserResponse представляет ответ с пользователем
type UserResponse struct {
	User *domain.User `json:"user"`
}

// Me обрабатывает GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByEmail(r.Context(), middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}

// UpdateProfile обрабатывает PUT /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	email := middleware.GetEmailFromContext(r.Context())
	user, err := h.userService.UpdateProfile(r.Context(), email, req.FirstName, req.LastName)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}

// ChangePassword обрабатывает PUT /users/me/password
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	email := middleware.GetEmailFromContext(r.Context())
	if err := h.authService.ChangePassword(r.Context(), email, req.OldPassword, req.NewPassword, req.Confirmation); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "password changed")
}

// ChangeRole обрабатывает PUT /users/{email}/role
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req ChangeUserRoleRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	acting := middleware.GetEmailFromContext(r.Context())
	user, err := h.userService.ChangeUserRole(r.Context(), chi.URLParam(r, "email"), req.Role, acting)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, UserResponse{User: user})
}
