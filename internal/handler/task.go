package handler

import (
	"net/http"
	"time"

	"github.com/aidar/taskmanager/internal/domain"
	"github.com/aidar/taskmanager/internal/middleware"
	"github.com/aidar/taskmanager/internal/service"
)

// TaskHandler обрабатывает эндпоинты задач
type TaskHandler struct {
	taskService *service.TaskService
}

// NewTaskHandler создает новый TaskHandler
func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// TaskRequest представляет тело запроса на создание задачи.
// Progress по умолчанию TODO.
type TaskRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	From        time.Time           `json:"from" validate:"required"`
	To          time.Time           `json:"to" validate:"required"`
	Priority    domain.TaskPriority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH HIGHEST"`
	Progress    domain.TaskProgress `json:"progress" validate:"omitempty,oneof=TODO PLANNING IN_PROGRESS FINISHED OVERDUE CLOSED"`
}

// EditTaskRequest представляет тело запроса на редактирование задачи
type EditTaskRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	From        time.Time           `json:"from" validate:"required"`
	To          time.Time           `json:"to" validate:"required"`
	Priority    domain.TaskPriority `json:"priority" validate:"required,oneof=LOW MEDIUM HIGH HIGHEST"`
	Progress    domain.TaskProgress `json:"progress" validate:"required,oneof=TODO PLANNING IN_PROGRESS FINISHED OVERDUE CLOSED"`
}

// ChangeProgressRequest представляет тело запроса на смену прогресса
type ChangeProgressRequest struct {
	Progress domain.TaskProgress `json:"progress" validate:"required,oneof=TODO PLANNING IN_PROGRESS FINISHED OVERDUE CLOSED"`
}

// TaskResponse представляет ответ с задачей
type TaskResponse struct {
	Task *domain.Task `json:"task"`
}

// TaskListResponse представляет ответ со списком задач
type TaskListResponse struct {
	Tasks []*domain.Task `json:"tasks"`
}

// SweepResponse представляет результат проверки просроченных задач
type SweepResponse struct {
	Marked int `json:"marked"`
}

func (req TaskRequest) input(owner string) service.TaskInput {
	return service.TaskInput{
		Name:        req.Name,
		Description: req.Description,
		From:        req.From,
		To:          req.To,
		Priority:    req.Priority,
		Progress:    req.Progress,
		OwnerEmail:  owner,
	}
}

// ListTasks обрабатывает GET /tasks?user=...
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	acting := middleware.GetEmailFromContext(r.Context())

	tasks, err := h.taskService.ListTasks(r.Context(), acting, r.URL.Query().Get("user"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// AddTask обрабатывает POST /tasks
func (h *TaskHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	acting := middleware.GetEmailFromContext(r.Context())
	task, err := h.taskService.AddTask(r.Context(), acting, req.input(acting))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, TaskResponse{Task: task})
}

// EditTask обрабатывает PUT /tasks/{taskID}
func (h *TaskHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, "taskID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	var req EditTaskRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	patch := domain.TaskPatch{
		Name:        req.Name,
		Description: req.Description,
		From:        req.From,
		To:          req.To,
		Priority:    req.Priority,
		Progress:    req.Progress,
	}

	task, err := h.taskService.EditTask(r.Context(), taskID, patch, middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskResponse{Task: task})
}

// ChangeProgress обрабатывает PUT /tasks/{taskID}/progress
func (h *TaskHandler) ChangeProgress(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, "taskID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	var req ChangeProgressRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	task, err := h.taskService.ChangeProgress(r.Context(), taskID, req.Progress, middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskResponse{Task: task})
}

// DeleteTask обрабатывает DELETE /tasks/{taskID}
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := idParam(r, "taskID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID, middleware.GetEmailFromContext(r.Context())); err != nil {
		HandleError(w, r, err)
		return
	}

	respondStatus(w, r, "task deleted")
}

// SweepOverdue обрабатывает POST /tasks/sweep
func (h *TaskHandler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	marked, err := h.taskService.SweepOverdue(r.Context(), middleware.GetEmailFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, SweepResponse{Marked: marked})
}

// AddTeamTask обрабатывает POST /teams/{teamID}/tasks.
// Поле owner указывает участника, которому назначается задача.
func (h *TaskHandler) AddTeamTask(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	var req TeamTaskRequest
	if err := decodeRequest(r, &req); err != nil {
		respondBadRequest(w, r, err)
		return
	}

	acting := middleware.GetEmailFromContext(r.Context())
	task, err := h.taskService.AddTeamTask(r.Context(), teamID, req.TaskRequest.input(req.Owner), acting)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, TaskResponse{Task: task})
}

// ListMemberTasks обрабатывает GET /teams/{teamID}/tasks?user=...
func (h *TaskHandler) ListMemberTasks(w http.ResponseWriter, r *http.Request) {
	teamID, err := idParam(r, "teamID")
	if err != nil {
		respondBadRequest(w, r, err)
		return
	}

	acting := middleware.GetEmailFromContext(r.Context())
	target := r.URL.Query().Get("user")
	if target == "" {
		target = acting
	}

	tasks, err := h.taskService.ListMemberTasks(r.Context(), teamID, target, acting)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	RespondWithJSON(w, r, http.StatusOK, TaskListResponse{Tasks: tasks})
}

// TeamTaskRequest представляет тело запроса на создание задачи участнику команды
type TeamTaskRequest struct {
	TaskRequest
	Owner string `json:"owner" validate:"required,email"`
}
