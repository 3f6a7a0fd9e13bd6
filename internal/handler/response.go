package handler

import (
	"net/http"

	"github.com/go-chi/render"
)

// RespondWithJSON отправляет JSON ответ с указанным статус кодом
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) {
	render.Status(r, statusCode)
	render.JSON(w, r, data)
}

// StatusResponse - ответ операций, которые возвращают только статус
type StatusResponse struct {
	Status string `json:"status"`
}

// respondStatus отправляет 200 с текстовым статусом
func respondStatus(w http.ResponseWriter, r *http.Request, status string) {
	RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: status})
}
