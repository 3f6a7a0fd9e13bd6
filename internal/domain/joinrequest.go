package domain

import "time"

// JoinRequest - заявка пользователя на вступление в приватную команду.
// На пару (пользователь, команда) существует не больше одной заявки.
type JoinRequest struct {
	ID        int64     `json:"id"`
	UserEmail string    `json:"user_email"`
	TeamID    int64     `json:"team_id"`
	CreatedAt time.Time `json:"created_at"`
}
