package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет пользователя в системе
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // user, admin
	CreatedAt    time.Time `json:"created_at"`
}

// UserInfo представляет минимальную информацию о пользователе для API
type UserInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Info возвращает публичную часть пользователя
func (u *User) Info() *UserInfo {
	return &UserInfo{ID: u.ID, Username: u.Username}
}
