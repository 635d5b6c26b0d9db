package models

import (
	"time"

	"github.com/google/uuid"
)

// Категории уведомлений
const (
	NotificationNewTrade      = "new_trade"
	NotificationTradeAccepted = "trade_accepted"
	NotificationTradeRejected = "trade_rejected"
	NotificationMessage       = "message"
	NotificationAlert         = "alert"  // страйк
	NotificationDanger        = "danger" // удаление аккаунта
	NotificationInfo          = "info"
)

// Notification представляет запись в ленте уведомлений пользователя.
// После создания меняется только флаг visible
type Notification struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Category  string    `json:"category,omitempty"`
	Link      string    `json:"link,omitempty"`
	Visible   bool      `json:"visible"`
	CreatedAt time.Time `json:"created_at"`
}
