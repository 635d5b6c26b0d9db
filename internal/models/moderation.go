package models

import (
	"time"

	"github.com/google/uuid"
)

// Состояния модерации
const (
	ModerationActive  = "active"
	ModerationBlocked = "blocked"
)

// Максимум предупреждений, после которого аккаунт удаляется
const MaxWarnings = 3

// ModerationRecord представляет состояние модерации пользователя
type ModerationRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	State     string    `json:"state"` // active, blocked
	UpdatedAt time.Time `json:"updated_at"`

	// Дополнительные поля для API
	User     *UserInfo `json:"user,omitempty"`
	Warnings int       `json:"warnings"`
}

// InsightStats — сводка активности площадки для панели администратора
type InsightStats struct {
	TotalUsers       int    `json:"total_users"`
	TotalProducts    int    `json:"total_products"`
	TotalTrades      int    `json:"total_trades"`
	TopProductName   string `json:"top_product_name,omitempty"`
	TopProductTrades int    `json:"top_product_trades,omitempty"`
}
