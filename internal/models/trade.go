package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы обмена. После accepted или rejected статус больше не меняется.
const (
	TradeStatusPending  = "pending"
	TradeStatusAccepted = "accepted"
	TradeStatusRejected = "rejected"
)

// Trade представляет предложение обмена: инициатор предлагает
// обмен за товар получателя
type Trade struct {
	ID          uuid.UUID `json:"id"`
	ProposerID  uuid.UUID `json:"proposer_id"`
	ResponderID uuid.UUID `json:"responder_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Status      string    `json:"status"` // pending, accepted, rejected
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Дополнительные поля для API
	Proposer  *UserInfo  `json:"proposer,omitempty"`
	Responder *UserInfo  `json:"responder,omitempty"`
	Product   *Product   `json:"product,omitempty"`
	ChatID    *uuid.UUID `json:"chat_id,omitempty"`
}
