package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat представляет чат между двумя участниками принятого обмена.
// Роли участников хранятся явно: ровно два участника, без исключений.
type Chat struct {
	ID          uuid.UUID `json:"id"`
	TradeID     uuid.UUID `json:"trade_id"`
	ProposerID  uuid.UUID `json:"proposer_id"`
	ResponderID uuid.UUID `json:"responder_id"`
	CreatedAt   time.Time `json:"created_at"`

	// Дополнительные поля для API
	Proposer  *UserInfo `json:"proposer,omitempty"`
	Responder *UserInfo `json:"responder,omitempty"`
	Trade     *Trade    `json:"trade,omitempty"`
}

// HasParticipant проверяет, является ли пользователь участником чата
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.ProposerID == userID || c.ResponderID == userID
}

// OtherParticipant возвращает второго участника чата
func (c *Chat) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.ProposerID == userID {
		return c.ResponderID
	}
	return c.ProposerID
}

// Message представляет сообщение в чате. Содержимое неизменяемо,
// порядок определяется временем создания и id
type Message struct {
	ID        int64     `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Author *UserInfo `json:"author,omitempty"`
}
