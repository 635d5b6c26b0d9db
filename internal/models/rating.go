package models

import (
	"time"

	"github.com/google/uuid"
)

// Rating представляет оценку участника обмена. Не более одной оценки
// на тройку (кому, кто, обмен); повторная оценка перезаписывает значение
type Rating struct {
	ID          uuid.UUID `json:"id"`
	RatedUserID uuid.UUID `json:"rated_user_id"`
	RaterUserID uuid.UUID `json:"rater_user_id"`
	TradeID     uuid.UUID `json:"trade_id"`
	Stars       int       `json:"stars"` // 1..5
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
