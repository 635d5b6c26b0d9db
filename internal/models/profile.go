package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Profile представляет профиль пользователя: накопленные оценки,
// модерационные счетчики и интересы для рекомендаций
type Profile struct {
	UserID           uuid.UUID  `json:"user_id"`
	RatingSum        int        `json:"rating_sum"`
	RatingCount      int        `json:"rating_count"`
	Suspended        bool       `json:"suspended"`
	SuspensionReason string     `json:"suspension_reason,omitempty"`
	SuspensionDate   *time.Time `json:"suspension_date,omitempty"`
	Warnings         int        `json:"warnings"`
	Interests        string     `json:"interests"` // интересы через запятую: "техника,одежда,дом"
}

// AverageRating возвращает средний рейтинг, округленный до двух знаков.
// Если оценок нет — 0.
func (p *Profile) AverageRating() float64 {
	if p.RatingCount == 0 {
		return 0
	}
	avg := float64(p.RatingSum) / float64(p.RatingCount)
	return math.Round(avg*100) / 100
}

// InterestList разбирает строку интересов на отдельные теги
func (p *Profile) InterestList() []string {
	var interests []string
	for _, raw := range strings.Split(p.Interests, ",") {
		if tag := strings.TrimSpace(raw); tag != "" {
			interests = append(interests, tag)
		}
	}
	return interests
}
