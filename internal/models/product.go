package models

import (
	"time"

	"github.com/google/uuid"
)

// Product представляет товар, выставленный на обмен
type Product struct {
	ID            uuid.UUID `json:"id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url,omitempty"`
	ImagePublicID string    `json:"-"`
	Category      string    `json:"category,omitempty"`
	Tags          []string  `json:"tags"`
	Visits        int       `json:"visits"`
	CreatedAt     time.Time `json:"created_at"`

	// Дополнительные поля для API
	Owner *UserInfo `json:"owner,omitempty"`
}

// Favorite представляет запись избранного товара
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ProductID uuid.UUID `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`

	// Дополнительные поля для API
	Product *Product `json:"product,omitempty"`
}
