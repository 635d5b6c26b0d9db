package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// AddFavorite добавляет товар в избранное
func (s *Store) AddFavorite(ctx context.Context, fav *models.Favorite) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO favorites (id, user_id, product_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, fav.ID, fav.UserID, fav.ProductID).Scan(&fav.CreatedAt)
	return mapError(err)
}

// RemoveFavorite удаляет товар из избранного
func (s *Store) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListFavorites возвращает избранные товары пользователя, сначала новые
func (s *Store) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT f.id, f.user_id, f.product_id, f.created_at, `+productColumns+`
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		JOIN users u ON u.id = p.owner_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var fav models.Favorite
		var p models.Product
		var ownerName string
		if err := rows.Scan(
			&fav.ID, &fav.UserID, &fav.ProductID, &fav.CreatedAt,
			&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.ImageURL, &p.ImagePublicID,
			&p.Category, &p.Tags, &p.Visits, &p.CreatedAt, &ownerName,
		); err != nil {
			return nil, err
		}
		p.Owner = &models.UserInfo{ID: p.OwnerID, Username: ownerName}
		fav.Product = &p
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

// IsFavorite проверяет, находится ли товар в избранном пользователя
func (s *Store) IsFavorite(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2)
	`, userID, productID).Scan(&exists)
	return exists, err
}
