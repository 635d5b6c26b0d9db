package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// UpsertRating сохраняет оценку и обновляет накопитель профиля в одной
// транзакции. Новая оценка добавляет stars к сумме и увеличивает счетчик;
// повторная оценка того же обмена корректирует сумму на разницу, счетчик
// не меняется.
func (s *Store) UpsertRating(ctx context.Context, rating *models.Rating) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем существующую оценку, чтобы разница считалась корректно
	// и при конкурентных запросах
	var prevStars int
	var existingID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id, stars FROM ratings
		WHERE rated_user_id = $1 AND rater_user_id = $2 AND trade_id = $3
		FOR UPDATE
	`, rating.RatedUserID, rating.RaterUserID, rating.TradeID).Scan(&existingID, &prevStars)

	switch {
	case err == nil:
		rating.ID = existingID
		if _, err = tx.Exec(ctx, `
			UPDATE ratings SET stars = $1, updated_at = NOW() WHERE id = $2
		`, rating.Stars, existingID); err != nil {
			return err
		}
		if _, err = tx.Exec(ctx, `
			UPDATE profiles SET rating_sum = rating_sum + $1 WHERE user_id = $2
		`, rating.Stars-prevStars, rating.RatedUserID); err != nil {
			return err
		}

	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO ratings (id, rated_user_id, rater_user_id, trade_id, stars)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`, rating.ID, rating.RatedUserID, rating.RaterUserID, rating.TradeID, rating.Stars,
		).Scan(&rating.CreatedAt, &rating.UpdatedAt)
		if err != nil {
			return mapError(err)
		}
		if _, err = tx.Exec(ctx, `
			UPDATE profiles SET rating_sum = rating_sum + $1, rating_count = rating_count + 1
			WHERE user_id = $2
		`, rating.Stars, rating.RatedUserID); err != nil {
			return err
		}

	default:
		return err
	}

	return tx.Commit(ctx)
}

// GetRating получает оценку по тройке (кому, кто, обмен)
func (s *Store) GetRating(ctx context.Context, ratedID, raterID, tradeID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := s.pool.QueryRow(ctx, `
		SELECT id, rated_user_id, rater_user_id, trade_id, stars, created_at, updated_at
		FROM ratings
		WHERE rated_user_id = $1 AND rater_user_id = $2 AND trade_id = $3
	`, ratedID, raterID, tradeID).Scan(
		&rating.ID, &rating.RatedUserID, &rating.RaterUserID, &rating.TradeID,
		&rating.Stars, &rating.CreatedAt, &rating.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &rating, nil
}
