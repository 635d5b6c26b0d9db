package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// GetModeration получает запись модерации пользователя
func (s *Store) GetModeration(ctx context.Context, userID uuid.UUID) (*models.ModerationRecord, error) {
	var rec models.ModerationRecord
	err := s.pool.QueryRow(ctx, `
		SELECT m.user_id, m.state, m.updated_at, p.warnings
		FROM moderation_records m
		JOIN profiles p ON p.user_id = m.user_id
		WHERE m.user_id = $1
	`, userID).Scan(&rec.UserID, &rec.State, &rec.UpdatedAt, &rec.Warnings)
	if err != nil {
		return nil, mapError(err)
	}
	return &rec, nil
}

// ListModeration возвращает состояние модерации всех пользователей
func (s *Store) ListModeration(ctx context.Context) ([]models.ModerationRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.user_id, m.state, m.updated_at, p.warnings, u.username
		FROM moderation_records m
		JOIN profiles p ON p.user_id = m.user_id
		JOIN users u ON u.id = m.user_id
		ORDER BY u.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ModerationRecord
	for rows.Next() {
		var rec models.ModerationRecord
		var username string
		if err := rows.Scan(&rec.UserID, &rec.State, &rec.UpdatedAt, &rec.Warnings, &username); err != nil {
			return nil, err
		}
		rec.User = &models.UserInfo{ID: rec.UserID, Username: username}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// BlockUser блокирует пользователя, увеличивает счетчик предупреждений и
// создает уведомление о страйке. Возвращает счетчик после увеличения.
func (s *Store) BlockUser(ctx context.Context, userID uuid.UUID, reason string, notify func(warnings int) *models.Notification) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `
		INSERT INTO moderation_records (user_id, state, updated_at)
		VALUES ($1, 'blocked', NOW())
		ON CONFLICT (user_id) DO UPDATE SET state = 'blocked', updated_at = NOW()
	`, userID); err != nil {
		return 0, err
	}

	var warnings int
	err = tx.QueryRow(ctx, `
		UPDATE profiles
		SET warnings = warnings + 1, suspended = TRUE,
		    suspension_reason = $1, suspension_date = NOW()
		WHERE user_id = $2
		RETURNING warnings
	`, reason, userID).Scan(&warnings)
	if err != nil {
		return 0, mapError(err)
	}

	if notify != nil {
		if notif := notify(warnings); notif != nil {
			if err = insertNotification(ctx, tx, notif); err != nil {
				return 0, fmt.Errorf("ошибка при создании уведомления: %w", err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return warnings, nil
}

// UnblockUser возвращает пользователя в активное состояние. Счетчик
// предупреждений не сбрасывается.
func (s *Store) UnblockUser(ctx context.Context, userID uuid.UUID, notif *models.Notification) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE moderation_records SET state = 'active', updated_at = NOW()
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if _, err = tx.Exec(ctx, `
		UPDATE profiles
		SET suspended = FALSE, suspension_reason = '', suspension_date = NULL
		WHERE user_id = $1
	`, userID); err != nil {
		return err
	}

	if notif != nil {
		if err = insertNotification(ctx, tx, notif); err != nil {
			return fmt.Errorf("ошибка при создании уведомления: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// PurgeUser необратимо удаляет пользователя и всё связанное с ним:
// оценки → сообщения → чаты → обмены → избранное → товары → уведомления →
// модерация → профиль → пользователь. Возвращает public_id изображений
// удаленных товаров для очистки внешнего хранилища.
func (s *Store) PurgeUser(ctx context.Context, userID uuid.UUID, finalNotice *models.Notification) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Прощальное уведомление пишется до разбора, как и раньше: оно исчезнет
	// вместе с аккаунтом, наблюдаемый результат — отсутствие пользователя
	if finalNotice != nil {
		if err = insertNotification(ctx, tx, finalNotice); err != nil {
			return nil, fmt.Errorf("ошибка при создании уведомления: %w", err)
		}
	}

	// Собираем изображения товаров до удаления
	rows, err := tx.Query(ctx, `
		SELECT image_public_id FROM products
		WHERE owner_id = $1 AND image_public_id != ''
	`, userID)
	if err != nil {
		return nil, err
	}
	var imageIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		imageIDs = append(imageIDs, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	// Разбор в фиксированном порядке: сначала дочерние записи, потом родительские
	teardown := []string{
		`DELETE FROM ratings WHERE rated_user_id = $1 OR rater_user_id = $1
		 OR trade_id IN (SELECT id FROM trades WHERE proposer_id = $1 OR responder_id = $1 OR product_id IN (SELECT id FROM products WHERE owner_id = $1))`,
		`DELETE FROM messages WHERE author_id = $1
		 OR chat_id IN (SELECT id FROM chats WHERE proposer_id = $1 OR responder_id = $1)`,
		`DELETE FROM chats WHERE proposer_id = $1 OR responder_id = $1`,
		`DELETE FROM trades WHERE proposer_id = $1 OR responder_id = $1
		 OR product_id IN (SELECT id FROM products WHERE owner_id = $1)`,
		`DELETE FROM favorites WHERE user_id = $1
		 OR product_id IN (SELECT id FROM products WHERE owner_id = $1)`,
		`DELETE FROM products WHERE owner_id = $1`,
		`DELETE FROM notifications WHERE user_id = $1`,
		`DELETE FROM moderation_records WHERE user_id = $1`,
		`DELETE FROM profiles WHERE user_id = $1`,
	}
	for _, stmt := range teardown {
		if _, err = tx.Exec(ctx, stmt, userID); err != nil {
			return nil, err
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, storage.ErrNotFound
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return imageIDs, nil
}

// GetInsights собирает сводку активности: общие счетчики и самый
// востребованный по обменам товар
func (s *Store) GetInsights(ctx context.Context) (*models.InsightStats, error) {
	var stats models.InsightStats
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM products),
			(SELECT COUNT(*) FROM trades)
	`).Scan(&stats.TotalUsers, &stats.TotalProducts, &stats.TotalTrades)
	if err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx, `
		SELECT p.name, COUNT(t.id) AS total
		FROM trades t
		JOIN products p ON p.id = t.product_id
		GROUP BY p.name
		ORDER BY total DESC, p.name
		LIMIT 1
	`).Scan(&stats.TopProductName, &stats.TopProductTrades)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return &stats, nil
}
