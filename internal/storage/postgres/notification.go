package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// CreateNotification добавляет уведомление пользователю
func (s *Store) CreateNotification(ctx context.Context, notif *models.Notification) error {
	return insertNotification(ctx, s.pool, notif)
}

// ListNotifications возвращает видимые уведомления пользователя, сначала
// новые, с необязательным фильтром по категориям
func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID, categories []string, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, title, message, category, link, visible, created_at
		FROM notifications
		WHERE user_id = $1 AND visible = TRUE
	`
	args := []interface{}{userID}

	if len(categories) > 0 {
		query += ` AND category = ANY($2)`
		args = append(args, categories)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		args = append(args, limit)
		if len(categories) > 0 {
			query += ` LIMIT $3`
		} else {
			query += ` LIMIT $2`
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Category, &n.Link, &n.Visible, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// MarkNotificationRead скрывает уведомление. Повторная пометка или чужое
// уведомление — ErrNotFound: видимой записи с таким id у пользователя нет.
func (s *Store) MarkNotificationRead(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications SET visible = FALSE
		WHERE id = $1 AND user_id = $2 AND visible = TRUE
	`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
