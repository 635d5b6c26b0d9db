package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertNotification добавляет уведомление внутри произвольного запроса
// или транзакции
func insertNotification(ctx context.Context, q querier, n *models.Notification) error {
	n.Visible = true
	return q.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, category, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, n.UserID, n.Title, n.Message, n.Category, n.Link).Scan(&n.ID, &n.CreatedAt)
}

// CreateTrade создает предложение обмена и уведомление владельцу товара
// в одной транзакции
func (s *Store) CreateTrade(ctx context.Context, trade *models.Trade, notif *models.Notification) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	trade.Status = models.TradeStatusPending
	err = tx.QueryRow(ctx, `
		INSERT INTO trades (id, proposer_id, responder_id, product_id, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING created_at, updated_at
	`, trade.ID, trade.ProposerID, trade.ResponderID, trade.ProductID).Scan(&trade.CreatedAt, &trade.UpdatedAt)
	if err != nil {
		return mapError(err)
	}

	if notif != nil {
		if err = insertNotification(ctx, tx, notif); err != nil {
			return fmt.Errorf("ошибка при создании уведомления: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetTrade получает предложение обмена по ID
func (s *Store) GetTrade(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	var trade models.Trade
	err := s.pool.QueryRow(ctx, `
		SELECT id, proposer_id, responder_id, product_id, status, created_at, updated_at
		FROM trades WHERE id = $1
	`, id).Scan(
		&trade.ID, &trade.ProposerID, &trade.ResponderID, &trade.ProductID,
		&trade.Status, &trade.CreatedAt, &trade.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &trade, nil
}

// ListTrades возвращает обмены пользователя с фильтром по направлению и статусу
func (s *Store) ListTrades(ctx context.Context, userID uuid.UUID, filter storage.TradeFilter) ([]models.Trade, error) {
	query := `
		SELECT t.id, t.proposer_id, t.responder_id, t.product_id, t.status,
		       t.created_at, t.updated_at, c.id
		FROM trades t
		LEFT JOIN chats c ON c.trade_id = t.id
		WHERE `
	args := []interface{}{userID}

	switch filter.Direction {
	case "incoming":
		query += `t.responder_id = $1`
	case "outgoing":
		query += `t.proposer_id = $1`
	default:
		query += `(t.proposer_id = $1 OR t.responder_id = $1)`
	}

	if filter.Status != "" && filter.Status != "all" {
		query += ` AND t.status = $2`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var chatID *uuid.UUID
		if err := rows.Scan(
			&trade.ID, &trade.ProposerID, &trade.ResponderID, &trade.ProductID,
			&trade.Status, &trade.CreatedAt, &trade.UpdatedAt, &chatID,
		); err != nil {
			return nil, err
		}
		trade.ChatID = chatID
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

// CountTradesReceived считает полученные пользователем предложения
func (s *Store) CountTradesReceived(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM trades WHERE responder_id = $1
	`, userID).Scan(&count)
	return count, err
}

// AcceptTrade переводит обмен в accepted, создает чат и уведомления
// участникам. Всё в одной транзакции: принятый обмен без чата невозможен.
func (s *Store) AcceptTrade(ctx context.Context, tradeID uuid.UUID, chat *models.Chat, notifs []*models.Notification) (*models.Chat, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err = s.markTrade(ctx, tx, tradeID, models.TradeStatusAccepted); err != nil {
		return nil, err
	}

	// Уникальность chats.trade_id гарантирует не более одного чата на обмен
	err = tx.QueryRow(ctx, `
		INSERT INTO chats (id, trade_id, proposer_id, responder_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, chat.ID, chat.TradeID, chat.ProposerID, chat.ResponderID).Scan(&chat.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	for _, n := range notifs {
		if err = insertNotification(ctx, tx, n); err != nil {
			return nil, fmt.Errorf("ошибка при создании уведомления: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return chat, nil
}

// RejectTrade переводит обмен в rejected и уведомляет инициатора
func (s *Store) RejectTrade(ctx context.Context, tradeID uuid.UUID, notif *models.Notification) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if err = s.markTrade(ctx, tx, tradeID, models.TradeStatusRejected); err != nil {
		return err
	}

	if notif != nil {
		if err = insertNotification(ctx, tx, notif); err != nil {
			return fmt.Errorf("ошибка при создании уведомления: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// markTrade переводит обмен из pending в терминальный статус.
// Проверка статуса выполняется тем же UPDATE, что и смена: повторный
// ответ на обмен безопасен и при конкурентных запросах.
func (s *Store) markTrade(ctx context.Context, tx pgx.Tx, tradeID uuid.UUID, status string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE trades SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending'
	`, status, tradeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Либо обмена нет, либо он уже в терминальном статусе
		var exists bool
		if err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM trades WHERE id = $1)
		`, tradeID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrStateConflict
	}
	return nil
}
