package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
)

// GetChat получает чат по ID
func (s *Store) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	return s.getChatByField(ctx, "id", id)
}

// GetChatByTrade получает чат по ID обмена
func (s *Store) GetChatByTrade(ctx context.Context, tradeID uuid.UUID) (*models.Chat, error) {
	return s.getChatByField(ctx, "trade_id", tradeID)
}

func (s *Store) getChatByField(ctx context.Context, field string, value interface{}) (*models.Chat, error) {
	var chat models.Chat
	err := s.pool.QueryRow(ctx, `
		SELECT id, trade_id, proposer_id, responder_id, created_at
		FROM chats WHERE `+field+` = $1
	`, value).Scan(&chat.ID, &chat.TradeID, &chat.ProposerID, &chat.ResponderID, &chat.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &chat, nil
}

// ListChats возвращает чаты пользователя, сначала новые
func (s *Store) ListChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.trade_id, c.proposer_id, c.responder_id, c.created_at,
		       up.username, ur.username
		FROM chats c
		JOIN users up ON up.id = c.proposer_id
		JOIN users ur ON ur.id = c.responder_id
		WHERE c.proposer_id = $1 OR c.responder_id = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		var proposerName, responderName string
		if err := rows.Scan(
			&chat.ID, &chat.TradeID, &chat.ProposerID, &chat.ResponderID,
			&chat.CreatedAt, &proposerName, &responderName,
		); err != nil {
			return nil, err
		}
		chat.Proposer = &models.UserInfo{ID: chat.ProposerID, Username: proposerName}
		chat.Responder = &models.UserInfo{ID: chat.ResponderID, Username: responderName}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// CreateMessage добавляет сообщение и уведомление второму участнику
// в одной транзакции
func (s *Store) CreateMessage(ctx context.Context, msg *models.Message, notif *models.Notification) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO messages (chat_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, msg.ChatID, msg.AuthorID, msg.Content).Scan(&msg.ID, &msg.CreatedAt)
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

// ListMessagesSince возвращает сообщения чата с id больше sinceID по
// возрастанию. sinceID = 0 означает всю историю.
func (s *Store) ListMessagesSince(ctx context.Context, chatID uuid.UUID, sinceID int64) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.chat_id, m.author_id, m.content, m.created_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.chat_id = $1 AND m.id > $2
		ORDER BY m.created_at ASC, m.id ASC
	`, chatID, sinceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		var authorName string
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.AuthorID, &msg.Content, &msg.CreatedAt, &authorName); err != nil {
			return nil, err
		}
		msg.Author = &models.UserInfo{ID: msg.AuthorID, Username: authorName}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
