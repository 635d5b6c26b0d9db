package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// ---------- Обмены ----------

// CreateTrade создает предложение обмена и уведомление владельцу товара
func (s *Store) CreateTrade(_ context.Context, trade *models.Trade, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	trade.Status = models.TradeStatusPending
	trade.CreatedAt = now
	trade.UpdatedAt = now
	t := *trade
	s.trades[t.ID] = &t
	if notif != nil {
		s.insertNotifLocked(notif)
	}
	return nil
}

// GetTrade получает предложение обмена по ID
func (s *Store) GetTrade(_ context.Context, id uuid.UUID) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	trade, ok := s.trades[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	t := *trade
	return &t, nil
}

// ListTrades возвращает обмены пользователя с фильтром
func (s *Store) ListTrades(_ context.Context, userID uuid.UUID, filter storage.TradeFilter) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var trades []models.Trade
	for _, trade := range s.trades {
		switch filter.Direction {
		case "incoming":
			if trade.ResponderID != userID {
				continue
			}
		case "outgoing":
			if trade.ProposerID != userID {
				continue
			}
		default:
			if trade.ProposerID != userID && trade.ResponderID != userID {
				continue
			}
		}
		if filter.Status != "" && filter.Status != "all" && trade.Status != filter.Status {
			continue
		}
		t := *trade
		if chatID, ok := s.chatByTrade[trade.ID]; ok {
			id := chatID
			t.ChatID = &id
		}
		trades = append(trades, t)
	}
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})
	return trades, nil
}

// CountTradesReceived считает полученные пользователем предложения
func (s *Store) CountTradesReceived(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, trade := range s.trades {
		if trade.ResponderID == userID {
			count++
		}
	}
	return count, nil
}

// AcceptTrade переводит обмен в accepted, создает чат и уведомления
func (s *Store) AcceptTrade(_ context.Context, tradeID uuid.UUID, chat *models.Chat, notifs []*models.Notification) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.markTradeLocked(tradeID, models.TradeStatusAccepted); err != nil {
		return nil, err
	}
	if _, exists := s.chatByTrade[chat.TradeID]; exists {
		return nil, storage.ErrDuplicate
	}
	chat.CreatedAt = time.Now()
	c := *chat
	s.chats[c.ID] = &c
	s.chatByTrade[c.TradeID] = c.ID
	for _, n := range notifs {
		s.insertNotifLocked(n)
	}
	return chat, nil
}

// RejectTrade переводит обмен в rejected и уведомляет инициатора
func (s *Store) RejectTrade(_ context.Context, tradeID uuid.UUID, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.markTradeLocked(tradeID, models.TradeStatusRejected); err != nil {
		return err
	}
	if notif != nil {
		s.insertNotifLocked(notif)
	}
	return nil
}

func (s *Store) markTradeLocked(tradeID uuid.UUID, status string) error {
	trade, ok := s.trades[tradeID]
	if !ok {
		return storage.ErrNotFound
	}
	if trade.Status != models.TradeStatusPending {
		return storage.ErrStateConflict
	}
	trade.Status = status
	trade.UpdatedAt = time.Now()
	return nil
}

// ---------- Чаты и сообщения ----------

// GetChat получает чат по ID
func (s *Store) GetChat(_ context.Context, id uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *chat
	return &c, nil
}

// GetChatByTrade получает чат по ID обмена
func (s *Store) GetChatByTrade(_ context.Context, tradeID uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chatID, ok := s.chatByTrade[tradeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	c := *s.chats[chatID]
	return &c, nil
}

// ListChats возвращает чаты пользователя, сначала новые
func (s *Store) ListChats(_ context.Context, userID uuid.UUID) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var chats []models.Chat
	for _, chat := range s.chats {
		if !chat.HasParticipant(userID) {
			continue
		}
		c := *chat
		if proposer, ok := s.users[c.ProposerID]; ok {
			c.Proposer = proposer.Info()
		}
		if responder, ok := s.users[c.ResponderID]; ok {
			c.Responder = responder.Info()
		}
		chats = append(chats, c)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

// CreateMessage добавляет сообщение и уведомление второму участнику
func (s *Store) CreateMessage(_ context.Context, msg *models.Message, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessageID++
	msg.ID = s.nextMessageID
	msg.CreatedAt = time.Now()
	m := *msg
	s.messages = append(s.messages, &m)
	if notif != nil {
		s.insertNotifLocked(notif)
	}
	return nil
}

// ListMessagesSince возвращает сообщения чата с id больше sinceID
func (s *Store) ListMessagesSince(_ context.Context, chatID uuid.UUID, sinceID int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var messages []models.Message
	for _, msg := range s.messages {
		if msg.ChatID != chatID || msg.ID <= sinceID {
			continue
		}
		m := *msg
		if author, ok := s.users[m.AuthorID]; ok {
			m.Author = author.Info()
		}
		messages = append(messages, m)
	}
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].ID < messages[j].ID
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}
