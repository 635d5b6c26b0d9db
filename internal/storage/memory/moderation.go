package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// ---------- Уведомления ----------

func (s *Store) insertNotifLocked(notif *models.Notification) {
	s.nextNotifID++
	notif.ID = s.nextNotifID
	notif.Visible = true
	notif.CreatedAt = time.Now()
	n := *notif
	s.notifs = append(s.notifs, &n)
}

// CreateNotification добавляет уведомление пользователю
func (s *Store) CreateNotification(_ context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertNotifLocked(notif)
	return nil
}

// ListNotifications возвращает видимые уведомления пользователя, сначала новые
func (s *Store) ListNotifications(_ context.Context, userID uuid.UUID, categories []string, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var wanted map[string]bool
	if len(categories) > 0 {
		wanted = make(map[string]bool, len(categories))
		for _, c := range categories {
			wanted[c] = true
		}
	}
	var notifs []models.Notification
	for _, n := range s.notifs {
		if n.UserID != userID || !n.Visible {
			continue
		}
		if wanted != nil && !wanted[n.Category] {
			continue
		}
		notifs = append(notifs, *n)
	}
	sort.Slice(notifs, func(i, j int) bool {
		if notifs[i].CreatedAt.Equal(notifs[j].CreatedAt) {
			return notifs[i].ID > notifs[j].ID
		}
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

// MarkNotificationRead скрывает уведомление. Повторная пометка — ErrNotFound.
func (s *Store) MarkNotificationRead(_ context.Context, userID uuid.UUID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifs {
		if n.ID == id && n.UserID == userID && n.Visible {
			n.Visible = false
			return nil
		}
	}
	return storage.ErrNotFound
}

// ---------- Оценки ----------

// UpsertRating сохраняет оценку и обновляет накопитель профиля
func (s *Store) UpsertRating(_ context.Context, rating *models.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[rating.RatedUserID]
	if !ok {
		return storage.ErrNotFound
	}

	key := ratingKey{rated: rating.RatedUserID, rater: rating.RaterUserID, trade: rating.TradeID}
	now := time.Now()
	if existing, exists := s.ratings[key]; exists {
		// Повторная оценка: корректируем сумму на разницу, счетчик не трогаем
		profile.RatingSum += rating.Stars - existing.Stars
		existing.Stars = rating.Stars
		existing.UpdatedAt = now
		rating.ID = existing.ID
		rating.CreatedAt = existing.CreatedAt
		rating.UpdatedAt = now
		return nil
	}

	rating.CreatedAt = now
	rating.UpdatedAt = now
	r := *rating
	s.ratings[key] = &r
	profile.RatingSum += rating.Stars
	profile.RatingCount++
	return nil
}

// GetRating получает оценку по тройке (кому, кто, обмен)
func (s *Store) GetRating(_ context.Context, ratedID, raterID, tradeID uuid.UUID) (*models.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rating, ok := s.ratings[ratingKey{rated: ratedID, rater: raterID, trade: tradeID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	r := *rating
	return &r, nil
}

// ---------- Модерация ----------

// GetModeration получает запись модерации пользователя
func (s *Store) GetModeration(_ context.Context, userID uuid.UUID) (*models.ModerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.moderation[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	r := *rec
	if profile, ok := s.profiles[userID]; ok {
		r.Warnings = profile.Warnings
	}
	return &r, nil
}

// ListModeration возвращает состояние модерации всех пользователей
func (s *Store) ListModeration(_ context.Context) ([]models.ModerationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []models.ModerationRecord
	for _, rec := range s.moderation {
		r := *rec
		if user, ok := s.users[r.UserID]; ok {
			r.User = user.Info()
		}
		if profile, ok := s.profiles[r.UserID]; ok {
			r.Warnings = profile.Warnings
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		ui, uj := s.users[records[i].UserID], s.users[records[j].UserID]
		if ui == nil || uj == nil {
			return records[i].UserID.String() < records[j].UserID.String()
		}
		return ui.CreatedAt.Before(uj.CreatedAt)
	})
	return records, nil
}

// BlockUser блокирует пользователя и увеличивает счетчик предупреждений
func (s *Store) BlockUser(_ context.Context, userID uuid.UUID, reason string, notify func(warnings int) *models.Notification) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	now := time.Now()
	rec, ok := s.moderation[userID]
	if !ok {
		rec = &models.ModerationRecord{UserID: userID}
		s.moderation[userID] = rec
	}
	rec.State = models.ModerationBlocked
	rec.UpdatedAt = now

	profile.Warnings++
	profile.Suspended = true
	profile.SuspensionReason = reason
	profile.SuspensionDate = &now

	if notify != nil {
		if notif := notify(profile.Warnings); notif != nil {
			s.insertNotifLocked(notif)
		}
	}
	return profile.Warnings, nil
}

// UnblockUser возвращает пользователя в активное состояние
func (s *Store) UnblockUser(_ context.Context, userID uuid.UUID, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.moderation[userID]
	if !ok {
		return storage.ErrNotFound
	}
	rec.State = models.ModerationActive
	rec.UpdatedAt = time.Now()

	if profile, ok := s.profiles[userID]; ok {
		profile.Suspended = false
		profile.SuspensionReason = ""
		profile.SuspensionDate = nil
	}

	if notif != nil {
		s.insertNotifLocked(notif)
	}
	return nil
}

// PurgeUser необратимо удаляет пользователя и всё связанное с ним
func (s *Store) PurgeUser(_ context.Context, userID uuid.UUID, finalNotice *models.Notification) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if finalNotice != nil {
		s.insertNotifLocked(finalNotice)
	}

	// Изображения товаров — для очистки внешнего хранилища
	var imageIDs []string
	for _, p := range s.products {
		if p.OwnerID == userID && p.ImagePublicID != "" {
			imageIDs = append(imageIDs, p.ImagePublicID)
		}
	}

	// Оценки, где пользователь участвует
	for key := range s.ratings {
		if key.rated == userID || key.rater == userID {
			delete(s.ratings, key)
		}
	}
	// Чаты с участием пользователя вместе с сообщениями
	for chatID, chat := range s.chats {
		if !chat.HasParticipant(userID) {
			continue
		}
		s.deleteMessagesOfChatLocked(chatID)
		delete(s.chatByTrade, chat.TradeID)
		delete(s.chats, chatID)
	}
	// Обмены с обеих сторон и по товарам пользователя
	for tradeID, trade := range s.trades {
		if trade.ProposerID == userID || trade.ResponderID == userID {
			s.deleteTradeLocked(tradeID)
			continue
		}
		if product, ok := s.products[trade.ProductID]; ok && product.OwnerID == userID {
			s.deleteTradeLocked(tradeID)
		}
	}
	// Избранное пользователя и чужое избранное на его товары
	for favID, fav := range s.favorites {
		if fav.UserID == userID {
			delete(s.favorites, favID)
			continue
		}
		if product, ok := s.products[fav.ProductID]; ok && product.OwnerID == userID {
			delete(s.favorites, favID)
		}
	}
	// Товары
	for productID, product := range s.products {
		if product.OwnerID == userID {
			delete(s.products, productID)
		}
	}
	// Уведомления
	kept := s.notifs[:0]
	for _, n := range s.notifs {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	s.notifs = kept

	delete(s.moderation, userID)
	delete(s.profiles, userID)
	delete(s.usernames, user.Username)
	delete(s.users, userID)

	return imageIDs, nil
}

// GetInsights собирает сводку активности: общие счетчики и самый
// востребованный по обменам товар
func (s *Store) GetInsights(_ context.Context) (*models.InsightStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.InsightStats{
		TotalUsers:    len(s.users),
		TotalProducts: len(s.products),
		TotalTrades:   len(s.trades),
	}

	counts := make(map[uuid.UUID]int)
	for _, trade := range s.trades {
		counts[trade.ProductID]++
	}
	for productID, total := range counts {
		product, ok := s.products[productID]
		if !ok {
			continue
		}
		if total > stats.TopProductTrades ||
			(total == stats.TopProductTrades && product.Name < stats.TopProductName) {
			stats.TopProductName = product.Name
			stats.TopProductTrades = total
		}
	}
	return stats, nil
}
