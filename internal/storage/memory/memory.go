// Package memory реализует storage.Store в памяти процесса.
// Используется в тестах: та же семантика, что и у postgres-реализации,
// включая уникальные индексы и атомарность составных операций, но без
// внешних зависимостей. Один мьютекс играет роль транзакции.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// Store реализует storage.Store в памяти
type Store struct {
	mu sync.Mutex

	users      map[uuid.UUID]*models.User
	usernames  map[string]uuid.UUID
	profiles   map[uuid.UUID]*models.Profile
	moderation map[uuid.UUID]*models.ModerationRecord
	products   map[uuid.UUID]*models.Product
	favorites  map[uuid.UUID]*models.Favorite
	trades     map[uuid.UUID]*models.Trade
	chats      map[uuid.UUID]*models.Chat
	// chatByTrade — уникальный индекс: не более одного чата на обмен
	chatByTrade map[uuid.UUID]uuid.UUID
	messages    []*models.Message
	notifs      []*models.Notification
	ratings     map[ratingKey]*models.Rating

	nextMessageID int64
	nextNotifID   int64
}

type ratingKey struct {
	rated, rater, trade uuid.UUID
}

var _ storage.Store = (*Store)(nil)

// New создает пустое хранилище
func New() *Store {
	return &Store{
		users:       make(map[uuid.UUID]*models.User),
		usernames:   make(map[string]uuid.UUID),
		profiles:    make(map[uuid.UUID]*models.Profile),
		moderation:  make(map[uuid.UUID]*models.ModerationRecord),
		products:    make(map[uuid.UUID]*models.Product),
		favorites:   make(map[uuid.UUID]*models.Favorite),
		trades:      make(map[uuid.UUID]*models.Trade),
		chats:       make(map[uuid.UUID]*models.Chat),
		chatByTrade: make(map[uuid.UUID]uuid.UUID),
		ratings:     make(map[ratingKey]*models.Rating),
	}
}

// ---------- Пользователи и профили ----------

// CreateUser создает пользователя вместе с профилем и записью модерации
func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usernames[user.Username]; exists {
		return storage.ErrDuplicate
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	u := *user
	s.users[u.ID] = &u
	s.usernames[u.Username] = u.ID
	s.profiles[u.ID] = &models.Profile{UserID: u.ID}
	s.moderation[u.ID] = &models.ModerationRecord{
		UserID:    u.ID,
		State:     models.ModerationActive,
		UpdatedAt: u.CreatedAt,
	}
	return nil
}

// GetUser получает пользователя по ID
func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := *user
	return &u, nil
}

// GetUserByUsername получает пользователя по имени
func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.usernames[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// GetProfile получает профиль пользователя
func (s *Store) GetProfile(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p := *profile
	return &p, nil
}

// UpdateInterests обновляет интересы в профиле пользователя
func (s *Store) UpdateInterests(_ context.Context, userID uuid.UUID, interests string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return storage.ErrNotFound
	}
	profile.Interests = interests
	return nil
}

// ---------- Товары ----------

// CreateProduct создает новый товар
func (s *Store) CreateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	p := *product
	s.products[p.ID] = &p
	return nil
}

// GetProduct получает товар по ID
func (s *Store) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.productCopy(product), nil
}

// UpdateProduct обновляет товар
func (s *Store) UpdateProduct(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.products[product.ID]
	if !ok {
		return storage.ErrNotFound
	}
	existing.Name = product.Name
	existing.Description = product.Description
	existing.ImageURL = product.ImageURL
	existing.ImagePublicID = product.ImagePublicID
	existing.Category = product.Category
	existing.Tags = append([]string(nil), product.Tags...)
	return nil
}

// DeleteProduct удаляет товар вместе с избранным и обменами по нему
func (s *Store) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return storage.ErrNotFound
	}
	for favID, fav := range s.favorites {
		if fav.ProductID == id {
			delete(s.favorites, favID)
		}
	}
	for tradeID, trade := range s.trades {
		if trade.ProductID != id {
			continue
		}
		s.deleteTradeLocked(tradeID)
	}
	delete(s.products, id)
	return nil
}

// deleteTradeLocked удаляет обмен вместе с чатом, сообщениями и оценками
func (s *Store) deleteTradeLocked(tradeID uuid.UUID) {
	if chatID, ok := s.chatByTrade[tradeID]; ok {
		s.deleteMessagesOfChatLocked(chatID)
		delete(s.chats, chatID)
		delete(s.chatByTrade, tradeID)
	}
	for key := range s.ratings {
		if key.trade == tradeID {
			delete(s.ratings, key)
		}
	}
	delete(s.trades, tradeID)
}

func (s *Store) deleteMessagesOfChatLocked(chatID uuid.UUID) {
	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.ChatID != chatID {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
}

// ListProducts возвращает товары, сначала новые
func (s *Store) ListProducts(_ context.Context, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectProducts(limit, func(*models.Product) bool { return true }), nil
}

// ListProductsByOwner возвращает товары пользователя
func (s *Store) ListProductsByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectProducts(0, func(p *models.Product) bool { return p.OwnerID == ownerID }), nil
}

// SearchProducts ищет товары по названию или имени владельца
func (s *Store) SearchProducts(_ context.Context, query string, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = strings.ToLower(query)
	return s.collectProducts(limit, func(p *models.Product) bool {
		if strings.Contains(strings.ToLower(p.Name), query) {
			return true
		}
		owner, ok := s.users[p.OwnerID]
		return ok && strings.Contains(strings.ToLower(owner.Username), query)
	}), nil
}

// RecommendProducts подбирает чужие товары по тегам из интересов
func (s *Store) RecommendProducts(_ context.Context, userID uuid.UUID, interests []string, limit int) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(interests) == 0 {
		return s.collectProducts(limit, func(p *models.Product) bool { return p.OwnerID != userID }), nil
	}
	wanted := make(map[string]bool, len(interests))
	for _, tag := range interests {
		wanted[tag] = true
	}
	return s.collectProducts(limit, func(p *models.Product) bool {
		if p.OwnerID == userID {
			return false
		}
		for _, tag := range p.Tags {
			if wanted[tag] {
				return true
			}
		}
		return false
	}), nil
}

// IncrementVisits увеличивает счетчик просмотров товара
func (s *Store) IncrementVisits(_ context.Context, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[productID]
	if !ok {
		return storage.ErrNotFound
	}
	product.Visits++
	return nil
}

func (s *Store) collectProducts(limit int, match func(*models.Product) bool) []models.Product {
	var products []models.Product
	for _, p := range s.products {
		if match(p) {
			products = append(products, *s.productCopy(p))
		}
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	return products
}

func (s *Store) productCopy(p *models.Product) *models.Product {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	if owner, ok := s.users[p.OwnerID]; ok {
		cp.Owner = owner.Info()
	}
	return &cp
}

// ---------- Избранное ----------

// AddFavorite добавляет товар в избранное
func (s *Store) AddFavorite(_ context.Context, fav *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.favorites {
		if existing.UserID == fav.UserID && existing.ProductID == fav.ProductID {
			return storage.ErrDuplicate
		}
	}
	if fav.CreatedAt.IsZero() {
		fav.CreatedAt = time.Now()
	}
	f := *fav
	s.favorites[f.ID] = &f
	return nil
}

// RemoveFavorite удаляет товар из избранного
func (s *Store) RemoveFavorite(_ context.Context, userID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, fav := range s.favorites {
		if fav.UserID == userID && fav.ProductID == productID {
			delete(s.favorites, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

// ListFavorites возвращает избранные товары пользователя
func (s *Store) ListFavorites(_ context.Context, userID uuid.UUID) ([]models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var favorites []models.Favorite
	for _, fav := range s.favorites {
		if fav.UserID != userID {
			continue
		}
		f := *fav
		if product, ok := s.products[fav.ProductID]; ok {
			f.Product = s.productCopy(product)
		}
		favorites = append(favorites, f)
	}
	sort.Slice(favorites, func(i, j int) bool {
		return favorites[i].CreatedAt.After(favorites[j].CreatedAt)
	})
	return favorites, nil
}

// IsFavorite проверяет, находится ли товар в избранном пользователя
func (s *Store) IsFavorite(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fav := range s.favorites {
		if fav.UserID == userID && fav.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}
