package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

const productColumns = `
	p.id, p.owner_id, p.name, p.description, p.image_url, p.image_public_id,
	p.category, p.tags, p.visits, p.created_at, u.username
`

// CreateProduct создает новый товар
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Tags == nil {
		product.Tags = []string{}
	}
	return s.pool.QueryRow(ctx, `
		INSERT INTO products (id, owner_id, name, description, image_url, image_public_id, category, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, product.ID, product.OwnerID, product.Name, product.Description,
		product.ImageURL, product.ImagePublicID, product.Category, product.Tags,
	).Scan(&product.CreatedAt)
}

// GetProduct получает товар по ID
func (s *Store) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN users u ON u.id = p.owner_id
		WHERE p.id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

// UpdateProduct обновляет название, описание, изображение, категорию и теги
func (s *Store) UpdateProduct(ctx context.Context, product *models.Product) error {
	if product.Tags == nil {
		product.Tags = []string{}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, description = $2, image_url = $3, image_public_id = $4,
		    category = $5, tags = $6
		WHERE id = $7
	`, product.Name, product.Description, product.ImageURL, product.ImagePublicID,
		product.Category, product.Tags, product.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteProduct удаляет товар вместе с избранным и обменами по нему
func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `DELETE FROM favorites WHERE product_id = $1`, id); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		DELETE FROM ratings WHERE trade_id IN (SELECT id FROM trades WHERE product_id = $1)
	`, id); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		DELETE FROM messages WHERE chat_id IN (
			SELECT c.id FROM chats c JOIN trades t ON t.id = c.trade_id WHERE t.product_id = $1
		)
	`, id); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `
		DELETE FROM chats WHERE trade_id IN (SELECT id FROM trades WHERE product_id = $1)
	`, id); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM trades WHERE product_id = $1`, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return tx.Commit(ctx)
}

// ListProducts возвращает товары, сначала новые
func (s *Store) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN users u ON u.id = p.owner_id
		ORDER BY p.created_at DESC
		LIMIT $1
	`, limit)
}

// ListProductsByOwner возвращает товары пользователя
func (s *Store) ListProductsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN users u ON u.id = p.owner_id
		WHERE p.owner_id = $1
		ORDER BY p.created_at DESC
	`, ownerID)
}

// SearchProducts ищет товары по названию или имени владельца
func (s *Store) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN users u ON u.id = p.owner_id
		WHERE p.name ILIKE '%' || $1 || '%' OR u.username ILIKE '%' || $1 || '%'
		ORDER BY p.created_at DESC
		LIMIT $2
	`, query, limit)
}

// RecommendProducts подбирает чужие товары по тегам из интересов.
// Если интересов нет — просто последние чужие товары.
func (s *Store) RecommendProducts(ctx context.Context, userID uuid.UUID, interests []string, limit int) ([]models.Product, error) {
	if len(interests) == 0 {
		return s.queryProducts(ctx, `
			SELECT `+productColumns+`
			FROM products p
			JOIN users u ON u.id = p.owner_id
			WHERE p.owner_id != $1
			ORDER BY p.created_at DESC
			LIMIT $2
		`, userID, limit)
	}
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN users u ON u.id = p.owner_id
		WHERE p.owner_id != $1 AND p.tags && $2
		ORDER BY p.created_at DESC
		LIMIT $3
	`, userID, interests, limit)
}

// IncrementVisits увеличивает счетчик просмотров товара
func (s *Store) IncrementVisits(ctx context.Context, productID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE products SET visits = visits + 1 WHERE id = $1
	`, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var ownerName string
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.ImageURL, &p.ImagePublicID,
		&p.Category, &p.Tags, &p.Visits, &p.CreatedAt, &ownerName,
	); err != nil {
		return nil, err
	}
	p.Owner = &models.UserInfo{ID: p.OwnerID, Username: ownerName}
	return &p, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
