package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rajivgeraev/swapplace-api/internal/models"
	"github.com/rajivgeraev/swapplace-api/internal/storage"
)

// CreateUser создает пользователя вместе с профилем и записью модерации
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, username, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role).Scan(&user.CreatedAt)
	if err != nil {
		return mapError(err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO profiles (user_id) VALUES ($1)
	`, user.ID); err != nil {
		return fmt.Errorf("ошибка при создании профиля: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO moderation_records (user_id) VALUES ($1)
	`, user.ID); err != nil {
		return fmt.Errorf("ошибка при создании записи модерации: %w", err)
	}

	return tx.Commit(ctx)
}

// GetUser получает пользователя по ID
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUserByField(ctx, "id", id)
}

// GetUserByUsername получает пользователя по имени
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserByField(ctx, "username", username)
}

func (s *Store) getUserByField(ctx context.Context, field string, value interface{}) (*models.User, error) {
	var user models.User
	var email pgtype.Text

	err := s.pool.QueryRow(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE `+field+` = $1
	`, value).Scan(&user.ID, &user.Username, &email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if err != nil {
		return nil, mapError(err)
	}

	if email.Valid {
		user.Email = email.String
	}
	return &user, nil
}

// GetProfile получает профиль пользователя
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	var suspensionDate pgtype.Timestamptz

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, rating_sum, rating_count, suspended, suspension_reason,
		       suspension_date, warnings, interests
		FROM profiles WHERE user_id = $1
	`, userID).Scan(
		&profile.UserID,
		&profile.RatingSum,
		&profile.RatingCount,
		&profile.Suspended,
		&profile.SuspensionReason,
		&suspensionDate,
		&profile.Warnings,
		&profile.Interests,
	)
	if err != nil {
		return nil, mapError(err)
	}

	if suspensionDate.Valid {
		profile.SuspensionDate = &suspensionDate.Time
	}
	return &profile, nil
}

// UpdateInterests обновляет интересы в профиле пользователя
func (s *Store) UpdateInterests(ctx context.Context, userID uuid.UUID, interests string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE profiles SET interests = $1 WHERE user_id = $2
	`, interests, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
