// Package repository содержит реализации репозиториев для работы с базой данных.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"runmix/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// UserRepository реализует интерфейс model.UserRepository
type UserRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *bun.DB, logger *zap.Logger) model.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(id int) (*model.User, error) {
	ctx := context.Background()
	var user model.User

	err := r.db.NewSelect().Model(&user).Where("u.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetPreference получает настройки календаря пользователя
func (r *UserRepository) GetPreference(userID int) (*model.Preference, error) {
	ctx := context.Background()
	var preference model.Preference

	err := r.db.NewSelect().Model(&preference).Where("pref.user_id = ?", userID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}

	return &preference, nil
}

// GetAuthentication получает учетные данные пользователя для провайдера
func (r *UserRepository) GetAuthentication(userID int, provider string) (*model.Authentication, error) {
	ctx := context.Background()
	var auth model.Authentication

	err := r.db.NewSelect().Model(&auth).
		Where("auth.user_id = ?", userID).
		Where("auth.provider = ?", provider).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get authentication: %w", err)
	}

	return &auth, nil
}

// HasActiveMusicRequest сообщает, есть ли у пользователя активный
// запрос на генерацию музыки
func (r *UserRepository) HasActiveMusicRequest(userID int) (bool, error) {
	ctx := context.Background()

	exists, err := r.db.NewSelect().Model((*model.MusicRequest)(nil)).
		Where("mr.user_id = ?", userID).
		Where("mr.active = ?", true).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check active music request: %w", err)
	}

	return exists, nil
}

// GetActiveMusicRequestUserIDs возвращает пользователей с активным
// запросом на генерацию музыки
func (r *UserRepository) GetActiveMusicRequestUserIDs() ([]int, error) {
	ctx := context.Background()
	var userIDs []int

	err := r.db.NewSelect().Model((*model.MusicRequest)(nil)).
		Column("mr.user_id").
		Where("mr.active = ?", true).
		Order("mr.user_id ASC").
		Scan(ctx, &userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users with active music requests: %w", err)
	}

	return userIDs, nil
}
