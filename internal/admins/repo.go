package admins

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/db/models"
)

// Repository encapsulates admin-user persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an admin repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByEmail loads an admin by their lowercased email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := r.db.WithContext(ctx).
		First(&admin, "LOWER(email) = ?", strings.ToLower(email)).
		Error
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByID loads one admin.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := r.db.WithContext(ctx).First(&admin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// Create inserts a new admin.
func (r *Repository) Create(ctx context.Context, admin *models.AdminUser) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// TouchLastLogin stamps a successful sign-in.
func (r *Repository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminUser{}).
		Where("id = ?", id).
		Update("last_login_at", at).
		Error
}
