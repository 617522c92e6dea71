package admins

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ahonkala/meepledex-backend/pkg/auth"
	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/db/models"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
	"github.com/ahonkala/meepledex-backend/pkg/logger"
	"github.com/ahonkala/meepledex-backend/pkg/security"
)

func setupAdminsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS admin_users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func adminsJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "meepledex-test",
		ExpirationMinutes: 30,
	}
}

func seedAdmin(t *testing.T, db *gorm.DB, email, password string, active bool) *models.AdminUser {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     active,
	}
	require.NoError(t, db.Create(admin).Error)
	if !active {
		// gorm skips zero-value fields that carry a default tag, so force
		// the flag to actually persist as false.
		require.NoError(t, db.Model(admin).Update("is_active", false).Error)
	}
	return admin
}

func newAdminsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:   NewRepository(db),
		JWT:    adminsJWTConfig(),
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc
}

func TestLoginSuccessMintsToken(t *testing.T) {
	db := setupAdminsTestDB(t)
	admin := seedAdmin(t, db, "owner@meepledex.app", "correct horse", true)
	svc := newAdminsService(t, db)

	result, err := svc.Login(context.Background(), "Owner@Meepledex.App", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, "owner@meepledex.app", result.Email)

	payload, err := auth.ParseAccessToken(result.AccessToken, adminsJWTConfig())
	require.NoError(t, err)
	assert.Equal(t, admin.ID, payload.AdminID)

	var reloaded models.AdminUser
	require.NoError(t, db.First(&reloaded, "id = ?", admin.ID).Error)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := setupAdminsTestDB(t)
	seedAdmin(t, db, "owner@meepledex.app", "correct horse", true)
	svc := newAdminsService(t, db)
	ctx := context.Background()

	// wrong password and unknown email look identical to the caller
	_, err := svc.Login(ctx, "owner@meepledex.app", "wrong")
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeUnauthorized, typed.Code())

	_, err = svc.Login(ctx, "nobody@meepledex.app", "correct horse")
	typed = errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsInactiveAdmin(t *testing.T) {
	db := setupAdminsTestDB(t)
	seedAdmin(t, db, "gone@meepledex.app", "correct horse", false)
	svc := newAdminsService(t, db)

	_, err := svc.Login(context.Background(), "gone@meepledex.app", "correct horse")
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeUnauthorized, typed.Code())
}

func TestLoginValidatesInput(t *testing.T) {
	db := setupAdminsTestDB(t)
	svc := newAdminsService(t, db)

	_, err := svc.Login(context.Background(), "", "")
	typed := errors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, errors.CodeValidation, typed.Code())
}
