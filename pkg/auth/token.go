package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ahonkala/meepledex-backend/pkg/config"
	"github.com/ahonkala/meepledex-backend/pkg/errors"
)

// MintAccessToken signs an HS256 access token for the admin payload.
func MintAccessToken(payload AccessTokenPayload, cfg config.JWTConfig, now time.Time) (string, error) {
	if err := validateConfig(cfg); err != nil {
		return "", err
	}
	if payload.AdminID == uuid.Nil {
		return "", fmt.Errorf("admin id is required")
	}

	claims := AccessTokenClaims{
		AdminID: payload.AdminID.String(),
		Email:   payload.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   payload.AdminID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL())),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken validates the token signature, expiry and issuer and
// returns the embedded payload.
func ParseAccessToken(tokenString string, cfg config.JWTConfig) (AccessTokenPayload, error) {
	if err := validateConfig(cfg); err != nil {
		return AccessTokenPayload{}, err
	}

	var claims AccessTokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return AccessTokenPayload{}, errors.Wrap(errors.CodeUnauthorized, err, "invalid access token")
	}
	if !token.Valid {
		return AccessTokenPayload{}, errors.New(errors.CodeUnauthorized, "invalid access token")
	}

	payload, err := claims.Payload()
	if err != nil {
		return AccessTokenPayload{}, errors.Wrap(errors.CodeUnauthorized, err, "malformed token claims")
	}
	return payload, nil
}

func validateConfig(cfg config.JWTConfig) error {
	if cfg.Secret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if cfg.Issuer == "" {
		return fmt.Errorf("jwt issuer is required")
	}
	if cfg.AccessTokenTTL() <= 0 {
		return fmt.Errorf("jwt expiration must be positive")
	}
	return nil
}
