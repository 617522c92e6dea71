package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is the application data carried inside an access token.
type AccessTokenPayload struct {
	AdminID uuid.UUID
	Email   string
}

// AccessTokenClaims is the JWT claim set minted for admin sessions.
type AccessTokenClaims struct {
	AdminID string `json:"adm"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// Payload converts the raw claim strings back into typed payload fields.
func (c AccessTokenClaims) Payload() (AccessTokenPayload, error) {
	adminID, err := uuid.Parse(c.AdminID)
	if err != nil {
		return AccessTokenPayload{}, err
	}
	return AccessTokenPayload{AdminID: adminID, Email: c.Email}, nil
}
