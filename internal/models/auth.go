package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds administrator credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued bearer token.
type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	Name        string    `json:"name"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// AdminClaims is the JWT payload for administrator tokens. Name is recorded
// as processedBy on administrative writes.
type AdminClaims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}
