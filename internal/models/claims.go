package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the payload carried by both access and refresh tokens.
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID uint   `json:"account_id"`
	Username  string `json:"username"`
}
