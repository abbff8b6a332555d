// Package auth implements the session authority: it issues, verifies,
// refreshes and revokes the access/refresh token pairs that gate every
// protected operation.
package auth

import (
	"context"
	"log"
	"time"

	"kosh/internal/models"
	"kosh/internal/repositories"
	"kosh/internal/services/credentials"
)

type Service interface {
	Login(ctx context.Context, username, secret string) (accessToken, refreshToken string, err error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken, accessToken string) error
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*models.SessionClaims, error)
	RefreshTTL() time.Duration
}

type service struct {
	accounts repositories.AccountRepository
	verifier credentials.Verifier
	store    RevocationStore
	cfg      Config
}

func NewService(accounts repositories.AccountRepository, verifier credentials.Verifier, store RevocationStore, cfg Config) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	if verifier == nil {
		panic("credential verifier is required")
	}
	if store == nil {
		panic("revocation store is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "kosh-api"
	}
	return &service{
		accounts: accounts,
		verifier: verifier,
		store:    store,
		cfg:      cfg,
	}
}

// Login verifies the presented secret and mints a fresh token pair. Unknown
// usernames and wrong secrets both return ErrAuthenticationFailed so
// responses cannot be used to enumerate accounts.
func (s *service) Login(ctx context.Context, username, secret string) (string, string, error) {
	account, err := s.accounts.GetByUsername(username)
	if err != nil {
		log.Printf("login failed: no account for username %q", username)
		return "", "", ErrAuthenticationFailed
	}
	if !s.verifier.Verify(account.PasswordHash, secret) {
		log.Printf("login failed: bad secret for account %d", account.ID)
		return "", "", ErrAuthenticationFailed
	}

	accessToken, err := signToken(account.ID, account.Username, s.cfg.AccessSecret, s.cfg.Issuer, s.cfg.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := signToken(account.ID, account.Username, s.cfg.RefreshSecret, s.cfg.Issuer, s.cfg.RefreshTTL)
	if err != nil {
		return "", "", err
	}

	if err := s.store.AddRefreshToken(ctx, refreshToken, s.cfg.RefreshTTL); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Refresh mints a new access token for the subject of an active refresh
// token. The refresh token itself is not rotated; it stays usable until it
// expires or the session is logged out.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrUnauthenticated
	}
	if !s.store.HasRefreshToken(ctx, refreshToken) {
		return "", ErrInvalidToken
	}
	claims, err := parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", ErrInvalidToken
	}
	return signToken(claims.AccountID, claims.Username, s.cfg.AccessSecret, s.cfg.Issuer, s.cfg.AccessTTL)
}

// Logout revokes the session. The refresh token leaves the active set (a
// no-op if it was never there) and the access token, if presented, is
// blacklisted for its remaining natural lifetime.
func (s *service) Logout(ctx context.Context, refreshToken, accessToken string) error {
	if refreshToken != "" {
		if err := s.store.RemoveRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	if accessToken == "" {
		return nil
	}

	ttl := s.cfg.AccessTTL
	if claims, err := parseToken(accessToken, s.cfg.AccessSecret); err == nil && claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return s.store.BlacklistAccessToken(ctx, accessToken, ttl)
}

// Authenticate is the guard in front of every protected operation. Checks
// run in a fixed order, each with a distinct failure:
//  1. access token absent               -> ErrUnauthenticated
//  2. access token blacklisted          -> ErrRevoked
//  3. refresh token absent or inactive  -> ErrUnauthenticated
//  4. access token unverifiable/expired -> ErrInvalidToken
//
// Requiring an active refresh token alongside the access token binds every
// call to a live session: logout kills all access tokens of that session,
// not only the one that was blacklisted.
func (s *service) Authenticate(ctx context.Context, accessToken, refreshToken string) (*models.SessionClaims, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}
	if s.store.IsAccessTokenBlacklisted(ctx, accessToken) {
		return nil, ErrRevoked
	}
	if refreshToken == "" || !s.store.HasRefreshToken(ctx, refreshToken) {
		return nil, ErrUnauthenticated
	}
	claims, err := parseToken(accessToken, s.cfg.AccessSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *service) RefreshTTL() time.Duration {
	return s.cfg.RefreshTTL
}
