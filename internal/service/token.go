package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/streamhub/accounts/config"
	apperrors "github.com/streamhub/accounts/internal/errors"
)

// TokenKind selects which secret and lifetime a token is signed and verified
// with.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenService signs and verifies the two token kinds. It holds no state
// beyond configuration and is safe for concurrent use.
type TokenService struct {
	cfg *config.JWTConfig
}

func NewTokenService(cfg *config.JWTConfig) *TokenService {
	return &TokenService{cfg: cfg}
}

// IssueAccessToken signs a short-lived token carrying the user id.
// Failure here means signing-key misconfiguration and is not retried.
func (s *TokenService) IssueAccessToken(userID uint) (string, error) {
	return s.issue(userID, s.cfg.AccessSecret, s.cfg.AccessTTL)
}

// IssueRefreshToken signs the longer-lived token used only to obtain a new
// pair.
func (s *TokenService) IssueRefreshToken(userID uint) (string, error) {
	return s.issue(userID, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
}

func (s *TokenService) issue(userID uint, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id": userID,
		// iat has second resolution; jti keeps back-to-back tokens distinct
		// so rotation always changes the stored value.
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiration against the secret for kind and
// returns the embedded user id.
func (s *TokenService) Verify(tokenString string, kind TokenKind) (uint, error) {
	secret := s.cfg.AccessSecret
	if kind == TokenKindRefresh {
		secret = s.cfg.RefreshSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return 0, apperrors.WrapError(apperrors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, apperrors.ErrInvalidToken
	}

	// Numeric claims decode as float64
	idFloat, ok := claims["id"].(float64)
	if !ok {
		return 0, apperrors.ErrInvalidToken
	}

	return uint(idFloat), nil
}

// AccessTTLSeconds is the access token lifetime reported in responses.
func (s *TokenService) AccessTTLSeconds() int {
	return int(s.cfg.AccessTTL.Seconds())
}

// RefreshTTL is the refresh token lifetime, used for cookie expiry.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.cfg.RefreshTTL
}

// AccessTTL is the access token lifetime, used for cookie expiry.
func (s *TokenService) AccessTTL() time.Duration {
	return s.cfg.AccessTTL
}
