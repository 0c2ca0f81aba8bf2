package service

import (
	"errors"
	"fmt"
	"time"

	"paytrust-gateway/internal/core/domain"
	"paytrust-gateway/internal/core/ports"
	"paytrust-gateway/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTTokenService implements ports.TokenService using HS256 JWT. Access and
// refresh tokens are signed with independent secrets, so one kind can never
// pass verification as the other.
type JWTTokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	issuer        string
}

// NewJWTTokenService creates a new JWT token service.
func NewJWTTokenService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		issuer:        issuer,
	}
}

// IssueAccess creates a short-lived access token.
func (s *JWTTokenService) IssueAccess(userID uuid.UUID, role domain.Role) (string, time.Time, error) {
	return s.issue(userID, role, s.accessSecret, s.accessExpiry)
}

// IssueRefresh creates a long-lived refresh token.
func (s *JWTTokenService) IssueRefresh(userID uuid.UUID, role domain.Role) (string, time.Time, error) {
	return s.issue(userID, role, s.refreshSecret, s.refreshExpiry)
}

func (s *JWTTokenService) issue(userID uuid.UUID, role domain.Role, secret []byte, expiry time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiry)

	claims := jwt.MapClaims{
		"userId": userID.String(),
		"role":   string(role),
		"iat":    now.Unix(),
		"exp":    expiresAt.Unix(),
		"iss":    s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// VerifyAccess parses and validates an access token.
func (s *JWTTokenService) VerifyAccess(tokenString string) (*ports.TokenClaims, error) {
	return s.verify(tokenString, s.accessSecret)
}

// VerifyRefresh parses and validates a refresh token.
func (s *JWTTokenService) VerifyRefresh(tokenString string) (*ports.TokenClaims, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *JWTTokenService) verify(tokenString string, secret []byte) (*ports.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		// Expiry gets its own code; every other parse failure is opaque.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.ErrTokenExpired()
		}
		return nil, apperror.ErrInvalidToken()
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperror.ErrInvalidToken()
	}

	sub, ok := claims["userId"].(string)
	if !ok {
		return nil, apperror.ErrInvalidToken()
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperror.ErrInvalidToken()
	}

	roleStr, _ := claims["role"].(string)

	return &ports.TokenClaims{
		UserID: userID,
		Role:   domain.Role(roleStr),
	}, nil
}
