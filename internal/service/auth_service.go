package service

import (
	"time"

	"mediqa/casesim/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates tab tokens
type AuthService struct {
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// NewTabID returns a fresh tab id
func NewTabID() string {
	return "tab_" + uuid.New().String()
}

// GenerateTabToken creates a token scoped to tabID
func (s *AuthService) GenerateTabToken(tabID string) (string, error) {
	now := s.now()
	claims := &model.TabClaims{
		TabID: tabID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.Wrap(err, "sign tab token")
	}
	return signed, nil
}

// ValidateTabToken validates a tab JWT and returns claims
func (s *AuthService) ValidateTabToken(tokenString string) (*model.TabClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.TabClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.TabClaims)
	if !ok || !token.Valid || claims.TabID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
