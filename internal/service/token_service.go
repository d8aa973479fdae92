package service

import (
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mrstrict/internal/config"
	"mrstrict/internal/domain"
)

const accessAudience = "access"

// Claims represents the JWT claims carried by API access tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
}

// IssuedToken is a signed access token with its expiry.
type IssuedToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenService issues and validates API access tokens.
type TokenService interface {
	Issue(userID uuid.UUID, email string, ttl time.Duration) (*IssuedToken, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenService struct {
	cfg config.JWTConfig
	now func() time.Time
}

// NewTokenService creates a new TokenService implementation.
func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{cfg: cfg, now: time.Now}
}

// Issue signs an access token for userID. A non-positive ttl uses the
// configured access token expiry.
func (s *tokenService) Issue(userID uuid.UUID, email string, ttl time.Duration) (*IssuedToken, error) {
	if ttl <= 0 {
		ttl = s.cfg.AccessTokenExpiry
	}
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		UserID: userID,
		Email:  email,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("token.Issue: signing access token: %w", err)
	}
	return &IssuedToken{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

func (s *tokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}

	aud, _ := claims.GetAudience()
	if !slices.Contains(aud, accessAudience) {
		return nil, domain.ErrUnauthorized
	}
	if claims.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
