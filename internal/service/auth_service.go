package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"formulab/internal/config"
	"formulab/internal/domain"
)

// Claims represents the JWT claims for an operator session.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// Token holds a signed access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// LoginInput is the DTO for login requests.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthService defines the authentication contract. A plant install has a
// single operator account configured through the environment; there is no
// user store.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*Token, error)
	ValidateToken(tokenString string) (*Claims, error)
	Enabled() bool
}

type authService struct {
	auth config.AuthConfig
	jwt  config.JWTConfig
}

// NewAuthService creates a new AuthService implementation.
func NewAuthService(auth config.AuthConfig, jwtCfg config.JWTConfig) AuthService {
	return &authService{auth: auth, jwt: jwtCfg}
}

// Enabled reports whether authentication is configured. With no password
// hash set the API runs open, which is the expected mode on an isolated
// plant machine.
func (s *authService) Enabled() bool {
	return s.auth.PasswordHash != ""
}

func (s *authService) Login(_ context.Context, input LoginInput) (*Token, error) {
	if !s.Enabled() {
		return nil, domain.ErrInvalidCredentials
	}
	if input.Username != s.auth.Username {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.auth.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return s.generateToken(input.Username)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwt.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (s *authService) generateToken(username string) (*Token, error) {
	now := time.Now()
	expiry := now.Add(s.jwt.AccessTokenExpiry)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &Token{AccessToken: signed, ExpiresAt: expiry}, nil
}
