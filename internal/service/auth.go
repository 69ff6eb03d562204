package service

import (
	"fmt"
	"time"

	"github.com/fizzlab/salesintel/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// AuthService issues and validates the demo access tokens. There is a single
// configured API client; the secret is bcrypt-hashed at startup so plaintext
// never sits in memory longer than Load().
type AuthService struct {
	clientID   string
	secretHash []byte
	jwtSecret  []byte
	accessTTL  time.Duration
	logger     *zap.Logger
}

// NewAuthService creates the auth service from the configured demo client
// credentials.
func NewAuthService(clientID, clientSecret, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(clientSecret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash client secret: %w", err)
	}
	return &AuthService{
		clientID:   clientID,
		secretHash: hash,
		jwtSecret:  []byte(jwtSecret),
		accessTTL:  accessTTL,
		logger:     logger,
	}, nil
}

// JWTClaims are the custom claims carried in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// IssueToken exchanges client credentials for a signed access token.
func (s *AuthService) IssueToken(req *domain.TokenRequest) (*domain.TokenResponse, error) {
	if req.ClientID != s.clientID ||
		bcrypt.CompareHashAndPassword(s.secretHash, []byte(req.ClientSecret)) != nil {
		s.logger.Warn("token exchange rejected", zap.String("client_id", req.ClientID))
		return nil, &domain.ErrUnauthorized{Message: "invalid client credentials"}
	}

	now := time.Now()
	claims := &JWTClaims{
		Sub:  req.ClientID,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.accessTTL.Seconds()),
	}, nil
}

// ValidateAccessToken parses and verifies a bearer token. Used by the auth
// middleware on mutating routes.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	claims, ok := token.Claims.(*JWTClaims)
	if !ok || claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token claims"}
	}
	return claims, nil
}
