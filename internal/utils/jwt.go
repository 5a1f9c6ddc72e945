package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/white/lead-management/internal/models"
)

// JWTService validates access tokens minted by the identity service. Both
// sides share an HS256 secret.
type JWTService struct {
	secret      []byte
	issuer      string
	tokenExpiry time.Duration
}

// AccessTokenClaims represents the claims in an access token
type AccessTokenClaims struct {
	UserID   string `json:"sub"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

// NewJWTService creates a new JWT service
func NewJWTService(secret, issuer string, tokenExpiryMinutes int) (*JWTService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt shared secret is required")
	}
	return &JWTService{
		secret:      []byte(secret),
		issuer:      issuer,
		tokenExpiry: time.Duration(tokenExpiryMinutes) * time.Minute,
	}, nil
}

// GenerateAccessToken mints a token. Used by tests and local tooling; in
// production the identity service issues tokens.
func (s *JWTService) GenerateAccessToken(user *models.User) (string, error) {
	tenantID := user.AdminID
	if user.Role == models.RoleAdmin {
		tenantID = user.ID
	}

	claims := AccessTokenClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateAccessToken validates an access token and returns the claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*AccessTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*AccessTokenClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
