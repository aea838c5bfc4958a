// internal/pkg/auth/jwt.go
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/your-org/campus-delivery-backend/internal/config"
)

// Claims represents the JWT claims issued by the identity provider
type Claims struct {
	Email        string `json:"email"`
	Role         string `json:"role"`
	CampusID     uint   `json:"campus_id,omitempty"`
	RestaurantID uint   `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT operations
type JWTManager struct {
	config *config.Config
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		config: cfg,
	}
}

// GenerateToken signs a token for a principal. Production tokens come from the
// identity provider; this is used by local tooling and tests.
func (j *JWTManager) GenerateToken(p Principal, ttl time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		Email:        p.Email,
		Role:         string(p.Role),
		CampusID:     p.CampusID,
		RestaurantID: p.RestaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.JWT.Issuer,
			Subject:   p.UserID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.JWT.Secret))
}

// ValidateToken validates and parses a JWT token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if j.config.JWT.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.config.JWT.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.config.JWT.Secret), nil
	}, opts...)

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("token subject not specified")
	}

	return claims, nil
}

// Authenticate validates a token and turns its claims into a Principal
func (j *JWTManager) Authenticate(tokenString string) (Principal, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return Principal{}, err
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return Principal{}, err
	}

	return Principal{
		UserID:       claims.Subject,
		Email:        claims.Email,
		Role:         role,
		CampusID:     claims.CampusID,
		RestaurantID: claims.RestaurantID,
	}, nil
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}
