package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/config"
	"github.com/rescue-nerd/nexus-cart-studio-sub000/internal/datamodels/user"
)

// Claims are the session token payload: the full Identity, so request
// handling never needs a user lookup on the hot path.
type Claims struct {
	UID     string    `json:"uid"`
	Role    user.Role `json:"role"`
	StoreID int64     `json:"store_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken issues a signed session token for u.
func GenerateToken(cfg *config.JWTConfig, u *user.User) (string, error) {
	now := time.Now()
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	claims := Claims{
		UID:     u.UID,
		Role:    u.Role,
		StoreID: u.StoreID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseToken verifies a session token and returns the caller identity.
func ParseToken(cfg *config.JWTConfig, tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &Identity{UID: claims.UID, Role: claims.Role, StoreID: claims.StoreID}, nil
}
