package carttoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kinaskak/storefront-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Claims is the typed JWT carried by the cart cookie. The raw cart id never
// leaves the server unsigned: possession of the cookie proves the token was
// minted here and has not expired.
type Claims struct {
	CartID uuid.UUID `json:"cart_id"`
	jwt.RegisteredClaims
}

// Mint issues a signed cart token for the given cart id using the configured TTL.
func Mint(cfg config.CartTokenConfig, now time.Time, cartID uuid.UUID) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("cart token secret is required")
	}
	if cartID == uuid.Nil {
		return "", fmt.Errorf("cart id is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		return "", fmt.Errorf("cart token ttl must be positive")
	}

	claims := Claims{
		CartID: cartID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing cart token: %w", err)
	}
	return signed, nil
}

// Parse validates the token string and returns the cart id it carries.
func Parse(cfg config.CartTokenConfig, tokenString string) (uuid.UUID, error) {
	if cfg.Secret == "" {
		return uuid.Nil, fmt.Errorf("cart token secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.CartID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("cart token missing cart id")
	}
	return claims.CartID, nil
}
