package auth

import (
	"fmt"
	"time"

	"github.com/angelmondragon/wishlist-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// sessionTokenLeeway absorbs clock skew between the admin host and this service.
const sessionTokenLeeway = 5 * time.Second

// MintSessionToken signs an admin session token for shop. It mirrors what the
// host admin issues and backs local development and tests.
func MintSessionToken(cfg config.ShopifyConfig, now time.Time, shop string, ttl time.Duration) (string, error) {
	if cfg.APISecret == "" {
		return "", fmt.Errorf("shopify api secret is required")
	}
	if cfg.APIKey == "" {
		return "", fmt.Errorf("shopify api key is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("session token ttl must be positive")
	}

	dest := "https://" + shop
	claims := SessionTokenClaims{
		Dest: dest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    dest + "/admin",
			Audience:  jwt.ClaimStrings{cfg.APIKey},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.APISecret))
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates an admin session token and returns its claims.
func ParseSessionToken(cfg config.ShopifyConfig, tokenString string) (*SessionTokenClaims, error) {
	if cfg.APISecret == "" {
		return nil, fmt.Errorf("shopify api secret is required")
	}

	claims := &SessionTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.APISecret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithAudience(cfg.APIKey),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(sessionTokenLeeway),
	)
	if err != nil {
		return nil, err
	}
	if claims.ShopDomain() == "" {
		return nil, fmt.Errorf("session token missing dest claim")
	}

	return claims, nil
}
