package auth

import (
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokenClaims are the claims of a Shopify admin session token.
// Dest carries the shop origin (https://<shop>.myshopify.com) and Subject the
// staff user id.
type SessionTokenClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// ShopDomain returns the host of the dest claim.
func (c *SessionTokenClaims) ShopDomain() string {
	if c == nil {
		return ""
	}
	dest := strings.TrimSpace(c.Dest)
	if dest == "" {
		return ""
	}
	if u, err := url.Parse(dest); err == nil && u.Host != "" {
		return strings.ToLower(u.Host)
	}
	return strings.ToLower(dest)
}
