package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// ProxySignatureParam is the query parameter carrying the app proxy signature.
const ProxySignatureParam = "signature"

// SignProxyQuery computes the app proxy signature for query: every parameter
// except the signature, sorted by key, rendered as key=value (multiple values
// joined by commas) and concatenated without separators, then HMAC-SHA256 hex.
func SignProxyQuery(secret string, query url.Values) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == ProxySignatureParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strings.Join(query[k], ","))
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyProxySignature reports whether query carries a valid app proxy signature.
func VerifyProxySignature(secret string, query url.Values) bool {
	provided := strings.ToLower(strings.TrimSpace(query.Get(ProxySignatureParam)))
	if secret == "" || provided == "" {
		return false
	}
	expected := SignProxyQuery(secret, query)
	return hmac.Equal([]byte(expected), []byte(provided))
}
