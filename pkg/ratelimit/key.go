package ratelimit

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrymomot/vaultguard/pkg/clientip"
)

// KeyFunc maps an inbound request to the identity bucket used for quota
// accounting. An empty result means the request cannot be bucketed and
// bypasses rate limiting.
type KeyFunc func(*http.Request) string

// DeriveKey is the default derivation chain: authenticated bearer subject,
// else client network address, else a hash of the declared client identifier.
// The subject comes first so that one authenticated user behind a NAT or
// corporate proxy is not bucketed together with everyone sharing the address.
func DeriveKey(r *http.Request) string {
	if sub := BearerSubject(r); sub != "" {
		return "user:" + sub
	}
	if ip := clientip.GetIP(r); ip != "" {
		return "ip:" + ip
	}
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return "client:" + hashKey(id)
	}
	return ""
}

// BearerSubject extracts the subject claim from a bearer token on the
// Authorization header. The payload is decoded without signature
// verification: the value only buckets quota accounting and grants nothing,
// and the middleware runs in front of the authentication layer that does
// verify. Returns "" when no parseable token is present.
func BearerSubject(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}

	parts := strings.Split(auth[len(prefix):], ".")
	if len(parts) != 3 {
		return ""
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return ""
	}

	var claims struct {
		Subject string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return ""
	}

	return claims.Subject
}

// hashKey reduces an arbitrary identifier to a stable 32-hex-char key so that
// client-supplied strings cannot bloat storage keys. 128 bits of the digest
// is plenty of collision resistance for bucketing.
func hashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:16])
}
