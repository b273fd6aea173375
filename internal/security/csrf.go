package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTokenInvalid indicates a token that is malformed or whose
	// signature does not match.
	ErrTokenInvalid = errors.New("security: invalid token")
	// ErrTokenExpired indicates a well-formed token past its TTL.
	ErrTokenExpired = errors.New("security: token expired")
)

// TokenAuthority issues and verifies HMAC-signed form tokens bound to a
// page identifier. Tokens are stateless: nothing is stored server-side.
type TokenAuthority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenAuthority creates a token authority. Returns nil when the
// secret is empty, which callers treat as token checking disabled.
func NewTokenAuthority(secret string, ttl time.Duration) *TokenAuthority {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenAuthority{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a token for the given page identifier. The token encodes
// the page, the issue timestamp, and an HMAC-SHA256 signature over both.
func (a *TokenAuthority) Issue(pageID string) string {
	issued := a.now().Unix()
	payload := fmt.Sprintf("%s.%d", pageID, issued)
	sig := a.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + "." + sig))
}

// Verify checks that token was issued for pageID and has not expired.
func (a *TokenAuthority) Verify(token, pageID string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrTokenInvalid
	}

	// Page identifiers may contain dots, so split from the right.
	decoded := string(raw)
	sigIdx := strings.LastIndex(decoded, ".")
	if sigIdx < 0 {
		return ErrTokenInvalid
	}
	issuedIdx := strings.LastIndex(decoded[:sigIdx], ".")
	if issuedIdx < 0 {
		return ErrTokenInvalid
	}
	page, issuedStr, sig := decoded[:issuedIdx], decoded[issuedIdx+1:sigIdx], decoded[sigIdx+1:]

	payload := page + "." + issuedStr
	expected := a.sign(payload)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return ErrTokenInvalid
	}

	if page != pageID {
		return ErrTokenInvalid
	}

	issued, err := strconv.ParseInt(issuedStr, 10, 64)
	if err != nil {
		return ErrTokenInvalid
	}
	issuedAt := time.Unix(issued, 0)
	if a.now().Sub(issuedAt) > a.ttl {
		return ErrTokenExpired
	}

	return nil
}

func (a *TokenAuthority) sign(payload string) string {
	mac := hmac.New(sha256.New, a.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
