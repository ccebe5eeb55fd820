package auth

import (
	"encoding/hex"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Signer produces tamper-evident "<value>|<hmac>" tokens for the session cookie.
type Signer struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewSigner returns a Signer keyed with secret (HMAC-SHA256).
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), method: jwt.SigningMethodHS256}
}

// Sign appends the hex HMAC of value.
func (s *Signer) Sign(value string) string {
	sig, err := s.method.Sign(value, s.secret)
	if err != nil {
		// HMAC signing only fails on a non-[]byte key, which NewSigner rules out
		panic(err)
	}
	return value + "|" + hex.EncodeToString(sig)
}

// Unsign returns the signed value when the HMAC matches. Any malformed or
// tampered token reports false.
func (s *Signer) Unsign(token string) (string, bool) {
	i := strings.LastIndex(token, "|")
	if i < 0 {
		return "", false
	}
	value, encoded := token[:i], token[i+1:]
	sig, err := hex.DecodeString(encoded)
	if err != nil || len(sig) == 0 {
		return "", false
	}
	if err := s.method.Verify(value, sig, s.secret); err != nil {
		return "", false
	}
	return value, true
}
