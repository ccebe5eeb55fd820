// Package auth holds the credential model: salted password digests and signed session values.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"strings"
)

const (
	saltLength  = 5
	saltLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// MakeSalt returns a random alphabetic salt.
func MakeSalt() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(saltLetters)))
	for i := 0; i < saltLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			panic(err)
		}
		sb.WriteByte(saltLetters[n.Int64()])
	}
	return sb.String()
}

// HashPassword returns "<salt>,<sha256 hex of name+password+salt>".
// An empty salt generates a fresh one.
func HashPassword(name, password, salt string) string {
	if salt == "" {
		salt = MakeSalt()
	}
	sum := sha256.Sum256([]byte(name + password + salt))
	return salt + "," + hex.EncodeToString(sum[:])
}

// VerifyPassword recomputes the digest with the salt embedded in stored.
func VerifyPassword(name, password, stored string) bool {
	salt, _, ok := strings.Cut(stored, ",")
	if !ok || salt == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashPassword(name, password, salt)), []byte(stored)) == 1
}
