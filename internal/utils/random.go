package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomToken is an opaque 64-char refresh token.
func RandomToken() string {
	return GenerateRandomString(64)
}

// GenerateRandomString returns length hex characters from crypto/rand.
func GenerateRandomString(length int) string {
	b := make([]byte, (length+1)/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)[:length]
}
