// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package secret generates opaque bearer values. Only their SHA-256 digest is
// ever persisted.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the entropy of every generated token, 256 bits.
const TokenBytes = 32

// NewToken returns a url-safe random token and the hash to store for it.
func NewToken() (token, hash string, err error) {
	return newToken(TokenBytes)
}

func newToken(n int) (string, string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return token, Hash(token), nil
}

// Hash is the one-way digest used as the storage key of a token.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Equal compares two digests in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Matches reports whether token hashes to hash, in constant time.
func Matches(token, hash string) bool {
	return Equal(Hash(token), hash)
}
