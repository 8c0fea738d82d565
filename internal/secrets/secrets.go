// Package secrets implements one-way salted hashing and verification of
// opaque secrets (passwords, serialized refresh tokens) on top of bcrypt.
//
// bcrypt only consumes the first 72 bytes of its input, and recent versions
// refuse longer inputs outright. Serialized refresh tokens are several
// hundred bytes, so every secret is first reduced to a sha256 digest and
// base64-encoded before it reaches bcrypt. The encoding keeps the digest
// free of NUL bytes, which some bcrypt implementations treat as terminators.
package secrets

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when the caller passes a cost below
// bcrypt.MinCost.
const DefaultCost = 10

func digest(secret []byte) []byte {
	sum := sha256.Sum256(secret)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

// Hash returns a salted, adaptive one-way hash of secret. The salt is
// generated internally by bcrypt and embedded in the returned value.
func Hash(secret []byte, cost int) ([]byte, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultCost
	}
	return bcrypt.GenerateFromPassword(digest(secret), cost)
}

// Verify reports whether secret matches hashed. It never returns an error:
// a mismatch, a malformed hash, or an empty input all yield false. The
// underlying comparison runs in time independent of where a mismatch occurs.
func Verify(secret, hashed []byte) bool {
	return bcrypt.CompareHashAndPassword(hashed, digest(secret)) == nil
}
