// Package shortener derives short base-62 codes for links.
//
// A code is the base-62 rendering of the SHA-256 digest of the original URL,
// the owner id and the creation instant, cut to the requested length. Codes
// are not guaranteed unique on their own; the store's unique index on active
// codes is what callers rely on, regenerating when it reports a conflict.
package shortener

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"

	"shorturl-api/internal/clock"
)

const (
	// DefaultLength is used when a non-positive length is requested.
	DefaultLength = 6

	// Alphabet lists the base-62 digits in value order.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	anonymousOwner = "null"
)

// Generator produces codes stamped with the time read from its clock.
type Generator struct {
	clock clock.Clock
}

func NewGenerator(c clock.Clock) *Generator {
	return &Generator{clock: c}
}

// Generate returns a code of exactly length characters for originalURL.
// ownerID is nil for anonymous links.
func (g *Generator) Generate(originalURL string, length int, ownerID *string) string {
	return Code(originalURL, ownerID, g.clock.Now(), length)
}

// Code is the pure form of Generate.
func Code(originalURL string, ownerID *string, at time.Time, length int) string {
	if length < 1 {
		length = DefaultLength
	}

	owner := anonymousOwner
	if ownerID != nil {
		owner = *ownerID
	}

	input := fmt.Sprintf("%s-%s-%d", originalURL, owner, at.UnixNano())
	digest := sha256.Sum256([]byte(input))

	encoded := Encode(new(big.Int).SetBytes(digest[:]))
	if len(encoded) < length {
		return strings.Repeat(Alphabet[:1], length-len(encoded)) + encoded
	}
	return encoded[:length]
}

// Encode renders n in base 62, most significant digit first. Zero encodes
// as "0". big.Int uses the same digit order as Alphabet for base 62.
func Encode(n *big.Int) string {
	return n.Text(len(Alphabet))
}
