package ogimage

import (
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

// Version is bumped whenever the rendered output changes, which moves every
// image to a new URL.
const Version = 6

// RevisionLength is the number of characters in a revision token.
const RevisionLength = 10

// RevisionToken derives a short URL-safe token from the exact title bytes.
// The same title always yields the same token. No normalisation is done:
// "Hello" and "Hello " get different tokens.
func RevisionToken(title string) string {
	sum := blake2b.Sum256([]byte(title))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:RevisionLength]
}
