package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
)

// keyVersion is mixed into every key. Bump it when the encoding of cached
// layout results changes so stale entries miss.
const keyVersion = "v1"

// hashKey returns "prefix:sha256(keyVersion, parts...)". Parts are length
// prefixed so ("ab", "c") and ("a", "bc") hash differently.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	writePart(h, keyVersion)
	for _, p := range parts {
		writePart(h, p)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

func writePart(h hash.Hash, s string) {
	n := len(s)
	h.Write([]byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)})
	h.Write([]byte(s))
}

// Hash returns the hex SHA-256 of data. Graph hashes are computed over the
// canonical JSON of a declarative graph.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
