// Package identity derives stable identifiers from semantic inputs so that
// re-ingesting identical data produces the same row ids instead of duplicates.
package identity

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Derive hashes an ordered tuple of strings into a fixed-width hex id.
// Each part is length-prefixed so ("ab","c") and ("a","bc") differ.
// Non-cryptographic on purpose: inputs are not adversarial.
func Derive(parts ...string) string {
	h := fnv.New64a()
	var prefix [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(p)))
		_, _ = h.Write(prefix[:])
		_, _ = h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum64())
}
