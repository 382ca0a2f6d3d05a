package cache

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// Fingerprint returns the content fingerprint for raw input bytes, scoped to
// a namespace so byte-identical inputs processed by different backends (front
// vs back side) do not collide. Identical input always yields the identical
// key; a single changed byte yields a different key with overwhelming
// probability.
func Fingerprint(namespace string, data []byte) string {
	hasher := blake3.New(32, nil)
	hasher.Write([]byte(namespace))
	hasher.Write([]byte{0}) // separator so namespace/data boundaries are unambiguous
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
