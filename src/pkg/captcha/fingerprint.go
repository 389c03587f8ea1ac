package captcha

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// StripDataURI drops an optional "data:<mime>;base64," prefix and surrounding
// whitespace, returning the bare base64 payload.
func StripDataURI(encoded string) string {
	encoded = strings.TrimSpace(encoded)
	if comma := strings.LastIndexByte(encoded, ','); comma >= 0 {
		encoded = encoded[comma+1:]
	}
	return encoded
}

// Fingerprint is the cache key of a base64 payload: 64-bit FNV-1a as 16 hex digits.
// Not collision resistant; only used for memoization.
func Fingerprint(payload string) string {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(payload))
	return fmt.Sprintf("%016x", hasher.Sum64())
}
