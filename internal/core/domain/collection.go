package domain

import "strings"

// DefaultCollectionKey is returned when a derived key would be shorter
// than the minimum allowed length.
const DefaultCollectionKey = "default_collection"

// Collection key length bounds.
const (
	MinKeyLength = 3
	MaxKeyLength = 512
)

// NormalizeCollectionKey derives a stable, storage-safe collection key
// from a source identifier (URL, file path, or serialised URL list).
//
// Every character outside [A-Za-z0-9._-] is replaced with '_', the
// result is truncated to MaxKeyLength characters, and leading/trailing
// runs of non-alphanumeric characters are stripped so the key starts
// and ends alphanumeric. If fewer than MinKeyLength characters remain,
// DefaultCollectionKey is returned.
//
// The function is pure and total: it never fails, and it is idempotent
// on its own output. Distinct sources can normalise to the same key
// (e.g. "a/b" and "a_b"); collisions are an accepted limitation rather
// than an error.
func NormalizeCollectionKey(source string) string {
	key := strings.Map(func(r rune) rune {
		if isKeyRune(r) {
			return r
		}
		return '_'
	}, source)

	// All runes are ASCII after mapping, so byte slicing is safe.
	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
	}

	key = strings.TrimLeftFunc(key, isNonAlphanumeric)
	key = strings.TrimRightFunc(key, isNonAlphanumeric)

	if len(key) < MinKeyLength {
		return DefaultCollectionKey
	}
	return key
}

func isKeyRune(r rune) bool {
	return isAlphanumeric(r) || r == '.' || r == '_' || r == '-'
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isNonAlphanumeric(r rune) bool {
	return !isAlphanumeric(r)
}
