package idempotency

import (
	"ledgervault/internal/validation"

	"github.com/google/uuid"
)

// Generator mints idempotency keys for transfer submissions.
type Generator interface {
	NewKey() string
}

// UUIDGenerator produces canonical version-4 UUID strings.
type UUIDGenerator struct{}

func NewGenerator() Generator {
	return UUIDGenerator{}
}

// NewKey returns a fresh key. Every call yields a new value; keys are never cached.
func (UUIDGenerator) NewKey() string {
	return uuid.NewString()
}

// IsValidKey reports whether key has the canonical v4 form
// (8-4-4-4-12 lowercase hex, version nibble 4, variant nibble 8, 9, a or b).
func IsValidKey(key string) bool {
	return validation.IsCanonicalUUIDv4(key)
}
