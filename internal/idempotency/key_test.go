package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey_CanonicalV4(t *testing.T) {
	gen := NewGenerator()

	for i := 0; i < 1000; i++ {
		key := gen.NewKey()
		require.True(t, IsValidKey(key), "key %q is not canonical v4", key)
		assert.Equal(t, byte('4'), key[14])
		assert.Contains(t, "89ab", string(key[19]))
	}
}

func TestNewKey_Unique(t *testing.T) {
	n := 1_000_000
	if testing.Short() {
		n = 10_000
	}

	gen := NewGenerator()
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		key := gen.NewKey()
		_, dup := seen[key]
		require.False(t, dup, "duplicate key after %d draws", i)
		seen[key] = struct{}{}
	}
}

func TestIsValidKey(t *testing.T) {
	assert.False(t, IsValidKey(""))
	assert.False(t, IsValidKey("xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"))
	assert.False(t, IsValidKey("6ba7b810-9dad-11d1-80b4-00c04fd430c8"))
	assert.True(t, IsValidKey("3b241101-e2bb-4255-8caf-4136c566a962"))
}
