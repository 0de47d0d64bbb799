package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256HasherDeterministic(t *testing.T) {
	t.Parallel()

	hasher := NewSHA256Hasher("salt")

	first, err := hasher.Hash("password123")
	require.NoError(t, err)
	second, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, "password123", first)
}

func TestSHA256HasherSaltMatters(t *testing.T) {
	t.Parallel()

	a := NewSHA256Hasher("salt-a")
	b := NewSHA256Hasher("salt-b")

	ha, err := a.Hash("password123")
	require.NoError(t, err)
	hb, err := b.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}

func TestSHA256HasherInputMatters(t *testing.T) {
	t.Parallel()

	hasher := NewSHA256Hasher("salt")

	ha, err := hasher.Hash("password123")
	require.NoError(t, err)
	hb, err := hasher.Hash("password124")
	require.NoError(t, err)

	assert.NotEqual(t, ha, hb)
}
