package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomCodeLength(t *testing.T) {
	t.Parallel()

	generator := NewGOTPGenerator()

	for _, length := range []int{4, 6, 8} {
		code := generator.RandomCode(length)
		assert.Len(t, code, length)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
	}
}
