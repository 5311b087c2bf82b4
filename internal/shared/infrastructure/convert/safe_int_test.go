package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32Clamped(t *testing.T) {
	t.Run("negative breaker thresholds clamp to zero", func(t *testing.T) {
		assert.Equal(t, uint32(0), IntToUint32Clamped(-3))
	})

	t.Run("values in range pass through", func(t *testing.T) {
		assert.Equal(t, uint32(7), IntToUint32Clamped(7))
	})

	t.Run("oversized values clamp to the maximum", func(t *testing.T) {
		assert.Equal(t, uint32(math.MaxUint32), IntToUint32Clamped(math.MaxUint32+10))
	})
}

func TestIntToInt32Clamped(t *testing.T) {
	assert.Equal(t, int32(25), IntToInt32Clamped(25))
	assert.Equal(t, int32(math.MaxInt32), IntToInt32Clamped(math.MaxInt32+1))
	assert.Equal(t, int32(math.MinInt32), IntToInt32Clamped(math.MinInt32-1))
}
