package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, int64(0), CeilDiv(0, 4))
	assert.Equal(t, int64(1), CeilDiv(1, 4))
	assert.Equal(t, int64(1), CeilDiv(4, 4))
	assert.Equal(t, int64(2), CeilDiv(5, 4))
	assert.Equal(t, int64(math.MaxInt64), CeilDiv(math.MaxInt64, 1))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, int64(2), Min(2, 3))
	assert.Equal(t, int64(3), Max(2, 3))
}
