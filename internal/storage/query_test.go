package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	assert.Nil(t, normalizeValue(math.NaN()))
	assert.Nil(t, normalizeValue(math.Inf(1)))
	assert.Nil(t, normalizeValue(math.Inf(-1)))
	assert.Nil(t, normalizeValue(float32(math.NaN())))

	assert.Equal(t, 12.5, normalizeValue(12.5))
	assert.Equal(t, 12.5, normalizeValue(float32(12.5)))
	assert.Equal(t, "raw", normalizeValue([]byte("raw")))
	assert.Equal(t, int64(7), normalizeValue(int64(7)))
	assert.Nil(t, normalizeValue(nil))

	ts := time.Date(2023, 5, 14, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "2023-05-14T09:30:00Z", normalizeValue(ts))
}
