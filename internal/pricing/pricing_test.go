package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateValidOrders(t *testing.T) {
	tests := []struct {
		jarSize  string
		quantity string
		want     float64
	}{
		{"250g", "1", 300},
		{"500g", "2", 1100},
		{"1kg", "3", 3000},
		{"500g", "1.5", 825},
	}

	for _, tc := range tests {
		got, err := Calculate(tc.jarSize, tc.quantity)
		require.NoError(t, err, "size=%s qty=%s", tc.jarSize, tc.quantity)
		assert.Equal(t, tc.want, got, "size=%s qty=%s", tc.jarSize, tc.quantity)
	}
}

func TestCalculateUnknownJarSize(t *testing.T) {
	for _, size := range []string{"", "2kg", "250G", "honey"} {
		_, err := Calculate(size, "2")
		assert.ErrorIs(t, err, ErrInvalidOrder, "size=%q", size)
	}
}

func TestCalculateBadQuantity(t *testing.T) {
	for _, qty := range []string{"", "0", "-1", "abc", "NaN", "Inf", "+Inf"} {
		_, err := Calculate("500g", qty)
		assert.ErrorIs(t, err, ErrInvalidOrder, "qty=%q", qty)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	first, err := Calculate("1kg", "4")
	require.NoError(t, err)
	second, err := Calculate("1kg", "4")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
