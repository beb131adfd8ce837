package mathx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqrtSmall(t *testing.T) {
	tests := []struct {
		n    int64
		want int64
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{15, 3},
		{16, 4},
		{17, 4},
		{99, 9},
		{100, 10},
		{2500, 50},
		{2501, 50},
	}

	for _, tt := range tests {
		got, err := Sqrt(tt.n)
		require.NoError(t, err, "n=%d", tt.n)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestSqrtBounds(t *testing.T) {
	for n := int64(0); n <= 200_000; n++ {
		r, err := Sqrt(n)
		require.NoError(t, err)
		if r*r > n || (r+1)*(r+1) <= n {
			t.Fatalf("Sqrt(%d) = %d violates bounds", n, r)
		}
	}
}

func TestSqrtLarge(t *testing.T) {
	inputs := []int64{
		1 << 40,
		(1 << 40) - 1,
		3037000499 * 3037000499,
		math.MaxInt64,
		math.MaxInt64 - 1,
	}

	for _, n := range inputs {
		r, err := Sqrt(n)
		require.NoError(t, err, "n=%d", n)
		assert.True(t, verify(r, n), "n=%d root=%d", n, r)
	}
	r, _ := Sqrt(math.MaxInt64)
	assert.Equal(t, int64(3037000499), r)
}

func TestSqrtNegative(t *testing.T) {
	r, err := Sqrt(-5)
	require.ErrorIs(t, err, ErrDomain)
	assert.Equal(t, SqrtFailed, r)
}

func BenchmarkSqrt(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Sqrt(int64(i)*100 + 12345)
	}
}
