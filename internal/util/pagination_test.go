package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size int
		from, want int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 10, 0, 10},
		{2, 0, 10, 10},
		{2, 500, 10, 10},
		{2, 25, 25, 25},
	}
	for _, tc := range cases {
		from, limit := Calculate(tc.page, tc.size)
		require.Equal(t, tc.from, from, "page %d size %d", tc.page, tc.size)
		require.Equal(t, tc.want, limit, "page %d size %d", tc.page, tc.size)
	}
}
