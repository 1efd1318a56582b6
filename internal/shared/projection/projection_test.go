package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{total: 0, limit: 12, want: 0},
		{total: 1, limit: 12, want: 1},
		{total: 12, limit: 12, want: 1},
		{total: 13, limit: 12, want: 2},
		{total: 5, limit: 0, want: 0},
	}
	for _, tc := range cases {
		p := Page[int]{Total: tc.total, Limit: tc.limit}
		assert.Equal(t, tc.want, p.TotalPages(), "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
}
