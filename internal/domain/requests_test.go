package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAllRequestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       FindAllRequest
		page     int
		pageSize int
		offset   int
	}{
		{"defaults", FindAllRequest{}, 1, 1, 0},
		{"zero page becomes first", FindAllRequest{Page: 0, PageSize: 10}, 1, 10, 0},
		{"negative page becomes first", FindAllRequest{Page: -3, PageSize: 10}, 1, 10, 0},
		{"size clamped to max", FindAllRequest{Page: 2, PageSize: 1000}, 2, MaxPageSize, 100},
		{"size clamped to min", FindAllRequest{Page: 2, PageSize: -1}, 2, MinPageSize, 1},
		{"in range untouched", FindAllRequest{Page: 3, PageSize: 25}, 3, 25, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.Normalize()
			assert.Equal(t, tc.page, tc.in.Page)
			assert.Equal(t, tc.pageSize, tc.in.PageSize)
			assert.Equal(t, tc.offset, tc.in.Offset())
		})
	}
}
