package mysql

import (
	"math"
	"testing"

	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveLimit(t *testing.T) {
	tests := []struct {
		name string
		page repository.OrderPage
		want int
	}{
		{name: "no paging", page: repository.OrderPage{}, want: 0},
		{name: "limit only", page: repository.OrderPage{Limit: 10}, want: 10},
		{name: "limit with offset", page: repository.OrderPage{Offset: 5, Limit: 10}, want: 10},
		// MySQL has no OFFSET without LIMIT; the tail query still needs one.
		{name: "offset only", page: repository.OrderPage{Offset: 5}, want: math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, effectiveLimit(tt.page))
		})
	}
}
