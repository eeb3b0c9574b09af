package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurtainFinalPrice(t *testing.T) {
	discount := int64(80000)
	higherDiscount := int64(150000)
	samePrice := int64(100000)

	tests := []struct {
		name    string
		curtain Curtain
		want    int64
	}{
		{"no_discount", Curtain{Price: 100000}, 100000},
		{"discount_below_price", Curtain{Price: 100000, DiscountPrice: &discount}, 80000},
		{"discount_above_price_ignored", Curtain{Price: 100000, DiscountPrice: &higherDiscount}, 100000},
		{"discount_equal_to_price_ignored", Curtain{Price: 100000, DiscountPrice: &samePrice}, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.curtain.FinalPrice())
		})
	}
}

func TestOrderItemTotalPrice(t *testing.T) {
	item := OrderItem{Quantity: 3, UnitPrice: 120000}
	assert.Equal(t, int64(360000), item.TotalPrice())
}
