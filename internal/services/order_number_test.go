package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildOrderNumber(t *testing.T) {
	date := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "NC-20250314-001", BuildOrderNumber(date, 1))
	assert.Equal(t, "NC-20250314-042", BuildOrderNumber(date, 42))
	assert.Equal(t, "NC-20250314-999", BuildOrderNumber(date, 999))
	// Sequences past 999 widen rather than wrap.
	assert.Equal(t, "NC-20250314-1000", BuildOrderNumber(date, 1000))
}

func TestNextSequence(t *testing.T) {
	tests := []struct {
		name            string
		lastOrderNumber string
		want            int
	}{
		{"no_orders_today", "", 1},
		{"first_order_exists", "NC-20250314-001", 2},
		{"mid_sequence", "NC-20250314-041", 42},
		{"three_digit_boundary", "NC-20250314-999", 1000},
		{"malformed_number_falls_back", "NC-garbage", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextSequence(tt.lastOrderNumber))
		})
	}
}
