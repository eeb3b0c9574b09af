package services

import (
	"errors"
	"testing"
	"time"

	"curtain_shop_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name          string
		currentStatus string
		newStatus     string
		wantErr       bool
	}{
		{"pending_to_confirmed", StatusPending, StatusConfirmed, false},
		{"confirmed_to_in_progress", StatusConfirmed, StatusInProgress, false},
		{"in_progress_to_ready", StatusInProgress, StatusReady, false},
		{"ready_to_delivered", StatusReady, StatusDelivered, false},
		{"pending_straight_to_delivered", StatusPending, StatusDelivered, false},
		{"ready_back_to_confirmed", StatusReady, StatusConfirmed, false},
		{"cancel_pending", StatusPending, StatusCancelled, false},
		{"cancel_confirmed", StatusConfirmed, StatusCancelled, false},
		{"cancel_in_progress", StatusInProgress, StatusCancelled, true},
		{"cancel_ready", StatusReady, StatusCancelled, true},
		{"delivered_is_terminal", StatusDelivered, StatusPending, true},
		{"cancelled_is_terminal", StatusCancelled, StatusConfirmed, true},
		{"cancelled_stays_cancelled", StatusCancelled, StatusCancelled, true},
		{"unknown_target_status", StatusPending, "shipped", true},
		{"empty_target_status", StatusPending, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.currentStatus, tt.newStatus)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidStatusTransition))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyTransition_AcceptedChange(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	staff := &models.User{ID: 7, Username: "manager", IsStaff: true}
	order := &models.Order{ID: 42, Status: StatusPending}

	entry, err := applyTransition(order, StatusConfirmed, staff, "called the customer", now)
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, order.Status)
	assert.Equal(t, now, order.UpdatedAt)
	require.NotNil(t, order.ConfirmedAt)
	assert.Equal(t, now, *order.ConfirmedAt)
	require.NotNil(t, order.ProcessedByID)
	assert.Equal(t, int64(7), *order.ProcessedByID)

	require.NotNil(t, entry)
	assert.Equal(t, int64(42), entry.OrderID)
	assert.Equal(t, StatusPending, entry.OldStatus)
	assert.Equal(t, StatusConfirmed, entry.NewStatus)
	require.NotNil(t, entry.ChangedByID)
	assert.Equal(t, int64(7), *entry.ChangedByID)
	require.NotNil(t, entry.Comment)
	assert.Equal(t, "called the customer", *entry.Comment)
}

func TestApplyTransition_RejectedChangeLeavesOrderUntouched(t *testing.T) {
	order := &models.Order{ID: 1, Status: StatusDelivered}

	entry, err := applyTransition(order, StatusCancelled, nil, "", time.Now())
	assert.Nil(t, entry)
	assert.True(t, errors.Is(err, ErrInvalidStatusTransition))
	assert.Equal(t, StatusDelivered, order.Status)
	assert.Nil(t, order.ProcessedByID)
	assert.Nil(t, order.ConfirmedAt)
}

func TestApplyTransition_CustomerActorDoesNotBecomeProcessor(t *testing.T) {
	now := time.Now()
	customer := &models.User{ID: 3, Username: "aziza"}
	order := &models.Order{ID: 5, Status: StatusPending}

	entry, err := applyTransition(order, StatusCancelled, customer, "", now)
	require.NoError(t, err)

	assert.Nil(t, order.ProcessedByID)
	require.NotNil(t, entry.ChangedByID)
	assert.Equal(t, int64(3), *entry.ChangedByID)
	assert.Nil(t, entry.Comment)
}

func TestApplyTransition_OnlyConfirmedStampsConfirmedAt(t *testing.T) {
	now := time.Now()
	order := &models.Order{ID: 9, Status: StatusConfirmed}

	_, err := applyTransition(order, StatusInProgress, nil, "", now)
	require.NoError(t, err)
	assert.Nil(t, order.ConfirmedAt)
}
