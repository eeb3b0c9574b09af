package services

import (
	"fmt"
	"time"

	"curtain_shop_backend/internal/models"
)

// Order status constants. pending is the initial status; delivered and
// cancelled are terminal.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusReady      = "ready"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// IsValidOrderStatus reports whether status is one of the known order statuses.
func IsValidOrderStatus(status string) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusReady, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func isTerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// CheckTransition validates a status change against the workflow rules:
// the target must be a known status, terminal orders never change again, and
// cancellation is only allowed while the order is pending or confirmed.
// Administrative actions may jump non-adjacent states (e.g. pending straight
// to delivered); the narrow workflow entry points are responsible for calling
// this with the status they actually intend.
func CheckTransition(currentStatus, newStatus string) error {
	if !IsValidOrderStatus(newStatus) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, newStatus)
	}
	if isTerminalStatus(currentStatus) {
		return fmt.Errorf("%w: order is already %s", ErrInvalidStatusTransition, currentStatus)
	}
	if newStatus == StatusCancelled && currentStatus != StatusPending && currentStatus != StatusConfirmed {
		return fmt.Errorf("%w: cannot cancel an order in status %s", ErrInvalidStatusTransition, currentStatus)
	}
	return nil
}

// applyTransition mutates the order in memory for an accepted transition and
// returns the status-history entry to append. The order is untouched when the
// transition is rejected. Entering confirmed stamps ConfirmedAt; a staff actor
// becomes the order's processor.
func applyTransition(order *models.Order, newStatus string, actor *models.User, comment string, now time.Time) (*models.OrderStatusHistory, error) {
	if err := CheckTransition(order.Status, newStatus); err != nil {
		return nil, err
	}

	oldStatus := order.Status
	order.Status = newStatus
	order.UpdatedAt = now

	if newStatus == StatusConfirmed {
		confirmedAt := now
		order.ConfirmedAt = &confirmedAt
	}

	entry := &models.OrderStatusHistory{
		OrderID:   order.ID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		CreatedAt: now,
	}
	if comment != "" {
		entry.Comment = &comment
	}
	if actor != nil {
		actorID := actor.ID
		entry.ChangedByID = &actorID
		if actor.IsStaff {
			order.ProcessedByID = &actorID
		}
	}
	return entry, nil
}
