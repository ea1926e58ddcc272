package repository

import (
	"context"

	"rewards-system/internal/model"
)

// WheelRepository defines the interface for prize wheel data access.
type WheelRepository interface {
	// ListSegments returns the wheel ordered by position.
	ListSegments(ctx context.Context) ([]*model.WheelSegment, error)

	// ReplaceSegments swaps the whole wheel for the given segments in one
	// atomic step. Readers never observe a partially replaced wheel.
	ReplaceSegments(ctx context.Context, segments []*model.WheelSegment) error

	GetSegment(ctx context.Context, id string) (*model.WheelSegment, error)
}
