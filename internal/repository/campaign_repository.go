package repository

import (
	"context"

	"rewards-system/internal/model"
)

// CampaignRepository defines the interface for campaign data access.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	List(ctx context.Context) ([]*model.Campaign, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error

	// ReserveStock atomically increments the campaign's issued counter if
	// and only if issued < quantity. It returns ErrStockExhausted when the
	// campaign is out of stock and ErrNotFound when it does not exist.
	ReserveStock(ctx context.Context, id string) error

	// ReleaseStock undoes one reservation after a failed voucher insert.
	// The counter never goes below zero.
	ReleaseStock(ctx context.Context, id string) error
}
