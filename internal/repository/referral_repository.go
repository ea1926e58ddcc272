package repository

import (
	"context"

	"rewards-system/internal/model"
)

// ReferralRepository defines the interface for referral data access.
type ReferralRepository interface {
	// Create inserts a referral. It returns ErrDuplicate when the referee
	// has already been referred.
	Create(ctx context.Context, referral *model.Referral) error

	GetByID(ctx context.Context, id string) (*model.Referral, error)
	List(ctx context.Context, referrer string) ([]*model.Referral, error)
	UpdateStatus(ctx context.Context, id, status string) error

	// CountConfirmedByReferrer reports how many confirmed referrals the
	// referrer has accumulated. Milestone checks run off this number.
	CountConfirmedByReferrer(ctx context.Context, referrer string) (int64, error)
}
