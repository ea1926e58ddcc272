package repository

import (
	"context"

	"rewards-system/internal/model"
)

// RewardRepository defines the interface for referral reward data access.
type RewardRepository interface {
	// Create inserts a reward. It returns ErrDuplicate when the user already
	// holds a reward for the same milestone.
	Create(ctx context.Context, reward *model.ReferralReward) error

	GetByID(ctx context.Context, id string) (*model.ReferralReward, error)
	List(ctx context.Context, username string) ([]*model.ReferralReward, error)

	// MarkClaimed flips the reward to claimed and stamps the claim time.
	// The boolean reports whether the reward was unclaimed before the call,
	// making repeated claims detectable without a prior read.
	MarkClaimed(ctx context.Context, id string) (bool, error)

	// ExistsMilestone reports whether the user already holds a reward for
	// the milestone.
	ExistsMilestone(ctx context.Context, username string, milestone int64) (bool, error)
}
