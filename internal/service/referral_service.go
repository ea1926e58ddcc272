package service

import (
	"context"
	"errors"
	"fmt"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

var (
	ErrReferralNotFound = errors.New("referral not found")
	ErrAlreadyReferred  = errors.New("referee was already referred")
)

// ReferralService tracks referrals and mints milestone rewards.
type ReferralService struct {
	referrals  repository.ReferralRepository
	rewards    repository.RewardRepository
	milestones map[int64]string
}

// NewReferralService creates a new referral service. milestones maps a
// confirmed-referral count to the prize it earns.
func NewReferralService(referrals repository.ReferralRepository, rewards repository.RewardRepository, milestones map[int64]string) *ReferralService {
	return &ReferralService{
		referrals:  referrals,
		rewards:    rewards,
		milestones: milestones,
	}
}

// Create records that a referrer brought a referee in. A referee can only
// be referred once.
func (s *ReferralService) Create(ctx context.Context, req *model.CreateReferralRequest) (*model.Referral, error) {
	referral := &model.Referral{
		Referrer: req.Referrer,
		Referee:  req.Referee,
		Status:   req.Status,
	}
	if referral.Status == "" {
		referral.Status = model.ReferralStatusPending
	}
	err := s.referrals.Create(ctx, referral)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrAlreadyReferred
	}
	if err != nil {
		return nil, fmt.Errorf("create referral: %w", err)
	}
	return referral, nil
}

// Get retrieves a single referral.
func (s *ReferralService) Get(ctx context.Context, id string) (*model.Referral, error) {
	referral, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, fmt.Errorf("get referral: %w", err)
	}
	return referral, nil
}

// List returns referrals, optionally narrowed to one referrer.
func (s *ReferralService) List(ctx context.Context, referrer string) ([]*model.Referral, error) {
	return s.referrals.List(ctx, referrer)
}

// UpdateStatus sets the referral status. On the transition into Confirmed
// the referrer's confirmed count is checked against the configured
// milestones and a reward is minted when one is hit. Re-confirming an
// already confirmed referral mints nothing.
func (s *ReferralService) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	referral, err := s.referrals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get referral: %w", err)
	}

	if err := s.referrals.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("update referral status: %w", err)
	}

	if status == model.ReferralStatusConfirmed && referral.Status != model.ReferralStatusConfirmed {
		if err := s.mintMilestoneReward(ctx, referral.Referrer); err != nil {
			return true, err
		}
	}
	return true, nil
}

// mintMilestoneReward creates the reward for the referrer's current
// confirmed count when that count is a configured milestone. The unique
// (username, milestone) constraint keeps concurrent confirmations from
// minting twice.
func (s *ReferralService) mintMilestoneReward(ctx context.Context, referrer string) error {
	count, err := s.referrals.CountConfirmedByReferrer(ctx, referrer)
	if err != nil {
		return fmt.Errorf("count confirmed referrals: %w", err)
	}
	prize, ok := s.milestones[count]
	if !ok {
		return nil
	}

	exists, err := s.rewards.ExistsMilestone(ctx, referrer, count)
	if err != nil {
		return fmt.Errorf("check reward milestone: %w", err)
	}
	if exists {
		return nil
	}

	reward := &model.ReferralReward{
		Username:  referrer,
		Milestone: count,
		Prize:     prize,
	}
	err = s.rewards.Create(ctx, reward)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a race with a concurrent confirmation; the reward exists.
		return nil
	}
	if err != nil {
		return fmt.Errorf("create reward: %w", err)
	}
	return nil
}

// ListRewards returns rewards, optionally narrowed to one user.
func (s *ReferralService) ListRewards(ctx context.Context, username string) ([]*model.ReferralReward, error) {
	return s.rewards.List(ctx, username)
}

// ClaimReward marks a reward claimed. Missing and already claimed rewards
// are reported through the boolean, not as errors.
func (s *ReferralService) ClaimReward(ctx context.Context, id string) (bool, error) {
	claimed, err := s.rewards.MarkClaimed(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("claim reward: %w", err)
	}
	return claimed, nil
}
