package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

// RewardRepo implements repository.RewardRepository.
type RewardRepo struct{ s *Store }

var _ repository.RewardRepository = (*RewardRepo)(nil)

func (r *RewardRepo) Create(ctx context.Context, rw *model.ReferralReward) error {
	if rw.ID == "" {
		rw.ID = uuid.New().String()
	}
	if rw.CreatedAt.IsZero() {
		rw.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		INSERT INTO referral_rewards (id, username, milestone, prize, claimed, created_at, claimed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), rw.ID, rw.Username, rw.Milestone, rw.Prize, rw.Claimed, rw.CreatedAt, rw.ClaimedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create reward: %w", err)
	}
	return nil
}

func (r *RewardRepo) GetByID(ctx context.Context, id string) (*model.ReferralReward, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var rw model.ReferralReward
	err := r.s.db.GetContext(ctx, &rw, r.s.db.Rebind(`
		SELECT id, username, milestone, prize, claimed, created_at, claimed_at
		FROM referral_rewards WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reward: %w", err)
	}
	return &rw, nil
}

func (r *RewardRepo) List(ctx context.Context, username string) ([]*model.ReferralReward, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := `
		SELECT id, username, milestone, prize, claimed, created_at, claimed_at
		FROM referral_rewards WHERE 1=1`
	args := []interface{}{}
	if username != "" {
		q += " AND username = ?"
		args = append(args, username)
	}
	q += " ORDER BY milestone ASC"

	rewards := []*model.ReferralReward{}
	if err := r.s.db.SelectContext(ctx, &rewards, r.s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	return rewards, nil
}

// MarkClaimed flips an unclaimed reward to claimed. The guarded UPDATE makes
// double claims lose the race instead of resetting the claim time.
func (r *RewardRepo) MarkClaimed(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		UPDATE referral_rewards SET claimed = ?, claimed_at = ?
		WHERE id = ? AND claimed = ?
	`), true, now, id, false)
	if err != nil {
		return false, fmt.Errorf("claim reward: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return true, nil
	}

	// Nothing moved: missing reward or one that was already claimed.
	var one int
	err = r.s.db.GetContext(ctx, &one, r.s.db.Rebind(`
		SELECT 1 FROM referral_rewards WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, repository.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("claim reward: %w", err)
	}
	return false, nil
}

func (r *RewardRepo) ExistsMilestone(ctx context.Context, username string, milestone int64) (bool, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var exists bool
	err := r.s.db.GetContext(ctx, &exists, r.s.db.Rebind(`
		SELECT EXISTS (
			SELECT 1 FROM referral_rewards WHERE username = ? AND milestone = ?
		)
	`), username, milestone)
	if err != nil {
		return false, fmt.Errorf("check reward milestone: %w", err)
	}
	return exists, nil
}
