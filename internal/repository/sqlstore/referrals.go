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

// ReferralRepo implements repository.ReferralRepository.
type ReferralRepo struct{ s *Store }

var _ repository.ReferralRepository = (*ReferralRepo)(nil)

func (r *ReferralRepo) Create(ctx context.Context, ref *model.Referral) error {
	if ref.ID == "" {
		ref.ID = uuid.New().String()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		INSERT INTO referrals (id, referrer, referee, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`), ref.ID, ref.Referrer, ref.Referee, ref.Status, ref.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create referral: %w", err)
	}
	return nil
}

func (r *ReferralRepo) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var ref model.Referral
	err := r.s.db.GetContext(ctx, &ref, r.s.db.Rebind(`
		SELECT id, referrer, referee, status, created_at
		FROM referrals WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get referral: %w", err)
	}
	return &ref, nil
}

func (r *ReferralRepo) List(ctx context.Context, referrer string) ([]*model.Referral, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := `
		SELECT id, referrer, referee, status, created_at
		FROM referrals WHERE 1=1`
	args := []interface{}{}
	if referrer != "" {
		q += " AND referrer = ?"
		args = append(args, referrer)
	}
	q += " ORDER BY created_at DESC"

	referrals := []*model.Referral{}
	if err := r.s.db.SelectContext(ctx, &referrals, r.s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list referrals: %w", err)
	}
	return referrals, nil
}

func (r *ReferralRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		UPDATE referrals SET status = ? WHERE id = ?
	`), status, id)
	if err != nil {
		return fmt.Errorf("update referral status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ReferralRepo) CountConfirmedByReferrer(ctx context.Context, referrer string) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var count int64
	err := r.s.db.GetContext(ctx, &count, r.s.db.Rebind(`
		SELECT COUNT(*) FROM referrals WHERE referrer = ? AND status = ?
	`), referrer, model.ReferralStatusConfirmed)
	if err != nil {
		return 0, fmt.Errorf("count confirmed referrals: %w", err)
	}
	return count, nil
}
