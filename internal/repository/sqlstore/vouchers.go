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

// VoucherRepo implements repository.VoucherRepository.
type VoucherRepo struct{ s *Store }

var _ repository.VoucherRepository = (*VoucherRepo)(nil)

func (r *VoucherRepo) Insert(ctx context.Context, v *model.Voucher) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		INSERT INTO vouchers (id, username, value, prize, status, claimed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), v.ID, v.Username, v.Value, v.Prize, v.Status, v.ClaimedAt, v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

func (r *VoucherRepo) GetByID(ctx context.Context, id string) (*model.Voucher, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var v model.Voucher
	err := r.s.db.GetContext(ctx, &v, r.s.db.Rebind(`
		SELECT id, username, value, prize, status, claimed_at, created_at
		FROM vouchers WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	return &v, nil
}

func (r *VoucherRepo) List(ctx context.Context, f repository.VoucherFilter) ([]*model.Voucher, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	q := `
		SELECT id, username, value, prize, status, claimed_at, created_at
		FROM vouchers WHERE 1=1`
	args := []interface{}{}
	if f.Username != "" {
		q += " AND username = ?"
		args = append(args, f.Username)
	}
	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, f.Status)
	}
	q += " ORDER BY created_at DESC"

	vouchers := []*model.Voucher{}
	if err := r.s.db.SelectContext(ctx, &vouchers, r.s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	return vouchers, nil
}

func (r *VoucherRepo) CountByValue(ctx context.Context, value string) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var count int64
	err := r.s.db.GetContext(ctx, &count, r.s.db.Rebind(`
		SELECT COUNT(*) FROM vouchers WHERE value = ?
	`), value)
	if err != nil {
		return 0, fmt.Errorf("count vouchers: %w", err)
	}
	return count, nil
}

func (r *VoucherRepo) UpdateStatus(ctx context.Context, id, status string, claimedAt *time.Time, setClaimed bool) (bool, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var (
		res sql.Result
		err error
	)
	if setClaimed {
		res, err = r.s.db.ExecContext(ctx, r.s.db.Rebind(`
			UPDATE vouchers SET status = ?, claimed_at = ? WHERE id = ?
		`), status, claimedAt, id)
	} else {
		res, err = r.s.db.ExecContext(ctx, r.s.db.Rebind(`
			UPDATE vouchers SET status = ? WHERE id = ?
		`), status, id)
	}
	if err != nil {
		return false, fmt.Errorf("update voucher status: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *VoucherRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		DELETE FROM vouchers WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("delete voucher: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
