package repository

import (
	"context"
	"time"

	"rewards-system/internal/model"
)

// VoucherFilter narrows List results. Zero-value fields are ignored.
type VoucherFilter struct {
	Username string
	Status   string
}

// VoucherRepository defines the interface for voucher data access.
type VoucherRepository interface {
	Insert(ctx context.Context, voucher *model.Voucher) error
	GetByID(ctx context.Context, id string) (*model.Voucher, error)
	List(ctx context.Context, filter VoucherFilter) ([]*model.Voucher, error)

	// CountByValue reports how many vouchers carry the given value. It backs
	// both the count endpoint and best-effort issuance checks.
	CountByValue(ctx context.Context, value string) (int64, error)

	// UpdateStatus sets the voucher's status. When setClaimed is true the
	// claimed timestamp is written as well; otherwise it is left untouched.
	// The boolean reports whether a matching voucher existed.
	UpdateStatus(ctx context.Context, id, status string, claimedAt *time.Time, setClaimed bool) (bool, error)

	Delete(ctx context.Context, id string) error
}
