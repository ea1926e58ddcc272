package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rewards-system/internal/metrics"
	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

var (
	ErrVoucherNotFound = errors.New("voucher not found")
	ErrOutOfStock      = errors.New("out of stock")
)

// Issuance modes. Strict reserves stock with an atomic conditional write
// before inserting; besteffort keeps the original count-then-insert flow,
// racy window included.
const (
	ModeStrict     = "strict"
	ModeBestEffort = "besteffort"
)

// VoucherService handles voucher issuance and lifecycle.
type VoucherService struct {
	vouchers  repository.VoucherRepository
	campaigns repository.CampaignRepository
	mode      string
}

// NewVoucherService creates a new voucher service. Any mode other than
// besteffort falls back to strict.
func NewVoucherService(vouchers repository.VoucherRepository, campaigns repository.CampaignRepository, mode string) *VoucherService {
	if mode != ModeBestEffort {
		mode = ModeStrict
	}
	return &VoucherService{
		vouchers:  vouchers,
		campaigns: campaigns,
		mode:      mode,
	}
}

// Mode reports the active issuance mode.
func (s *VoucherService) Mode() string { return s.mode }

// Request issues a voucher. Without a campaign id the voucher is stored
// exactly as requested; with one, the request counts against the campaign's
// stock and the voucher value is forced to the campaign content.
func (s *VoucherService) Request(ctx context.Context, req *model.CreateVoucherRequest) (*model.Voucher, error) {
	// Start timing for metrics
	start := time.Now()
	result := "error"

	defer func() {
		metrics.RecordIssuanceDuration(result, time.Since(start).Seconds())
	}()

	voucher := &model.Voucher{
		Username:  req.Username,
		Value:     req.Value,
		Prize:     req.Prize,
		Status:    req.Status,
		ClaimedAt: req.ClaimedAt,
	}
	if voucher.Status == "" {
		voucher.Status = model.VoucherStatusPending
	}

	var err error
	if req.CampaignID == "" {
		err = s.vouchers.Insert(ctx, voucher)
		if err != nil {
			err = fmt.Errorf("insert voucher: %w", err)
		}
	} else if s.mode == ModeBestEffort {
		err = s.issueBestEffort(ctx, voucher, req.CampaignID)
	} else {
		err = s.issueStrict(ctx, voucher, req.CampaignID)
	}

	switch {
	case err == nil:
		result = "success"
		metrics.RecordVoucherIssued(s.mode)
		return voucher, nil
	case errors.Is(err, ErrOutOfStock):
		result = "out_of_stock"
		return nil, err
	case errors.Is(err, ErrCampaignNotFound):
		result = "campaign_not_found"
		return nil, err
	default:
		return nil, err
	}
}

// issueBestEffort counts vouchers carrying the campaign content and rejects
// when the count has reached the quantity. Two concurrent requests can both
// pass the check and push the campaign past its cap; that window is the
// reason strict mode exists.
func (s *VoucherService) issueBestEffort(ctx context.Context, voucher *model.Voucher, campaignID string) error {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("get campaign: %w", err)
	}

	issued, err := s.vouchers.CountByValue(ctx, campaign.Content)
	if err != nil {
		return fmt.Errorf("count issued vouchers: %w", err)
	}
	if issued >= campaign.Quantity {
		return ErrOutOfStock
	}

	voucher.Value = campaign.Content
	if err := s.vouchers.Insert(ctx, voucher); err != nil {
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

// issueStrict reserves one unit of stock atomically before inserting the
// voucher. A failed insert releases the reservation so the unit goes back
// on sale.
func (s *VoucherService) issueStrict(ctx context.Context, voucher *model.Voucher, campaignID string) error {
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCampaignNotFound
		}
		return fmt.Errorf("get campaign: %w", err)
	}

	if err := s.campaigns.ReserveStock(ctx, campaignID); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrCampaignNotFound
		case errors.Is(err, repository.ErrStockExhausted):
			return ErrOutOfStock
		}
		return fmt.Errorf("reserve stock: %w", err)
	}

	voucher.Value = campaign.Content
	if err := s.vouchers.Insert(ctx, voucher); err != nil {
		// Hand the reserved unit back; the insert failure is the error
		// that matters to the caller.
		_ = s.campaigns.ReleaseStock(ctx, campaignID)
		return fmt.Errorf("insert voucher: %w", err)
	}
	return nil
}

// Get retrieves a single voucher.
func (s *VoucherService) Get(ctx context.Context, id string) (*model.Voucher, error) {
	voucher, err := s.vouchers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrVoucherNotFound
		}
		return nil, fmt.Errorf("get voucher: %w", err)
	}
	return voucher, nil
}

// List returns vouchers matching the filter.
func (s *VoucherService) List(ctx context.Context, filter repository.VoucherFilter) ([]*model.Voucher, error) {
	return s.vouchers.List(ctx, filter)
}

// UpdateStatus applies the status-transition rule: moving to Issued stamps
// the claim time, moving to Void clears it, any other status leaves it
// untouched. The boolean reports whether a voucher was updated.
func (s *VoucherService) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	var claimedAt *time.Time
	setClaimed := false
	switch status {
	case model.VoucherStatusIssued:
		now := time.Now().UTC()
		claimedAt = &now
		setClaimed = true
	case model.VoucherStatusVoid:
		setClaimed = true
	}
	return s.vouchers.UpdateStatus(ctx, id, status, claimedAt, setClaimed)
}

// Delete removes a voucher. A missing voucher is reported through the
// boolean, not as an error.
func (s *VoucherService) Delete(ctx context.Context, id string) (bool, error) {
	err := s.vouchers.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete voucher: %w", err)
	}
	return true, nil
}

// CountForCampaign reports how many vouchers carry the campaign's content.
// A missing id or unknown campaign counts as zero rather than an error.
func (s *VoucherService) CountForCampaign(ctx context.Context, campaignID string) (int64, error) {
	if campaignID == "" {
		return 0, nil
	}
	campaign, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get campaign: %w", err)
	}
	count, err := s.vouchers.CountByValue(ctx, campaign.Content)
	if err != nil {
		return 0, fmt.Errorf("count vouchers: %w", err)
	}
	return count, nil
}
