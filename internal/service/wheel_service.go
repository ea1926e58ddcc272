package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

var (
	ErrWheelExhausted = errors.New("wheel exhausted")
	ErrInvalidSegment = errors.New("invalid wheel segment")
)

// WheelService owns the prize wheel configuration and spins.
type WheelService struct {
	wheel  repository.WheelRepository
	issuer *VoucherService

	// randInt is rand.Int63n unless a test pins the draw.
	randInt func(n int64) int64
}

// NewWheelService creates a new wheel service.
func NewWheelService(wheel repository.WheelRepository, issuer *VoucherService) *WheelService {
	return &WheelService{
		wheel:   wheel,
		issuer:  issuer,
		randInt: rand.Int63n,
	}
}

// List returns the wheel in position order.
func (s *WheelService) List(ctx context.Context) ([]*model.WheelSegment, error) {
	return s.wheel.ListSegments(ctx)
}

// Replace swaps the whole wheel for the given segments. Positions follow
// payload order.
func (s *WheelService) Replace(ctx context.Context, req *model.ReplaceWheelRequest) ([]*model.WheelSegment, error) {
	segments := make([]*model.WheelSegment, 0, len(req.Segments))
	for i, in := range req.Segments {
		if in.Label == "" {
			return nil, fmt.Errorf("%w: segment %d has an empty label", ErrInvalidSegment, i)
		}
		if in.Weight <= 0 {
			return nil, fmt.Errorf("%w: segment %d weight must be positive", ErrInvalidSegment, i)
		}
		active := true
		if in.Active != nil {
			active = *in.Active
		}
		segments = append(segments, &model.WheelSegment{
			Label:      in.Label,
			Prize:      in.Prize,
			Weight:     in.Weight,
			CampaignID: in.CampaignID,
			Position:   int64(i),
			Active:     active,
		})
	}

	if err := s.wheel.ReplaceSegments(ctx, segments); err != nil {
		return nil, fmt.Errorf("replace wheel: %w", err)
	}
	return segments, nil
}

// Spin draws among the active segments with probability proportional to
// weight and issues the winner's prize as a voucher. A segment whose
// campaign is out of stock drops out of the pool and the draw repeats; when
// nothing remains the spin fails with ErrWheelExhausted.
func (s *WheelService) Spin(ctx context.Context, username string) (*model.SpinResult, error) {
	all, err := s.wheel.ListSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wheel segments: %w", err)
	}

	pool := make([]*model.WheelSegment, 0, len(all))
	for _, seg := range all {
		if seg.Active {
			pool = append(pool, seg)
		}
	}

	for len(pool) > 0 {
		idx := s.draw(pool)
		if idx < 0 {
			break
		}
		seg := pool[idx]

		voucher, err := s.issuer.Request(ctx, &model.CreateVoucherRequest{
			Username:   username,
			Value:      seg.Prize,
			Prize:      seg.Label,
			Status:     model.VoucherStatusPending,
			CampaignID: seg.CampaignID,
		})
		switch {
		case err == nil:
			return &model.SpinResult{Segment: *seg, Voucher: voucher}, nil
		case errors.Is(err, ErrOutOfStock), errors.Is(err, ErrCampaignNotFound):
			// Exhausted, or pointing at a campaign that no longer exists.
			// Either way this segment cannot pay out; redraw without it.
			pool = append(pool[:idx], pool[idx+1:]...)
		default:
			return nil, err
		}
	}
	return nil, ErrWheelExhausted
}

// draw picks an index from the pool, weighted. Returns -1 when the pool
// holds no drawable weight.
func (s *WheelService) draw(pool []*model.WheelSegment) int {
	var total int64
	for _, seg := range pool {
		if seg.Weight > 0 {
			total += seg.Weight
		}
	}
	if total <= 0 {
		return -1
	}

	n := s.randInt(total)
	for i, seg := range pool {
		if seg.Weight <= 0 {
			continue
		}
		n -= seg.Weight
		if n < 0 {
			return i
		}
	}
	return len(pool) - 1
}
