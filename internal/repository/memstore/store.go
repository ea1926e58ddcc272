// Package memstore implements the repository interfaces with in-process
// maps guarded by one mutex. It backs tests and runs the server without any
// external database.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

// Store keeps every entity in memory. All repositories share one lock, so
// each operation is atomic relative to the others.
type Store struct {
	mu sync.Mutex

	campaigns map[string]*model.Campaign
	vouchers  map[string]*model.Voucher
	referrals map[string]*model.Referral
	rewards   map[string]*model.ReferralReward
	segments  []*model.WheelSegment

	Campaigns *CampaignRepo
	Vouchers  *VoucherRepo
	Referrals *ReferralRepo
	Rewards   *RewardRepo
	Wheel     *WheelRepo
}

// New returns an empty in-memory store.
func New() *Store {
	s := &Store{
		campaigns: map[string]*model.Campaign{},
		vouchers:  map[string]*model.Voucher{},
		referrals: map[string]*model.Referral{},
		rewards:   map[string]*model.ReferralReward{},
	}
	s.Campaigns = &CampaignRepo{s}
	s.Vouchers = &VoucherRepo{s}
	s.Referrals = &ReferralRepo{s}
	s.Rewards = &RewardRepo{s}
	s.Wheel = &WheelRepo{s}
	return s
}

// Ping always succeeds; there is no connection to lose.
func (s *Store) Ping(ctx context.Context) error { return nil }

// Close is a no-op kept for symmetry with the real stores.
func (s *Store) Close() error { return nil }

// CampaignRepo implements repository.CampaignRepository.
type CampaignRepo struct{ s *Store }

var _ repository.CampaignRepository = (*CampaignRepo)(nil)

func (r *CampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *c
	r.s.campaigns[c.ID] = &cp
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CampaignRepo) List(ctx context.Context) ([]*model.Campaign, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*model.Campaign, 0, len(r.s.campaigns))
	for _, c := range r.s.campaigns {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.campaigns[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.campaigns, id)
	return nil
}

func (r *CampaignRepo) ReserveStock(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Issued >= c.Quantity {
		return repository.ErrStockExhausted
	}
	c.Issued++
	return nil
}

func (r *CampaignRepo) ReleaseStock(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.campaigns[id]
	if !ok {
		return nil
	}
	if c.Issued > 0 {
		c.Issued--
	}
	return nil
}

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
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cp := *v
	r.s.vouchers[v.ID] = &cp
	return nil
}

func (r *VoucherRepo) GetByID(ctx context.Context, id string) (*model.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vouchers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *VoucherRepo) List(ctx context.Context, f repository.VoucherFilter) ([]*model.Voucher, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*model.Voucher{}
	for _, v := range r.s.vouchers {
		if f.Username != "" && v.Username != f.Username {
			continue
		}
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *VoucherRepo) CountByValue(ctx context.Context, value string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, v := range r.s.vouchers {
		if v.Value == value {
			n++
		}
	}
	return n, nil
}

func (r *VoucherRepo) UpdateStatus(ctx context.Context, id, status string, claimedAt *time.Time, setClaimed bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.vouchers[id]
	if !ok {
		return false, nil
	}
	v.Status = status
	if setClaimed {
		v.ClaimedAt = claimedAt
	}
	return true, nil
}

func (r *VoucherRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.vouchers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.vouchers, id)
	return nil
}

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
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.referrals {
		if existing.Referee == ref.Referee {
			return repository.ErrDuplicate
		}
	}
	cp := *ref
	r.s.referrals[ref.ID] = &cp
	return nil
}

func (r *ReferralRepo) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ref
	return &cp, nil
}

func (r *ReferralRepo) List(ctx context.Context, referrer string) ([]*model.Referral, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*model.Referral{}
	for _, ref := range r.s.referrals {
		if referrer != "" && ref.Referrer != referrer {
			continue
		}
		cp := *ref
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *ReferralRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ref, ok := r.s.referrals[id]
	if !ok {
		return repository.ErrNotFound
	}
	ref.Status = status
	return nil
}

func (r *ReferralRepo) CountConfirmedByReferrer(ctx context.Context, referrer string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, ref := range r.s.referrals {
		if ref.Referrer == referrer && ref.Status == model.ReferralStatusConfirmed {
			n++
		}
	}
	return n, nil
}

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
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.rewards {
		if existing.Username == rw.Username && existing.Milestone == rw.Milestone {
			return repository.ErrDuplicate
		}
	}
	cp := *rw
	r.s.rewards[rw.ID] = &cp
	return nil
}

func (r *RewardRepo) GetByID(ctx context.Context, id string) (*model.ReferralReward, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rw, ok := r.s.rewards[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rw
	return &cp, nil
}

func (r *RewardRepo) List(ctx context.Context, username string) ([]*model.ReferralReward, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*model.ReferralReward{}
	for _, rw := range r.s.rewards {
		if username != "" && rw.Username != username {
			continue
		}
		cp := *rw
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Milestone < out[j].Milestone })
	return out, nil
}

func (r *RewardRepo) MarkClaimed(ctx context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rw, ok := r.s.rewards[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if rw.Claimed {
		return false, nil
	}
	now := time.Now().UTC()
	rw.Claimed = true
	rw.ClaimedAt = &now
	return true, nil
}

func (r *RewardRepo) ExistsMilestone(ctx context.Context, username string, milestone int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, rw := range r.s.rewards {
		if rw.Username == username && rw.Milestone == milestone {
			return true, nil
		}
	}
	return false, nil
}

// WheelRepo implements repository.WheelRepository.
type WheelRepo struct{ s *Store }

var _ repository.WheelRepository = (*WheelRepo)(nil)

func (r *WheelRepo) ListSegments(ctx context.Context) ([]*model.WheelSegment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*model.WheelSegment, 0, len(r.s.segments))
	for _, seg := range r.s.segments {
		cp := *seg
		out = append(out, &cp)
	}
	return out, nil
}

func (r *WheelRepo) ReplaceSegments(ctx context.Context, segments []*model.WheelSegment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := make([]*model.WheelSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.ID == "" {
			seg.ID = uuid.New().String()
		}
		cp := *seg
		next = append(next, &cp)
	}
	sort.Slice(next, func(i, j int) bool { return next[i].Position < next[j].Position })
	r.s.segments = next
	return nil
}

func (r *WheelRepo) GetSegment(ctx context.Context, id string) (*model.WheelSegment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, seg := range r.s.segments {
		if seg.ID == id {
			cp := *seg
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}
