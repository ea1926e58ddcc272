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
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		INSERT INTO campaigns (id, content, quantity, issued, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), c.ID, c.Content, c.Quantity, c.Issued, c.Status, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

func (r *CampaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var c model.Campaign
	err := r.s.db.GetContext(ctx, &c, r.s.db.Rebind(`
		SELECT id, content, quantity, issued, status, created_at
		FROM campaigns WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

func (r *CampaignRepo) List(ctx context.Context) ([]*model.Campaign, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	campaigns := []*model.Campaign{}
	err := r.s.db.SelectContext(ctx, &campaigns, `
		SELECT id, content, quantity, issued, status, created_at
		FROM campaigns ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *CampaignRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		UPDATE campaigns SET status = ? WHERE id = ?
	`), status, id)
	if err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *CampaignRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		DELETE FROM campaigns WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReserveStock is the conditional write that keeps issuance inside the
// campaign quantity. The guarded UPDATE either claims one unit or moves
// nothing, regardless of how many requests race on the same campaign.
func (r *CampaignRepo) ReserveStock(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		UPDATE campaigns SET issued = issued + 1
		WHERE id = ? AND issued < quantity
	`), id)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	// Nothing moved: the campaign is either missing or sold out.
	var one int
	err = r.s.db.GetContext(ctx, &one, r.s.db.Rebind(`
		SELECT 1 FROM campaigns WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	return repository.ErrStockExhausted
}

// ReleaseStock returns one reserved unit after a failed insert. The counter
// is floored at zero and a missing campaign is not an error here.
func (r *CampaignRepo) ReleaseStock(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`
		UPDATE campaigns
		SET issued = CASE WHEN issued > 0 THEN issued - 1 ELSE 0 END
		WHERE id = ?
	`), id)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}
