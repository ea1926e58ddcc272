package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

// WheelRepo implements repository.WheelRepository.
type WheelRepo struct{ s *Store }

var _ repository.WheelRepository = (*WheelRepo)(nil)

func (r *WheelRepo) ListSegments(ctx context.Context) ([]*model.WheelSegment, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	segments := []*model.WheelSegment{}
	err := r.s.db.SelectContext(ctx, &segments, `
		SELECT id, label, prize, weight, campaign_id, position, active
		FROM wheel_segments ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list wheel segments: %w", err)
	}
	return segments, nil
}

// ReplaceSegments swaps the whole wheel inside one transaction so spins
// never observe a half-built wheel.
func (r *WheelRepo) ReplaceSegments(ctx context.Context, segments []*model.WheelSegment) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	tx, err := r.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin wheel replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wheel_segments`); err != nil {
		return fmt.Errorf("clear wheel: %w", err)
	}

	insert := tx.Rebind(`
		INSERT INTO wheel_segments (id, label, prize, weight, campaign_id, position, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, seg := range segments {
		if seg.ID == "" {
			seg.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, insert,
			seg.ID, seg.Label, seg.Prize, seg.Weight, seg.CampaignID, seg.Position, seg.Active)
		if err != nil {
			return fmt.Errorf("insert wheel segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit wheel replace: %w", err)
	}
	return nil
}

func (r *WheelRepo) GetSegment(ctx context.Context, id string) (*model.WheelSegment, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var seg model.WheelSegment
	err := r.s.db.GetContext(ctx, &seg, r.s.db.Rebind(`
		SELECT id, label, prize, weight, campaign_id, position, active
		FROM wheel_segments WHERE id = ?
	`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wheel segment: %w", err)
	}
	return &seg, nil
}
