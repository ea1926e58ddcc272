package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return newStore(sqlx.NewDb(db, "sqlmock"), time.Second), mock
}

func TestCampaignRepo_CreateMintsID(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO campaigns").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c := &model.Campaign{Content: "10USD", Quantity: 5, Status: model.CampaignStatusActive}
	if err := s.Campaigns.Create(context.Background(), c); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if c.ID == "" {
		t.Error("Create() should mint an ID when none is set")
	}
	if c.CreatedAt.IsZero() {
		t.Error("Create() should stamp CreatedAt")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCampaignRepo_ReserveStock(t *testing.T) {
	t.Run("reserved", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec("UPDATE campaigns SET issued").
			WithArgs("camp-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		if err := s.Campaigns.ReserveStock(context.Background(), "camp-1"); err != nil {
			t.Errorf("ReserveStock() error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec("UPDATE campaigns SET issued").
			WithArgs("camp-1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1 FROM campaigns").
			WithArgs("camp-1").
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		err := s.Campaigns.ReserveStock(context.Background(), "camp-1")
		if !errors.Is(err, repository.ErrStockExhausted) {
			t.Errorf("ReserveStock() = %v, want ErrStockExhausted", err)
		}
	})

	t.Run("missing campaign", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectExec("UPDATE campaigns SET issued").
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT 1 FROM campaigns").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"1"}))

		err := s.Campaigns.ReserveStock(context.Background(), "nope")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("ReserveStock() = %v, want ErrNotFound", err)
		}
	})
}

func TestCampaignRepo_ReleaseStockMissingIsQuiet(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE campaigns").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Campaigns.ReleaseStock(context.Background(), "gone"); err != nil {
		t.Errorf("ReleaseStock() on missing campaign should be nil, got %v", err)
	}
}

func TestCampaignRepo_UpdateStatusNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE campaigns SET status").
		WithArgs("inactive", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Campaigns.UpdateStatus(context.Background(), "nope", "inactive")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("UpdateStatus() = %v, want ErrNotFound", err)
	}
}
