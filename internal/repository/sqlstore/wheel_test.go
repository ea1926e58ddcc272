package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"rewards-system/internal/model"
)

func TestWheelRepo_ReplaceSegmentsIsTransactional(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM wheel_segments").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO wheel_segments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO wheel_segments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	segments := []*model.WheelSegment{
		{Label: "Try again", Weight: 5, Position: 0, Active: true},
		{Label: "10USD", Prize: "10USD", Weight: 1, Position: 1, Active: true},
	}
	if err := s.Wheel.ReplaceSegments(context.Background(), segments); err != nil {
		t.Fatalf("ReplaceSegments() error: %v", err)
	}
	for _, seg := range segments {
		if seg.ID == "" {
			t.Error("ReplaceSegments() should mint segment IDs")
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestWheelRepo_ReplaceSegmentsRollsBackOnFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM wheel_segments").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO wheel_segments").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Wheel.ReplaceSegments(context.Background(), []*model.WheelSegment{
		{Label: "Try again", Weight: 1, Position: 0, Active: true},
	})
	if err == nil {
		t.Fatal("ReplaceSegments() should fail when an insert fails")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
