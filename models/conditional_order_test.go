package models

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zenithex/zenithex/errs"
	"github.com/zenithex/zenithex/types"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	return db, mock
}

// Two evaluator runs racing for the same row: the second claim's
// conditional UPDATE matches zero rows and must not place an order.
func TestClaimTriggeringIsExclusive(t *testing.T) {
	db, mock := mockDB(t)

	co := &ConditionalOrder{ID: 7, Status: types.ConditionalActive}

	mock.ExpectExec(`UPDATE "conditional_orders"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := co.ClaimTriggering(db, time.Minute, 5); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if co.Status != types.ConditionalTriggering {
		t.Errorf("status = %s, want triggering", co.Status)
	}
	if co.AttemptCount != 1 {
		t.Errorf("attempt count = %d, want 1", co.AttemptCount)
	}

	second := &ConditionalOrder{ID: 7, Status: types.ConditionalTriggering}

	mock.ExpectExec(`UPDATE "conditional_orders"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := second.ClaimTriggering(db, time.Minute, 5)
	if !errors.Is(err, errs.ErrTradeStateConflict) {
		t.Fatalf("second claim: want ErrTradeStateConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMarkTriggeredRequiresTriggering(t *testing.T) {
	db, mock := mockDB(t)

	co := &ConditionalOrder{ID: 9, Status: types.ConditionalActive}

	mock.ExpectExec(`UPDATE "conditional_orders"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := co.MarkTriggered(db, types.LegStop, 42)
	if !errors.Is(err, errs.ErrTradeStateConflict) {
		t.Fatalf("want ErrTradeStateConflict, got %v", err)
	}
}

func TestHoldReleaseGuard(t *testing.T) {
	db, mock := mockDB(t)

	hold := &Hold{ID: 3, Status: types.HoldConsumed}

	mock.ExpectExec(`UPDATE "holds"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := hold.Release(db)
	if !errors.Is(err, errs.ErrTradeStateConflict) {
		t.Fatalf("releasing a consumed hold: want ErrTradeStateConflict, got %v", err)
	}
}
