package recon

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
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

func emptyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"x"})
}

func TestRunHealthy(t *testing.T) {
	db, mock := mockDB(t)

	for range checks {
		mock.ExpectQuery("SELECT").WillReturnRows(emptyRows())
	}

	report := NewChecker(db).Run()

	if !report.OK {
		t.Error("healthy ledger reported violations")
	}
	if len(report.Checks) != len(checks) {
		t.Errorf("ran %d checks, want %d", len(report.Checks), len(checks))
	}
	for _, result := range report.Checks {
		if !result.OK {
			t.Errorf("check %s flagged on empty result", result.Check)
		}
	}
}

// An unbalanced journal line must surface in both the global zero-sum
// and the per-entry balance checks.
func TestRunCatchesInjectedImbalance(t *testing.T) {
	db, mock := mockDB(t)

	// global_zero_sum
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"asset_id", "total"}).AddRow(1, "0.5"))
	// negative_posted_balance
	mock.ExpectQuery("SELECT").WillReturnRows(emptyRows())
	// held_exceeds_posted
	mock.ExpectQuery("SELECT").WillReturnRows(emptyRows())
	// terminal_order_active_hold
	mock.ExpectQuery("SELECT").WillReturnRows(emptyRows())
	// execution_quantity_consistency
	mock.ExpectQuery("SELECT").WillReturnRows(emptyRows())
	// journal_entry_balance
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"entry_id", "asset_id", "total"}).AddRow(12, 1, "0.5"))
	// fee_collector_consistency
	mock.ExpectQuery("SELECT").WillReturnRows(emptyRows())

	report := NewChecker(db).Run()

	if report.OK {
		t.Fatal("corrupted ledger reported healthy")
	}

	flagged := map[string]bool{}
	for _, result := range report.Checks {
		if !result.OK {
			flagged[result.Check] = true

			if len(result.Violations) == 0 {
				t.Errorf("check %s not ok but carries no violations", result.Check)
			}
		}
	}

	if !flagged["global_zero_sum"] || !flagged["journal_entry_balance"] {
		t.Errorf("expected global_zero_sum and journal_entry_balance to flag, got %v", flagged)
	}
	if len(flagged) != 2 {
		t.Errorf("unexpected extra checks flagged: %v", flagged)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
