package recon

import (
	"time"

	"gorm.io/gorm"

	"github.com/zenithex/zenithex/metrics"
)

// Checker is the reconciliation battery: a fixed set of read-only
// invariant queries over the ledger, holds and orders. Each check
// returns the violating rows; it never repairs anything. Violations
// go to an operator, not an auto-fixer.
type Checker struct {
	DB *gorm.DB
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{DB: db}
}

type CheckResult struct {
	Check      string                   `json:"check"`
	OK         bool                     `json:"ok"`
	Violations []map[string]interface{} `json:"violations"`
	Duration   time.Duration            `json:"duration"`
	Error      string                   `json:"error,omitempty"`
}

type Report struct {
	OK     bool          `json:"ok"`
	RanAt  time.Time     `json:"ran_at"`
	Checks []CheckResult `json:"checks"`
}

type check struct {
	name string
	sql  string
}

var checks = []check{
	{
		// Across all journal lines, per asset, the sum must be zero.
		name: "global_zero_sum",
		sql: `SELECT asset_id, SUM(amount) AS total
		      FROM journal_lines
		      GROUP BY asset_id
		      HAVING SUM(amount) <> 0`,
	},
	{
		name: "negative_posted_balance",
		sql: `SELECT account_id, SUM(amount) AS posted
		      FROM journal_lines
		      GROUP BY account_id
		      HAVING SUM(amount) < 0`,
	},
	{
		// Active holds may never reserve more than the account holds.
		name: "held_exceeds_posted",
		sql: `SELECT h.account_id,
		             SUM(h.remaining_amount) AS held,
		             COALESCE((SELECT SUM(jl.amount) FROM journal_lines jl WHERE jl.account_id = h.account_id), 0) AS posted
		      FROM holds h
		      WHERE h.status = 'active'
		      GROUP BY h.account_id
		      HAVING SUM(h.remaining_amount) > COALESCE((SELECT SUM(jl.amount) FROM journal_lines jl WHERE jl.account_id = h.account_id), 0)`,
	},
	{
		name: "terminal_order_active_hold",
		sql: `SELECT o.id AS order_id, o.status AS order_status, h.id AS hold_id, h.remaining_amount
		      FROM orders o
		      JOIN holds h ON h.id = o.hold_id
		      WHERE o.status IN ('filled', 'canceled') AND h.status = 'active'`,
	},
	{
		// quantity - remaining_quantity must equal the order's summed
		// execution quantities, whichever side it traded on.
		name: "execution_quantity_consistency",
		sql: `SELECT o.id AS order_id,
		             o.quantity - o.remaining_quantity AS filled,
		             COALESCE(e.executed, 0) AS executed
		      FROM orders o
		      LEFT JOIN (
		          SELECT order_id, SUM(quantity) AS executed FROM (
		              SELECT maker_order_id AS order_id, quantity FROM executions
		              UNION ALL
		              SELECT taker_order_id AS order_id, quantity FROM executions
		          ) sides
		          GROUP BY order_id
		      ) e ON e.order_id = o.id
		      WHERE o.quantity - o.remaining_quantity <> COALESCE(e.executed, 0)`,
	},
	{
		// Per-entry zero-sum, independent of the write-time assert.
		name: "journal_entry_balance",
		sql: `SELECT entry_id, asset_id, SUM(amount) AS total
		      FROM journal_lines
		      GROUP BY entry_id, asset_id
		      HAVING SUM(amount) <> 0`,
	},
	{
		// Fee collector balances must equal the fees stamped on
		// executions, per asset.
		name: "fee_collector_consistency",
		sql: `SELECT COALESCE(p.asset_id, f.asset_id) AS asset_id,
		             COALESCE(p.posted, 0) AS posted,
		             COALESCE(f.fees, 0) AS fees
		      FROM (
		          SELECT a.asset_id, COALESCE(SUM(jl.amount), 0) AS posted
		          FROM ledger_accounts a
		          LEFT JOIN journal_lines jl ON jl.account_id = a.id
		          WHERE a.member_id = 0
		          GROUP BY a.asset_id
		      ) p
		      FULL OUTER JOIN (
		          SELECT fee_asset_id AS asset_id, SUM(fee) AS fees FROM (
		              SELECT maker_fee_asset_id AS fee_asset_id, maker_fee AS fee FROM executions
		              UNION ALL
		              SELECT taker_fee_asset_id AS fee_asset_id, taker_fee AS fee FROM executions
		          ) fees
		          GROUP BY fee_asset_id
		      ) f ON f.asset_id = p.asset_id
		      WHERE COALESCE(p.posted, 0) <> COALESCE(f.fees, 0)`,
	},
}

// Run executes the whole battery and reports per-check results. A
// query error marks the check failed rather than aborting the run.
func (c *Checker) Run() *Report {
	report := &Report{OK: true, RanAt: time.Now()}

	for _, chk := range checks {
		result := c.runCheck(chk)
		if !result.OK {
			report.OK = false
		}

		metrics.ReconViolations.WithLabelValues(chk.name).Set(float64(len(result.Violations)))
		metrics.ReconDuration.WithLabelValues(chk.name).Observe(result.Duration.Seconds())

		report.Checks = append(report.Checks, result)
	}

	return report
}

func (c *Checker) runCheck(chk check) CheckResult {
	started := time.Now()

	violations := make([]map[string]interface{}, 0)
	err := c.DB.Raw(chk.sql).Scan(&violations).Error

	result := CheckResult{
		Check:      chk.name,
		OK:         err == nil && len(violations) == 0,
		Violations: violations,
		Duration:   time.Since(started),
	}
	if err != nil {
		result.Error = err.Error()
	}

	return result
}
