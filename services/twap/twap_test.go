package twap

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPlanSlicesEven(t *testing.T) {
	plan := PlanSlices(dec("10"), 4, dec("0.1"))

	if len(plan) != 4 {
		t.Fatalf("expected 4 slices, got %d", len(plan))
	}

	sum := decimal.Zero
	for _, q := range plan {
		if !q.Equal(dec("2.5")) {
			t.Errorf("slice = %s, want 2.5", q)
		}
		sum = sum.Add(q)
	}

	if !sum.Equal(dec("10")) {
		t.Errorf("plan sums to %s, want 10", sum)
	}
}

func TestPlanSlicesLastAbsorbsRemainder(t *testing.T) {
	// 10 / 3 does not divide evenly at a 0.5 lot: two slices of 3,
	// the last takes the lot-aligned remainder of 4.
	plan := PlanSlices(dec("10"), 3, dec("0.5"))

	if !plan[0].Equal(dec("3")) || !plan[1].Equal(dec("3")) {
		t.Errorf("leading slices = %s, %s, want 3, 3", plan[0], plan[1])
	}
	if !plan[2].Equal(dec("4")) {
		t.Errorf("final slice = %s, want 4", plan[2])
	}
}

func TestPlanSlicesZeroSlices(t *testing.T) {
	if plan := PlanSlices(dec("10"), 0, dec("1")); plan != nil {
		t.Errorf("expected nil plan, got %v", plan)
	}
}

func TestDueSlices(t *testing.T) {
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	interval := time.Minute

	cases := []struct {
		elapsed time.Duration
		want    int64
	}{
		{-time.Second, 0},
		{0, 1},
		{59 * time.Second, 1},
		{time.Minute, 2},
		{10 * time.Minute, 5},
	}

	for _, c := range cases {
		got := DueSlices(start, interval, start.Add(c.elapsed), 5)
		if got != c.want {
			t.Errorf("DueSlices(+%s) = %d, want %d", c.elapsed, got, c.want)
		}
	}
}
