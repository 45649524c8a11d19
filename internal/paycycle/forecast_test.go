package paycycle

import (
	"testing"
	"time"
)

func monthlyCfg() CycleConfig {
	return CycleConfig{Rule: RuleSpecificDate, PayDay: 25}
}

func TestProjectSavings(t *testing.T) {
	today := Date(2024, time.January, 25)

	t.Run("reaches_target_in_twelve_cycles", func(t *testing.T) {
		points := ProjectSavings(0, 120000, 10000, today, monthlyCfg(), today, 0)
		if len(points) != 12 {
			t.Fatalf("expected 12 points, got %d", len(points))
		}
		if points[0].Balance != 10000 {
			t.Errorf("first point: expected 10000, got %d", points[0].Balance)
		}
		last := points[len(points)-1]
		if last.Balance != 120000 {
			t.Errorf("last point: expected 120000, got %d", last.Balance)
		}
		if last.CycleIndex != 11 {
			t.Errorf("last point index: expected 11, got %d", last.CycleIndex)
		}
	})

	t.Run("agrees_with_closed_form", func(t *testing.T) {
		cases := []struct{ current, target, perCycle int64 }{
			{0, 120000, 10000},
			{5000, 120000, 10000},
			{0, 100001, 10000},
			{99999, 100000, 1},
			{0, 1, 100000},
		}
		for _, c := range cases {
			points := ProjectSavings(c.current, c.target, c.perCycle, today, monthlyCfg(), today, 0)
			cycles, reachable := CyclesToGoalFromAmount(c.current, c.target, c.perCycle)
			if !reachable {
				t.Fatalf("%+v: expected reachable", c)
			}
			last := points[len(points)-1]
			if last.CycleIndex+1 != cycles {
				t.Errorf("%+v: trajectory ends at index %d, closed form says %d cycles", c, last.CycleIndex, cycles)
			}
			if last.Balance != c.target {
				t.Errorf("%+v: final balance %d != target", c, last.Balance)
			}
		}
	})

	t.Run("balance_clamped_at_target", func(t *testing.T) {
		points := ProjectSavings(0, 25000, 10000, today, monthlyCfg(), today, 0)
		for _, p := range points {
			if p.Balance > 25000 {
				t.Errorf("point %d overshoots target: %d", p.CycleIndex, p.Balance)
			}
		}
	})

	t.Run("met_goal_yields_single_point", func(t *testing.T) {
		points := ProjectSavings(120000, 120000, 10000, today, monthlyCfg(), today, 0)
		if len(points) != 1 || points[0].Balance != 120000 {
			t.Errorf("expected single point at 120000, got %v", points)
		}
	})

	t.Run("zero_contribution_yields_single_point", func(t *testing.T) {
		points := ProjectSavings(5000, 120000, 0, today, monthlyCfg(), today, 0)
		if len(points) != 1 {
			t.Fatalf("expected single point, got %d", len(points))
		}
		if points[0].Balance != 5000 {
			t.Errorf("expected current balance 5000, got %d", points[0].Balance)
		}
	})

	t.Run("unreachable_goal_truncates_at_cap", func(t *testing.T) {
		points := ProjectSavings(0, 100_000_000, 1, today, monthlyCfg(), today, 0)
		if len(points) != DefaultMaxCycles {
			t.Errorf("expected cap of %d points, got %d", DefaultMaxCycles, len(points))
		}
	})

	t.Run("cycle_windows_chain", func(t *testing.T) {
		points := ProjectSavings(0, 50000, 10000, today, monthlyCfg(), today, 0)
		for i := 1; i < len(points); i++ {
			wantStart := points[i-1].CycleEnd.AddDate(0, 0, 1)
			if !points[i].CycleStart.Equal(wantStart) {
				t.Errorf("point %d start %v, expected %v", i, points[i].CycleStart, wantStart)
			}
		}
	})
}

func TestProjectRepayment(t *testing.T) {
	today := Date(2024, time.January, 25)

	t.Run("interest_compounds_before_payment", func(t *testing.T) {
		points := ProjectRepayment(100000, 10000, today, monthlyCfg(), today, RepaymentOptions{
			IncludeInterest:   true,
			AnnualRatePercent: 12,
		})
		// 12% annual over 12 cycles is 1% per cycle: 100000 * 1.01 - 10000.
		if points[0].Balance != 91000 {
			t.Errorf("first point: expected 91000, got %d", points[0].Balance)
		}
		for i := 1; i < len(points); i++ {
			if points[i].Balance >= points[i-1].Balance {
				t.Fatalf("balance not strictly decreasing at point %d: %d -> %d", i, points[i-1].Balance, points[i].Balance)
			}
		}
		last := points[len(points)-1]
		if last.Balance != 0 {
			t.Errorf("expected cleared balance, got %d", last.Balance)
		}
	})

	t.Run("no_interest_agrees_with_closed_form", func(t *testing.T) {
		cases := []struct{ balance, perCycle int64 }{
			{100000, 10000},
			{100001, 10000},
			{9999, 10000},
			{1, 1},
		}
		for _, c := range cases {
			points := ProjectRepayment(c.balance, c.perCycle, today, monthlyCfg(), today, RepaymentOptions{})
			cycles, reachable := CyclesToClearFromAmount(c.balance, c.perCycle)
			if !reachable {
				t.Fatalf("%+v: expected reachable", c)
			}
			last := points[len(points)-1]
			if last.CycleIndex+1 != cycles {
				t.Errorf("%+v: trajectory ends at index %d, closed form says %d cycles", c, last.CycleIndex, cycles)
			}
			if last.Balance != 0 {
				t.Errorf("%+v: final balance %d, expected 0", c, last.Balance)
			}
		}
	})

	t.Run("four_weekly_uses_thirteen_cycles_per_year", func(t *testing.T) {
		anchor := Date(2024, time.January, 5)
		cfg := CycleConfig{Rule: RuleEvery4Weeks, Anchor: &anchor}
		points := ProjectRepayment(130000, 10000, anchor, cfg, anchor, RepaymentOptions{
			IncludeInterest:   true,
			AnnualRatePercent: 13,
		})
		// 13% over 13 cycles is 1% per cycle: 130000 * 1.01 - 10000 = 121300.
		if points[0].Balance != 121300 {
			t.Errorf("first point: expected 121300, got %d", points[0].Balance)
		}
	})

	t.Run("cleared_balance_yields_single_zero_point", func(t *testing.T) {
		points := ProjectRepayment(0, 10000, today, monthlyCfg(), today, RepaymentOptions{})
		if len(points) != 1 || points[0].Balance != 0 {
			t.Errorf("expected single zero point, got %v", points)
		}
	})

	t.Run("zero_payment_yields_single_point", func(t *testing.T) {
		points := ProjectRepayment(5000, 0, today, monthlyCfg(), today, RepaymentOptions{})
		if len(points) != 1 || points[0].Balance != 5000 {
			t.Errorf("expected single point at 5000, got %v", points)
		}
	})

	t.Run("interest_outpacing_payment_truncates_at_cap", func(t *testing.T) {
		points := ProjectRepayment(1_000_000, 100, today, monthlyCfg(), today, RepaymentOptions{
			IncludeInterest:   true,
			AnnualRatePercent: 24,
		})
		if len(points) != DefaultMaxCycles {
			t.Errorf("expected cap of %d points, got %d", DefaultMaxCycles, len(points))
		}
	})
}

func TestCountCyclesUntil(t *testing.T) {
	t.Run("monthly_month_diff", func(t *testing.T) {
		got := CountCyclesUntil(Date(2024, time.January, 25), Date(2025, time.January, 25), RuleSpecificDate)
		if got != 12 {
			t.Errorf("expected 12, got %d", got)
		}
	})

	t.Run("same_month_clamps_to_one", func(t *testing.T) {
		got := CountCyclesUntil(Date(2024, time.January, 5), Date(2024, time.January, 20), RuleSpecificDate)
		if got != 1 {
			t.Errorf("expected 1, got %d", got)
		}
	})

	t.Run("target_not_after_start_is_zero", func(t *testing.T) {
		d := Date(2024, time.January, 25)
		if got := CountCyclesUntil(d, d, RuleSpecificDate); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
		if got := CountCyclesUntil(d, d.AddDate(0, 0, -1), RuleEvery4Weeks); got != 0 {
			t.Errorf("expected 0 for past target, got %d", got)
		}
	})

	t.Run("four_weekly_rounds_up", func(t *testing.T) {
		start := Date(2024, time.January, 5)
		if got := CountCyclesUntil(start, start.AddDate(0, 0, 28), RuleEvery4Weeks); got != 1 {
			t.Errorf("expected 1 cycle for exactly 28 days, got %d", got)
		}
		if got := CountCyclesUntil(start, start.AddDate(0, 0, 29), RuleEvery4Weeks); got != 2 {
			t.Errorf("expected 2 cycles for 29 days, got %d", got)
		}
	})
}

func TestSuggestedAmounts(t *testing.T) {
	today := Date(2024, time.January, 25)

	t.Run("savings_spread_over_remaining_cycles", func(t *testing.T) {
		target := Date(2025, time.January, 25)
		got := SuggestedSavingsAmount(0, 120000, today, &target, RuleSpecificDate, today)
		if got == nil || *got != 10000 {
			t.Errorf("expected 10000, got %v", got)
		}
	})

	t.Run("rounds_up_to_the_cent", func(t *testing.T) {
		target := Date(2025, time.January, 25)
		got := SuggestedSavingsAmount(0, 120001, today, &target, RuleSpecificDate, today)
		if got == nil || *got != 10001 {
			t.Errorf("expected 10001, got %v", got)
		}
	})

	t.Run("no_target_date_yields_nil", func(t *testing.T) {
		if got := SuggestedSavingsAmount(0, 120000, today, nil, RuleSpecificDate, today); got != nil {
			t.Errorf("expected nil, got %d", *got)
		}
		if got := SuggestedRepaymentAmount(5000, today, nil, RuleSpecificDate, today); got != nil {
			t.Errorf("expected nil, got %d", *got)
		}
	})

	t.Run("met_goal_yields_zero", func(t *testing.T) {
		target := Date(2025, time.January, 25)
		if got := SuggestedSavingsAmount(120000, 120000, today, &target, RuleSpecificDate, today); got == nil || *got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
		if got := SuggestedRepaymentAmount(0, today, &target, RuleSpecificDate, today); got == nil || *got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("past_target_date_asks_for_everything_now", func(t *testing.T) {
		past := Date(2023, time.June, 1)
		got := SuggestedSavingsAmount(0, 120000, today, &past, RuleSpecificDate, today)
		if got == nil || *got != 120000 {
			t.Errorf("expected full remaining 120000, got %v", got)
		}
	})

	t.Run("repayment_spread", func(t *testing.T) {
		target := Date(2024, time.July, 25)
		got := SuggestedRepaymentAmount(60000, today, &target, RuleSpecificDate, today)
		if got == nil || *got != 10000 {
			t.Errorf("expected 10000, got %v", got)
		}
	})
}

func TestEndDateFromCycles(t *testing.T) {
	today := Date(2024, time.January, 25)
	cfg := monthlyCfg()

	first := EndDateFromCycles(today, 0, cfg, today)
	if !first.Equal(CycleEndDate(cfg, today)) {
		t.Errorf("cycle 0 end %v, expected %v", first, CycleEndDate(cfg, today))
	}

	third := EndDateFromCycles(today, 2, cfg, today)
	if !third.After(first) {
		t.Errorf("later cycle must end later: %v vs %v", third, first)
	}
}
