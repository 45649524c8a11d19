package paycycle

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMaxCycles bounds every projection so a contribution too small to
// ever close the gap still terminates. Hitting the cap is not an error; the
// trajectory is simply truncated.
const DefaultMaxCycles = 60

// ProjectionPoint is one future cycle boundary in a forecast trajectory.
type ProjectionPoint struct {
	CycleIndex int       `json:"cycle_index"`
	CycleStart time.Time `json:"cycle_start"`
	CycleEnd   time.Time `json:"cycle_end"`
	Balance    int64     `json:"balance"`
}

// RepaymentOptions controls interest handling for repayment projections.
type RepaymentOptions struct {
	IncludeInterest   bool
	AnnualRatePercent float64
	MaxCycles         int
}

// effectiveStart picks the projection origin: today, or the cycle's nominal
// start when it is still in the future. A goal created mid-cycle projects
// from today rather than retroactively from the cycle's theoretical start.
func effectiveStart(cycleStart, today time.Time) time.Time {
	cycleStart = Midnight(cycleStart)
	today = Midnight(today)
	if cycleStart.After(today) {
		return cycleStart
	}
	return today
}

// cycleRange returns the [start, end] window for the n-th projected cycle
// (0-based) from the effective start.
func cycleRange(effStart time.Time, n int, cfg CycleConfig) (start, end time.Time) {
	start = effStart
	end = CycleEndDate(cfg, effStart)
	for i := 0; i < n; i++ {
		start, end = NextCycleDates(cfg, end)
	}
	return start, end
}

// cyclesPerYear approximates how many cycles fit in a year for per-cycle
// interest conversion: 52/4 = 13 for four-weekly cycles, 12 otherwise.
func cyclesPerYear(rule Rule) int {
	if rule == RuleEvery4Weeks {
		return 13
	}
	return 12
}

// ProjectSavings forecasts a pot's balance at each future cycle boundary
// until it reaches target or maxCycles is hit. Point n carries the balance
// after the (n+1)-th contribution, clamped at target. When the goal is
// already met, or the contribution is not positive, a single point at the
// current balance is returned.
func ProjectSavings(current, target, perCycle int64, cycleStart time.Time, cfg CycleConfig, today time.Time, maxCycles int) []ProjectionPoint {
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}
	eff := effectiveStart(cycleStart, today)

	if current >= target || perCycle <= 0 {
		s, e := cycleRange(eff, 0, cfg)
		return []ProjectionPoint{{CycleIndex: 0, CycleStart: s, CycleEnd: e, Balance: current}}
	}

	points := make([]ProjectionPoint, 0, maxCycles)
	balance := current
	start, end := cycleRange(eff, 0, cfg)
	for i := 0; i < maxCycles; i++ {
		balance += perCycle
		if balance > target {
			balance = target
		}
		points = append(points, ProjectionPoint{
			CycleIndex: i,
			CycleStart: start,
			CycleEnd:   end,
			Balance:    balance,
		})
		if balance >= target {
			break
		}
		start, end = NextCycleDates(cfg, end)
	}
	return points
}

// ProjectRepayment forecasts a debt balance at each future cycle boundary
// until it clears or the cap is hit. With interest enabled, each cycle first
// compounds the balance by the per-cycle rate (rounded to the cent so drift
// cannot accumulate across iterations), then deducts the payment, floored at
// zero. A cleared or unpayable balance yields a single point.
func ProjectRepayment(current, perCycle int64, cycleStart time.Time, cfg CycleConfig, today time.Time, opts RepaymentOptions) []ProjectionPoint {
	maxCycles := opts.MaxCycles
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}
	eff := effectiveStart(cycleStart, today)

	if current <= 0 {
		s, e := cycleRange(eff, 0, cfg)
		return []ProjectionPoint{{CycleIndex: 0, CycleStart: s, CycleEnd: e, Balance: 0}}
	}
	if perCycle <= 0 {
		s, e := cycleRange(eff, 0, cfg)
		return []ProjectionPoint{{CycleIndex: 0, CycleStart: s, CycleEnd: e, Balance: current}}
	}

	var ratePerCycle decimal.Decimal
	applyInterest := opts.IncludeInterest && opts.AnnualRatePercent > 0
	if applyInterest {
		ratePerCycle = decimal.NewFromFloat(opts.AnnualRatePercent).
			Div(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(cyclesPerYear(cfg.Rule))))
	}

	points := make([]ProjectionPoint, 0, maxCycles)
	balance := current
	start, end := cycleRange(eff, 0, cfg)
	for i := 0; i < maxCycles; i++ {
		if applyInterest {
			balance = decimal.NewFromInt(balance).
				Mul(decimal.NewFromInt(1).Add(ratePerCycle)).
				Round(0).IntPart()
		}
		balance -= perCycle
		if balance < 0 {
			balance = 0
		}
		points = append(points, ProjectionPoint{
			CycleIndex: i,
			CycleStart: start,
			CycleEnd:   end,
			Balance:    balance,
		})
		if balance <= 0 {
			break
		}
		start, end = NextCycleDates(cfg, end)
	}
	return points
}

// CyclesToGoalFromAmount is the closed-form count of cycles needed to reach a
// savings target at a fixed contribution. It agrees with ProjectSavings'
// terminal CycleIndex + 1 for the same inputs. reachable is false when the
// contribution cannot close the gap.
func CyclesToGoalFromAmount(current, target, perCycle int64) (cycles int, reachable bool) {
	remaining := target - current
	if remaining <= 0 {
		return 0, true
	}
	if perCycle <= 0 {
		return 0, false
	}
	return int((remaining + perCycle - 1) / perCycle), true
}

// CyclesToClearFromAmount is the closed-form count of cycles needed to clear
// a debt at a fixed payment, ignoring interest. It agrees with
// ProjectRepayment's terminal CycleIndex + 1 when interest is off.
func CyclesToClearFromAmount(balance, perCycle int64) (cycles int, reachable bool) {
	if balance <= 0 {
		return 0, true
	}
	if perCycle <= 0 {
		return 0, false
	}
	return int((balance + perCycle - 1) / perCycle), true
}

// CountCyclesUntil counts pay cycles between start and target: whole months
// for the two monthly rules, 28-day periods for every_4_weeks. Returns 0 when
// target is not after start, and never less than 1 otherwise.
func CountCyclesUntil(start, target time.Time, rule Rule) int {
	start = Midnight(start)
	target = Midnight(target)
	if !target.After(start) {
		return 0
	}

	if rule == RuleEvery4Weeks {
		days := int(target.Sub(start).Hours() / 24)
		cycles := (days + 27) / 28
		if cycles < 1 {
			return 1
		}
		return cycles
	}

	months := (target.Year()-start.Year())*12 + int(target.Month()) - int(start.Month())
	if months < 1 {
		return 1
	}
	return months
}

// SuggestedSavingsAmount solves the inverse projection: the minimal uniform
// per-cycle contribution reaching target by targetDate, rounded up to the
// cent. Returns nil when no target date is set and 0 when the goal is already
// met. The cycle count divisor is clamped to 1 so a past target date never
// divides by zero.
func SuggestedSavingsAmount(current, target int64, cycleStart time.Time, targetDate *time.Time, rule Rule, today time.Time) *int64 {
	remaining := target - current
	if remaining <= 0 {
		zero := int64(0)
		return &zero
	}
	if targetDate == nil {
		return nil
	}
	amount := perCycleAmount(remaining, cycleStart, *targetDate, rule, today)
	return &amount
}

// SuggestedRepaymentAmount is the repayment counterpart: current balance
// spread over the cycles remaining until targetDate.
func SuggestedRepaymentAmount(balance int64, cycleStart time.Time, targetDate *time.Time, rule Rule, today time.Time) *int64 {
	if balance <= 0 {
		zero := int64(0)
		return &zero
	}
	if targetDate == nil {
		return nil
	}
	amount := perCycleAmount(balance, cycleStart, *targetDate, rule, today)
	return &amount
}

func perCycleAmount(remaining int64, cycleStart, targetDate time.Time, rule Rule, today time.Time) int64 {
	cycles := CountCyclesUntil(effectiveStart(cycleStart, today), targetDate, rule)
	if cycles < 1 {
		cycles = 1
	}
	n := int64(cycles)
	return (remaining + n - 1) / n
}

// EndDateFromCycles returns the end date of the n-th projected cycle
// (0-based) from the effective start.
func EndDateFromCycles(cycleStart time.Time, n int, cfg CycleConfig, today time.Time) time.Time {
	_, end := cycleRange(effectiveStart(cycleStart, today), n, cfg)
	return end
}
