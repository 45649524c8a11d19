package paycycle

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// IncomeSource is the engine's view of a recurring income definition.
type IncomeSource struct {
	ID            string
	Name          string
	Amount        int64
	Rule          Rule
	DayOfMonth    int
	Anchor        *time.Time
	PaymentSource PaymentSource
}

// IncomeEvent is one concrete income landing inside a cycle window.
type IncomeEvent struct {
	SourceID      string
	SourceName    string
	Date          time.Time
	Amount        int64
	PaymentSource PaymentSource
}

// SourceEvents reports how many times one source pays within a cycle.
type SourceEvents struct {
	SourceID string `json:"source_id"`
	Count    int    `json:"count"`
	Amount   int64  `json:"amount"`
}

// IncomeProjection is a cycle's projected income snapshot.
type IncomeProjection struct {
	Total           int64          `json:"total"`
	MeIncome        int64          `json:"me_income"`
	PartnerIncome   int64          `json:"partner_income"`
	EventsPerSource []SourceEvents `json:"events_per_source"`
}

func (s IncomeSource) cycleConfig() CycleConfig {
	return CycleConfig{Rule: s.Rule, PayDay: s.DayOfMonth, Anchor: s.Anchor}
}

// IncomeEventsForCycle expands every source into its concrete payment dates
// inside [start, end], sorted by date. A source's recurrence is independent of
// the cycle's own rule, so a single cycle can hold several events from one
// source.
func IncomeEventsForCycle(start, end time.Time, sources []IncomeSource) []IncomeEvent {
	var events []IncomeEvent
	for _, src := range sources {
		name := src.Name
		if name == "" {
			name = "Income"
		}
		for _, d := range PaymentDatesInRange(src.cycleConfig(), start, end) {
			events = append(events, IncomeEvent{
				SourceID:      src.ID,
				SourceName:    name,
				Date:          d,
				Amount:        src.Amount,
				PaymentSource: src.PaymentSource,
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// ProjectIncomeForCycle totals the income landing in [start, end] and splits
// it into me/partner snapshots. Joint income is divided by jointRatio (the
// "me" fraction); the partner receives the exact remainder so the two shares
// always sum to the joint amount.
func ProjectIncomeForCycle(start, end time.Time, sources []IncomeSource, jointRatio float64) IncomeProjection {
	var p IncomeProjection
	for _, src := range sources {
		count := len(PaymentDatesInRange(src.cycleConfig(), start, end))
		amount := src.Amount * int64(count)
		p.Total += amount
		p.EventsPerSource = append(p.EventsPerSource, SourceEvents{
			SourceID: src.ID,
			Count:    count,
			Amount:   amount,
		})

		switch src.PaymentSource {
		case SourceMe:
			p.MeIncome += amount
		case SourcePartner:
			p.PartnerIncome += amount
		case SourceJoint:
			me := decimal.NewFromInt(amount).
				Mul(decimal.NewFromFloat(jointRatio)).
				Round(0).IntPart()
			p.MeIncome += me
			p.PartnerIncome += amount - me
		}
	}
	return p
}
