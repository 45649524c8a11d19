// Package paycycle implements the pay-cycle engine: cycle boundary dates for
// the three recurrence rules, income expansion, seed allocation summaries,
// the optimistic paid-state overlay, and pot/repayment forecasts.
//
// Everything here is a pure function over plain values. All monetary amounts
// are integer cents; all dates are midnight UTC. Callers (services, clients)
// are responsible for validating enum values before calling in.
package paycycle

import "time"

// Rule selects how a household's pay cycle recurs.
type Rule string

const (
	RuleSpecificDate   Rule = "specific_date"
	RuleLastWorkingDay Rule = "last_working_day"
	RuleEvery4Weeks    Rule = "every_4_weeks"
)

// SeedType is the budget category of a line item.
type SeedType string

const (
	SeedTypeNeed    SeedType = "need"
	SeedTypeWant    SeedType = "want"
	SeedTypeSavings SeedType = "savings"
	SeedTypeRepay   SeedType = "repay"
)

// SeedTypes lists all categories in display order.
var SeedTypes = []SeedType{SeedTypeNeed, SeedTypeWant, SeedTypeSavings, SeedTypeRepay}

// PaymentSource identifies which account a seed is paid from.
type PaymentSource string

const (
	SourceMe      PaymentSource = "me"
	SourcePartner PaymentSource = "partner"
	SourceJoint   PaymentSource = "joint"
)

// PaymentSources lists all payment sources.
var PaymentSources = []PaymentSource{SourceMe, SourcePartner, SourceJoint}

// Payer identifies who is toggling a seed's paid state. PayerBoth marks the
// whole seed at once and is the only valid payer for non-joint seeds.
type Payer string

const (
	PayerMe      Payer = "me"
	PayerPartner Payer = "partner"
	PayerBoth    Payer = "both"
)

// SeedLine is the engine's view of a seed: the fields the allocation and
// overlay computations need, detached from storage concerns.
type SeedLine struct {
	ID               string
	Amount           int64
	Type             SeedType
	PaymentSource    PaymentSource
	UsesJointAccount bool
	AmountMe         int64
	AmountPartner    int64
	IsPaid           bool
	IsPaidMe         bool
	IsPaidPartner    bool
}

// CycleConfig is a household's recurrence configuration.
type CycleConfig struct {
	Rule Rule
	// PayDay is the day of month for RuleSpecificDate.
	PayDay int
	// Anchor is the fixed reference date for RuleEvery4Weeks.
	Anchor *time.Time
}

var seedTypeIndex = map[SeedType]int{
	SeedTypeNeed:    0,
	SeedTypeWant:    1,
	SeedTypeSavings: 2,
	SeedTypeRepay:   3,
}

var paymentSourceIndex = map[PaymentSource]int{
	SourceMe:      0,
	SourcePartner: 1,
	SourceJoint:   2,
}
