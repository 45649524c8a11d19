package models

import (
	"time"

	"sprout/internal/paycycle"
)

// PayCycleStatus is the lifecycle state of a cycle. A household has exactly
// one active cycle and at most one draft; completed cycles are history.
type PayCycleStatus string

const (
	CycleStatusDraft     PayCycleStatus = "draft"
	CycleStatusActive    PayCycleStatus = "active"
	CycleStatusCompleted PayCycleStatus = "completed"
	CycleStatusArchived  PayCycleStatus = "archived"
)

// PayCycle is one budgeting period. The income and allocation columns are
// denormalized snapshots recomputed whenever the cycle's seeds change; the
// recurrence settings are copied from the household at creation so a later
// settings change never rewrites history.
type PayCycle struct {
	Base
	HouseholdID   string         `gorm:"type:uuid;not null;index" json:"household_id"`
	Name          string         `gorm:"not null" json:"name"`
	Status        PayCycleStatus `gorm:"not null;default:'draft';index" json:"status"`
	StartDate     time.Time      `gorm:"not null" json:"start_date"`
	EndDate       time.Time      `gorm:"not null" json:"end_date"`
	PayCycleType  paycycle.Rule  `gorm:"not null" json:"pay_cycle_type"`
	PayDay        *int           `json:"pay_day,omitempty"`
	TotalIncome   int64          `gorm:"default:0" json:"total_income"`
	MeIncome      int64          `gorm:"default:0" json:"me_income"`
	PartnerIncome int64          `gorm:"default:0" json:"partner_income"`

	TotalAllocated int64 `gorm:"default:0" json:"total_allocated"`

	AllocNeedMe         int64 `gorm:"default:0" json:"alloc_need_me"`
	AllocNeedPartner    int64 `gorm:"default:0" json:"alloc_need_partner"`
	AllocNeedJoint      int64 `gorm:"default:0" json:"alloc_need_joint"`
	AllocWantMe         int64 `gorm:"default:0" json:"alloc_want_me"`
	AllocWantPartner    int64 `gorm:"default:0" json:"alloc_want_partner"`
	AllocWantJoint      int64 `gorm:"default:0" json:"alloc_want_joint"`
	AllocSavingsMe      int64 `gorm:"default:0" json:"alloc_savings_me"`
	AllocSavingsPartner int64 `gorm:"default:0" json:"alloc_savings_partner"`
	AllocSavingsJoint   int64 `gorm:"default:0" json:"alloc_savings_joint"`
	AllocRepayMe        int64 `gorm:"default:0" json:"alloc_repay_me"`
	AllocRepayPartner   int64 `gorm:"default:0" json:"alloc_repay_partner"`
	AllocRepayJoint     int64 `gorm:"default:0" json:"alloc_repay_joint"`

	RemNeedMe         int64 `gorm:"default:0" json:"rem_need_me"`
	RemNeedPartner    int64 `gorm:"default:0" json:"rem_need_partner"`
	RemNeedJoint      int64 `gorm:"default:0" json:"rem_need_joint"`
	RemWantMe         int64 `gorm:"default:0" json:"rem_want_me"`
	RemWantPartner    int64 `gorm:"default:0" json:"rem_want_partner"`
	RemWantJoint      int64 `gorm:"default:0" json:"rem_want_joint"`
	RemSavingsMe      int64 `gorm:"default:0" json:"rem_savings_me"`
	RemSavingsPartner int64 `gorm:"default:0" json:"rem_savings_partner"`
	RemSavingsJoint   int64 `gorm:"default:0" json:"rem_savings_joint"`
	RemRepayMe        int64 `gorm:"default:0" json:"rem_repay_me"`
	RemRepayPartner   int64 `gorm:"default:0" json:"rem_repay_partner"`
	RemRepayJoint     int64 `gorm:"default:0" json:"rem_repay_joint"`

	ClosedAt *time.Time `json:"closed_at,omitempty"`

	Household Household `gorm:"foreignKey:HouseholdID" json:"-"`
	Seeds     []Seed    `gorm:"foreignKey:PayCycleID" json:"seeds,omitempty"`
}

// IsLocked reports whether the cycle's budget has been closed for editing.
func (c *PayCycle) IsLocked() bool {
	return c.ClosedAt != nil
}

// Config rebuilds the engine config from the cycle's recurrence snapshot. The
// anchor for four-weekly cycles is the cycle's own start date.
func (c *PayCycle) Config() paycycle.CycleConfig {
	cfg := paycycle.CycleConfig{Rule: c.PayCycleType}
	if c.PayDay != nil {
		cfg.PayDay = *c.PayDay
	}
	if c.PayCycleType == paycycle.RuleEvery4Weeks {
		start := c.StartDate
		cfg.Anchor = &start
	}
	return cfg
}

// SetAllocations copies an allocation table into the denormalized columns.
func (c *PayCycle) SetAllocations(t paycycle.AllocationTable) {
	c.TotalAllocated = t.TotalAllocated

	c.AllocNeedMe = t.Allocated(paycycle.SeedTypeNeed, paycycle.SourceMe)
	c.AllocNeedPartner = t.Allocated(paycycle.SeedTypeNeed, paycycle.SourcePartner)
	c.AllocNeedJoint = t.Allocated(paycycle.SeedTypeNeed, paycycle.SourceJoint)
	c.AllocWantMe = t.Allocated(paycycle.SeedTypeWant, paycycle.SourceMe)
	c.AllocWantPartner = t.Allocated(paycycle.SeedTypeWant, paycycle.SourcePartner)
	c.AllocWantJoint = t.Allocated(paycycle.SeedTypeWant, paycycle.SourceJoint)
	c.AllocSavingsMe = t.Allocated(paycycle.SeedTypeSavings, paycycle.SourceMe)
	c.AllocSavingsPartner = t.Allocated(paycycle.SeedTypeSavings, paycycle.SourcePartner)
	c.AllocSavingsJoint = t.Allocated(paycycle.SeedTypeSavings, paycycle.SourceJoint)
	c.AllocRepayMe = t.Allocated(paycycle.SeedTypeRepay, paycycle.SourceMe)
	c.AllocRepayPartner = t.Allocated(paycycle.SeedTypeRepay, paycycle.SourcePartner)
	c.AllocRepayJoint = t.Allocated(paycycle.SeedTypeRepay, paycycle.SourceJoint)

	c.RemNeedMe = t.Remaining(paycycle.SeedTypeNeed, paycycle.SourceMe)
	c.RemNeedPartner = t.Remaining(paycycle.SeedTypeNeed, paycycle.SourcePartner)
	c.RemNeedJoint = t.Remaining(paycycle.SeedTypeNeed, paycycle.SourceJoint)
	c.RemWantMe = t.Remaining(paycycle.SeedTypeWant, paycycle.SourceMe)
	c.RemWantPartner = t.Remaining(paycycle.SeedTypeWant, paycycle.SourcePartner)
	c.RemWantJoint = t.Remaining(paycycle.SeedTypeWant, paycycle.SourceJoint)
	c.RemSavingsMe = t.Remaining(paycycle.SeedTypeSavings, paycycle.SourceMe)
	c.RemSavingsPartner = t.Remaining(paycycle.SeedTypeSavings, paycycle.SourcePartner)
	c.RemSavingsJoint = t.Remaining(paycycle.SeedTypeSavings, paycycle.SourceJoint)
	c.RemRepayMe = t.Remaining(paycycle.SeedTypeRepay, paycycle.SourceMe)
	c.RemRepayPartner = t.Remaining(paycycle.SeedTypeRepay, paycycle.SourcePartner)
	c.RemRepayJoint = t.Remaining(paycycle.SeedTypeRepay, paycycle.SourceJoint)
}
