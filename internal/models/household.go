package models

import (
	"time"

	"sprout/internal/paycycle"
)

// HouseholdRole distinguishes the household owner from the joining partner.
type HouseholdRole string

const (
	RoleOwner   HouseholdRole = "owner"
	RolePartner HouseholdRole = "partner"
)

// Household is the planning unit: one or two users sharing a pay cycle.
// JointRatio is the owner's share of joint costs; target percentages are
// advisory and never enforced against seed totals.
type Household struct {
	Base
	Name          string         `gorm:"not null" json:"name"`
	IsCouple      bool           `gorm:"default:false" json:"is_couple"`
	PartnerName   string         `json:"partner_name,omitempty"`
	JointRatio    float64        `gorm:"default:0.5" json:"joint_ratio"`
	Currency      string         `gorm:"size:3;not null;default:'GBP'" json:"currency"`
	TargetNeeds   int            `gorm:"default:50" json:"target_needs"`
	TargetWants   int            `gorm:"default:30" json:"target_wants"`
	TargetSavings int            `gorm:"default:15" json:"target_savings"`
	TargetRepay   int            `gorm:"default:5" json:"target_repay"`
	PayCycleType  paycycle.Rule  `gorm:"not null;default:'specific_date'" json:"pay_cycle_type"`
	PayDay        *int           `json:"pay_day,omitempty"`
	AnchorDate    *time.Time     `json:"anchor_date,omitempty"`
	InviteCode    string         `gorm:"size:8;uniqueIndex" json:"-"`
	Users         []User         `gorm:"foreignKey:HouseholdID" json:"users,omitempty"`
	PayCycles     []PayCycle     `gorm:"foreignKey:HouseholdID" json:"pay_cycles,omitempty"`
	Pots          []Pot          `gorm:"foreignKey:HouseholdID" json:"pots,omitempty"`
	Repayments    []Repayment    `gorm:"foreignKey:HouseholdID" json:"repayments,omitempty"`
	IncomeSources []IncomeSource `gorm:"foreignKey:HouseholdID" json:"income_sources,omitempty"`
}

// CycleConfig builds the engine's recurrence config from the stored settings.
func (h *Household) CycleConfig() paycycle.CycleConfig {
	cfg := paycycle.CycleConfig{Rule: h.PayCycleType, Anchor: h.AnchorDate}
	if h.PayDay != nil {
		cfg.PayDay = *h.PayDay
	}
	return cfg
}
