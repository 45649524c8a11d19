package models

import (
	"time"

	"sprout/internal/paycycle"
)

// Seed is one planned payment inside a cycle: a bill, a pot contribution, or
// a debt payment. Joint seeds carry a per-payer split; savings and repay
// seeds may be linked to a Pot or Repayment so marking them paid moves the
// linked balance.
type Seed struct {
	Base
	PayCycleID       string                 `gorm:"type:uuid;not null;index" json:"pay_cycle_id"`
	HouseholdID      string                 `gorm:"type:uuid;not null;index" json:"household_id"`
	Name             string                 `gorm:"not null" json:"name"`
	Amount           int64                  `gorm:"not null" json:"amount"`
	Type             paycycle.SeedType      `gorm:"not null" json:"type"`
	PaymentSource    paycycle.PaymentSource `gorm:"not null" json:"payment_source"`
	SplitRatio       *float64               `json:"split_ratio,omitempty"`
	UsesJointAccount bool                   `gorm:"default:false" json:"uses_joint_account"`
	AmountMe         int64                  `gorm:"default:0" json:"amount_me"`
	AmountPartner    int64                  `gorm:"default:0" json:"amount_partner"`
	IsRecurring      bool                   `gorm:"default:false" json:"is_recurring"`
	DueDate          *time.Time             `json:"due_date,omitempty"`
	IsPaid           bool                   `gorm:"default:false" json:"is_paid"`
	IsPaidMe         bool                   `gorm:"default:false" json:"is_paid_me"`
	IsPaidPartner    bool                   `gorm:"default:false" json:"is_paid_partner"`
	LinkedPotID      *string                `gorm:"type:uuid" json:"linked_pot_id,omitempty"`
	LinkedRepayID    *string                `gorm:"type:uuid" json:"linked_repayment_id,omitempty"`

	PayCycle  PayCycle   `gorm:"foreignKey:PayCycleID" json:"-"`
	LinkedPot *Pot       `gorm:"foreignKey:LinkedPotID" json:"linked_pot,omitempty"`
	LinkedRep *Repayment `gorm:"foreignKey:LinkedRepayID" json:"linked_repayment,omitempty"`
}

// Line converts the stored seed into the engine's value type.
func (s *Seed) Line() paycycle.SeedLine {
	return paycycle.SeedLine{
		ID:               s.ID,
		Amount:           s.Amount,
		Type:             s.Type,
		PaymentSource:    s.PaymentSource,
		UsesJointAccount: s.UsesJointAccount,
		AmountMe:         s.AmountMe,
		AmountPartner:    s.AmountPartner,
		IsPaid:           s.IsPaid,
		IsPaidMe:         s.IsPaidMe,
		IsPaidPartner:    s.IsPaidPartner,
	}
}

// SeedLines converts a slice of stored seeds for the engine.
func SeedLines(seeds []Seed) []paycycle.SeedLine {
	lines := make([]paycycle.SeedLine, len(seeds))
	for i := range seeds {
		lines[i] = seeds[i].Line()
	}
	return lines
}
