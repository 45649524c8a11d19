package models

import "time"

// RepaymentStatus is a debt's lifecycle state.
type RepaymentStatus string

const (
	RepaymentStatusActive RepaymentStatus = "active"
	RepaymentStatusPaused RepaymentStatus = "paused"
	RepaymentStatusPaid   RepaymentStatus = "paid"
)

// Repayment is a tracked debt. CurrentBalance moves when linked repay seeds
// are marked paid; the repayment flips to paid when the balance hits zero.
// InterestRate is an annual percentage used only by forecasts.
type Repayment struct {
	Base
	HouseholdID     string          `gorm:"type:uuid;not null;index" json:"household_id"`
	Name            string          `gorm:"not null" json:"name"`
	StartingBalance int64           `gorm:"not null" json:"starting_balance"`
	CurrentBalance  int64           `gorm:"not null" json:"current_balance"`
	InterestRate    *float64        `json:"interest_rate,omitempty"`
	TargetDate      *time.Time      `json:"target_date,omitempty"`
	Status          RepaymentStatus `gorm:"not null;default:'active'" json:"status"`

	Household Household `gorm:"foreignKey:HouseholdID" json:"-"`
}
