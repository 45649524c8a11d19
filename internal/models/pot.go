package models

import "time"

// PotStatus is a savings pot's lifecycle state.
type PotStatus string

const (
	PotStatusActive   PotStatus = "active"
	PotStatusPaused   PotStatus = "paused"
	PotStatusComplete PotStatus = "complete"
)

// Pot is a savings goal. CurrentAmount moves when linked savings seeds are
// marked paid; the pot flips to complete when it reaches the target.
type Pot struct {
	Base
	HouseholdID   string     `gorm:"type:uuid;not null;index" json:"household_id"`
	Name          string     `gorm:"not null" json:"name"`
	TargetAmount  int64      `gorm:"not null" json:"target_amount"`
	CurrentAmount int64      `gorm:"default:0" json:"current_amount"`
	TargetDate    *time.Time `json:"target_date,omitempty"`
	Status        PotStatus  `gorm:"not null;default:'active'" json:"status"`

	Household Household `gorm:"foreignKey:HouseholdID" json:"-"`
}
