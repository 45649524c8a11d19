package models

import (
	"time"

	"sprout/internal/paycycle"
)

// IncomeSource is a recurring income with its own recurrence rule, which may
// differ from the household's cycle rule (a four-weekly earner inside a
// monthly household lands multiple pay events per cycle).
type IncomeSource struct {
	Base
	HouseholdID   string                 `gorm:"type:uuid;not null;index" json:"household_id"`
	Name          string                 `gorm:"not null" json:"name"`
	Amount        int64                  `gorm:"not null" json:"amount"`
	FrequencyRule paycycle.Rule          `gorm:"not null" json:"frequency_rule"`
	DayOfMonth    *int                   `json:"day_of_month,omitempty"`
	AnchorDate    *time.Time             `json:"anchor_date,omitempty"`
	PaymentSource paycycle.PaymentSource `gorm:"not null" json:"payment_source"`
	IsActive      bool                   `gorm:"default:true" json:"is_active"`

	Household Household `gorm:"foreignKey:HouseholdID" json:"-"`
}

// Engine converts the stored source into the engine's value type.
func (s *IncomeSource) Engine() paycycle.IncomeSource {
	src := paycycle.IncomeSource{
		ID:            s.ID,
		Name:          s.Name,
		Amount:        s.Amount,
		Rule:          s.FrequencyRule,
		Anchor:        s.AnchorDate,
		PaymentSource: s.PaymentSource,
	}
	if s.DayOfMonth != nil {
		src.DayOfMonth = *s.DayOfMonth
	}
	return src
}

// EngineSources converts the active sources in a slice for the engine.
func EngineSources(sources []IncomeSource) []paycycle.IncomeSource {
	out := make([]paycycle.IncomeSource, 0, len(sources))
	for i := range sources {
		if sources[i].IsActive {
			out = append(out, sources[i].Engine())
		}
	}
	return out
}
