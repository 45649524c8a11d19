package paycycle

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SplitJointAmount divides a joint amount between the two payers by the "me"
// fraction. The me share is rounded to the cent (half away from zero) and the
// partner receives the exact remainder, so me + partner == amount always.
func SplitJointAmount(amount int64, ratio float64) (me, partner int64) {
	me = decimal.NewFromInt(amount).
		Mul(decimal.NewFromFloat(ratio)).
		Round(0).IntPart()
	return me, amount - me
}

// SeedSplit computes a seed's per-payer contributions. Personal seeds belong
// wholly to their payer; joint seeds use the seed's own ratio when set,
// falling back to the household ratio, then an even split.
func SeedSplit(amount int64, source PaymentSource, seedRatio *float64, householdRatio float64) (me, partner int64) {
	switch source {
	case SourceMe:
		return amount, 0
	case SourcePartner:
		return 0, amount
	}
	ratio := householdRatio
	if seedRatio != nil {
		ratio = *seedRatio
	}
	if ratio <= 0 || ratio > 1 {
		ratio = 0.5
	}
	return SplitJointAmount(amount, ratio)
}

// TransferSummary is the payday money-movement view of a cycle's seeds:
// how much goes into the joint account and how much each payer keeps aside
// in their own account.
type TransferSummary struct {
	// Joint-account transfer: joint seeds paid from the shared account.
	JointTransferTotal   int64 `json:"joint_transfer_total"`
	JointTransferMe      int64 `json:"joint_transfer_me"`
	JointTransferPartner int64 `json:"joint_transfer_partner"`

	// Personal bills per payer.
	MePersonal      int64 `json:"me_personal"`
	PartnerPersonal int64 `json:"partner_personal"`

	// Each payer's share of joint seeds paid from their own accounts.
	MeOwnShare      int64 `json:"me_own_share"`
	PartnerOwnShare int64 `json:"partner_own_share"`
}

// MeSetAside is the total the "me" payer keeps in their own account.
func (t TransferSummary) MeSetAside() int64 {
	return t.MePersonal + t.MeOwnShare
}

// PartnerSetAside is the total the partner keeps in their own account.
func (t TransferSummary) PartnerSetAside() int64 {
	return t.PartnerPersonal + t.PartnerOwnShare
}

// IsZero reports whether every total is zero, in which case the summary is
// suppressed entirely in the UI.
func (t TransferSummary) IsZero() bool {
	return t.JointTransferTotal == 0 && t.MeSetAside() == 0 && t.PartnerSetAside() == 0
}

// SummarizeTransfers aggregates seeds into a TransferSummary in a single
// linear pass, so all derived totals are a consistent snapshot of one list.
func SummarizeTransfers(seeds []SeedLine) TransferSummary {
	var t TransferSummary
	for _, s := range seeds {
		switch s.PaymentSource {
		case SourceJoint:
			if s.UsesJointAccount {
				t.JointTransferTotal += s.Amount
				t.JointTransferMe += s.AmountMe
				t.JointTransferPartner += s.AmountPartner
			} else {
				t.MeOwnShare += s.AmountMe
				t.PartnerOwnShare += s.AmountPartner
			}
		case SourceMe:
			t.MePersonal += s.Amount
		case SourcePartner:
			t.PartnerPersonal += s.Amount
		}
	}
	return t
}

// AllocationTable holds a cycle's allocated and remaining (unpaid) totals per
// category and payment source, keyed by the enums rather than by column-name
// strings.
type AllocationTable struct {
	TotalAllocated int64

	allocated [4][3]int64
	remaining [4][3]int64
}

// Allocated returns the allocated cents for a category and payment source.
func (a *AllocationTable) Allocated(t SeedType, s PaymentSource) int64 {
	return a.allocated[seedTypeIndex[t]][paymentSourceIndex[s]]
}

// Remaining returns the unpaid cents for a category and payment source.
func (a *AllocationTable) Remaining(t SeedType, s PaymentSource) int64 {
	return a.remaining[seedTypeIndex[t]][paymentSourceIndex[s]]
}

// MarshalJSON renders the table as nested category -> source maps.
func (a AllocationTable) MarshalJSON() ([]byte, error) {
	type cell struct {
		Allocated int64 `json:"allocated"`
		Remaining int64 `json:"remaining"`
	}
	out := struct {
		TotalAllocated int64                               `json:"total_allocated"`
		Categories     map[SeedType]map[PaymentSource]cell `json:"categories"`
	}{
		TotalAllocated: a.TotalAllocated,
		Categories:     make(map[SeedType]map[PaymentSource]cell, len(SeedTypes)),
	}
	for _, t := range SeedTypes {
		row := make(map[PaymentSource]cell, len(PaymentSources))
		for _, s := range PaymentSources {
			row[s] = cell{Allocated: a.Allocated(t, s), Remaining: a.Remaining(t, s)}
		}
		out.Categories[t] = row
	}
	return json.Marshal(out)
}

// SummarizeAllocations aggregates seeds into an AllocationTable in one pass.
// A joint seed's remaining amount is the sum of each payer's still-unpaid
// share; personal seeds count their full amount until paid.
func SummarizeAllocations(seeds []SeedLine) AllocationTable {
	var a AllocationTable
	for _, s := range seeds {
		ti, ok := seedTypeIndex[s.Type]
		if !ok {
			continue
		}
		si, ok := paymentSourceIndex[s.PaymentSource]
		if !ok {
			continue
		}

		a.TotalAllocated += s.Amount
		a.allocated[ti][si] += s.Amount

		if s.PaymentSource == SourceJoint {
			if !s.IsPaidMe {
				a.remaining[ti][si] += s.AmountMe
			}
			if !s.IsPaidPartner {
				a.remaining[ti][si] += s.AmountPartner
			}
		} else if !s.IsPaid {
			a.remaining[ti][si] += s.Amount
		}
	}
	return a
}
