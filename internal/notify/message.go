package notify

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"sprout/internal/models"
	"sprout/internal/paycycle"
)

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// formatAmount renders a minor-unit amount as a currency string, e.g. £120.00.
func formatAmount(minor int64, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	value := decimal.NewFromInt(minor).Div(decimal.NewFromInt(100))
	return symbol + value.StringFixed(2)
}

// paydayMessage builds the payday transfer summary sent to linked chats.
func paydayMessage(household *models.Household, cycle *models.PayCycle, t paycycle.TransferSummary) string {
	cur := household.Currency

	var b strings.Builder
	fmt.Fprintf(&b, "💰 *Payday: %s*\n\n", cycle.Name)

	if t.JointTransferTotal > 0 {
		fmt.Fprintf(&b, "Joint account transfer: *%s*\n", formatAmount(t.JointTransferTotal, cur))
		if household.IsCouple {
			fmt.Fprintf(&b, "  • You: %s\n", formatAmount(t.JointTransferMe, cur))
			fmt.Fprintf(&b, "  • %s: %s\n", partnerLabel(household), formatAmount(t.JointTransferPartner, cur))
		}
		b.WriteString("\n")
	}

	if t.MeSetAside() > 0 {
		fmt.Fprintf(&b, "Keep aside (you): *%s*\n", formatAmount(t.MeSetAside(), cur))
	}
	if household.IsCouple && t.PartnerSetAside() > 0 {
		fmt.Fprintf(&b, "Keep aside (%s): *%s*\n", partnerLabel(household), formatAmount(t.PartnerSetAside(), cur))
	}

	fmt.Fprintf(&b, "\nCycle runs %s to %s.",
		cycle.StartDate.Format("2 Jan"), cycle.EndDate.Format("2 Jan"))
	return b.String()
}

func partnerLabel(household *models.Household) string {
	if household.PartnerName != "" {
		return household.PartnerName
	}
	return "Partner"
}
