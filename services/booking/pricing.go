package booking

import (
	"math"

	"servihub/models"
)

// Tax rates applied to the provider's gross-after-commission.
const (
	IncomeTaxRate      = 0.18
	WithholdingTaxRate = 0.10
)

// Quote is the full price breakdown for one booking. All amounts are N$.
type Quote struct {
	ClientTotal      float64 `json:"clientTotal"` // What the client pays; 0 when covered by a package.
	Commission       float64 `json:"commission"`
	TaxableAmount    float64 `json:"taxableAmount"` // Gross after commission.
	IncomeTax        float64 `json:"incomeTax"`
	WithholdingTax   float64 `json:"withholdingTax"`
	WeekendBonus     float64 `json:"weekendBonus"`
	NetPayout        float64 `json:"netPayout"`
	CoveredByPackage bool    `json:"coveredByPackage"`
}

// ComputeQuote prices a booking from an immutable settings snapshot. Pure
// function, no I/O: callers evaluate weekend status once at creation and the
// result is frozen on the booking record.
//
// Weekend markup raises the client-facing price before commission is taken;
// the weekend bonus lands on top of the tax-adjusted net. Package-covered
// bookings cost the client nothing and carry a flat subscription commission
// instead of a rate.
func ComputeQuote(grossPrice float64, covered, emergency, weekend bool, s models.PricingSettings) Quote {
	if covered {
		q := Quote{
			Commission:       s.SubscriptionFlatFee,
			CoveredByPackage: true,
		}
		if weekend {
			q.WeekendBonus = s.WeekendBonusAmount
		}
		q.NetPayout = q.WeekendBonus
		return q
	}

	clientTotal := grossPrice
	if weekend {
		clientTotal *= 1 + s.WeekendMarkupPct/100
	}

	rate := s.StandardCommissionPct
	if emergency {
		rate = s.EmergencyCommissionPct
	}
	commission := clientTotal * rate / 100

	taxable := clientTotal - commission
	incomeTax := taxable * IncomeTaxRate
	withholding := taxable * WithholdingTaxRate

	q := Quote{
		ClientTotal:    round2(clientTotal),
		Commission:     round2(commission),
		TaxableAmount:  round2(taxable),
		IncomeTax:      round2(incomeTax),
		WithholdingTax: round2(withholding),
	}
	if weekend {
		q.WeekendBonus = s.WeekendBonusAmount
	}
	q.NetPayout = round2(math.Max(0, taxable-incomeTax-withholding) + q.WeekendBonus)
	return q
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
