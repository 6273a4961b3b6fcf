package models

import "time"

// PricingSettings is a snapshot of platform pricing configuration. The
// settings accessor hands out copies; a snapshot captured at booking time is
// what prices that booking, so later updates never retroactively alter
// already-created bookings.
type PricingSettings struct {
	StandardCommissionPct  float64   `bson:"standardCommissionPct" json:"standardCommissionPct"`
	EmergencyCommissionPct float64   `bson:"emergencyCommissionPct" json:"emergencyCommissionPct"`
	SubscriptionFlatFee    float64   `bson:"subscriptionFlatFee" json:"subscriptionFlatFee"` // Flat commission on package-covered bookings.
	WeekendMarkupPct       float64   `bson:"weekendMarkupPct" json:"weekendMarkupPct"`
	WeekendBonusAmount     float64   `bson:"weekendBonusAmount" json:"weekendBonusAmount"`
	UpdatedAt              time.Time `bson:"updatedAt" json:"updatedAt"`
}
