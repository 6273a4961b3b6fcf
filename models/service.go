package models

// Service types.
const (
	ServiceTypeOneOff       = "one_off"
	ServiceTypeSubscription = "subscription" // eligible for package coverage
)

// Service is a bookable service offering. Price changes apply only to future
// bookings; a booking freezes the amount it was quoted at creation.
type Service struct {
	ID              string  `bson:"id" json:"id"`
	Name            string  `bson:"name" json:"name"`
	PriceOneOff     float64 `bson:"priceOneOff" json:"priceOneOff"` // N$ gross price before adjustments.
	DurationMinutes int     `bson:"durationMinutes" json:"durationMinutes"`
	ServiceType     string  `bson:"serviceType" json:"serviceType"`
}
