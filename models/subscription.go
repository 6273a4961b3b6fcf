package models

import "time"

// PackageEntitlement grants a per-service allowance within a rolling cycle.
type PackageEntitlement struct {
	ServiceID        string `bson:"serviceId" json:"serviceId"`
	QuantityPerCycle int    `bson:"quantityPerCycle" json:"quantityPerCycle"`
	CycleDays        int    `bson:"cycleDays" json:"cycleDays"` // Rolling trailing window, not calendar-aligned.
}

// SubscriptionPackage is a purchasable bundle of entitlements.
type SubscriptionPackage struct {
	ID           string               `bson:"id" json:"id"`
	Name         string               `bson:"name" json:"name"`
	Price        float64              `bson:"price" json:"price"`
	Entitlements []PackageEntitlement `bson:"entitlements" json:"entitlements"`
}

// Entitlement returns the package's allowance for a service, if any.
func (p SubscriptionPackage) Entitlement(serviceID string) (PackageEntitlement, bool) {
	for _, e := range p.Entitlements {
		if e.ServiceID == serviceID {
			return e, true
		}
	}
	return PackageEntitlement{}, false
}

// ActivePackage binds a client to a package for a date range. At most one
// active package per client at any instant.
type ActivePackage struct {
	ID         string    `bson:"id" json:"id"`
	ClientID   string    `bson:"clientId" json:"clientId"`
	PackageID  string    `bson:"packageId" json:"packageId"`
	Status     string    `bson:"status" json:"status"` // "active", "expired", "cancelled"
	StartDate  time.Time `bson:"startDate" json:"startDate"`
	ExpiryDate time.Time `bson:"expiryDate" json:"expiryDate"`
}

// UsageRecord is an append-only log entry of one entitlement consumption.
// Used counts are always derived by replaying these records within the
// trailing cycle window; there is no separate counter to drift out of sync.
type UsageRecord struct {
	ID        string    `bson:"id" json:"id"`
	ClientID  string    `bson:"clientId" json:"clientId"`
	PackageID string    `bson:"packageId" json:"packageId"`
	ServiceID string    `bson:"serviceId" json:"serviceId"`
	BookingID string    `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
