package models

import "time"

// Provider is an independent service provider registered on the platform.
// Providers are never hard-deleted while bookings reference them; offboarding
// flips Active off instead.
type Provider struct {
	ID                 string    `bson:"id" json:"id"`
	Name               string    `bson:"name" json:"name"`
	Town               string    `bson:"town" json:"town"`                             // Home-base town.
	Suburb             string    `bson:"suburb" json:"suburb"`                         // Home-base suburb within the town.
	MaxDistanceTier    int       `bson:"maxDistanceTier" json:"maxDistanceTier"`       // 0-4, how far the provider is willing to travel.
	Rating             float64   `bson:"rating" json:"rating"`                         // 0-5 average rating.
	TotalJobsCompleted int       `bson:"totalJobsCompleted" json:"totalJobsCompleted"` // Lifetime completed bookings.
	Verified           bool      `bson:"verified" json:"verified"`                     // Set by the external verification workflow.
	Active             bool      `bson:"active" json:"active"`                         // Soft-delete flag, platform-controlled.
	Available          bool      `bson:"available" json:"available"`                   // Toggled by the provider.
	ServiceIDs         []string  `bson:"serviceIds,omitempty" json:"serviceIds,omitempty"` // Optional specializations; empty means any service.
	CreatedAt          time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OffersService reports whether the provider can take a booking for the given
// service. An empty specialization list means the provider takes anything.
func (p Provider) OffersService(serviceID string) bool {
	if len(p.ServiceIDs) == 0 {
		return true
	}
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
