package booking

import (
	"context"
	"sort"

	providerRepo "servihub/database/repository/provider"
	"servihub/models"
	"servihub/services/location"
)

// Candidate pairs an eligible provider with its distance tier to the client.
type Candidate struct {
	Provider models.Provider
	Tier     int
}

// MatchingService finds and ranks eligible providers for a booking.
type MatchingService interface {
	EligibleCandidates(ctx context.Context, town, suburb, serviceID string, exclude []string) ([]Candidate, error)
}

// DefaultMatchingService implements MatchingService over the provider
// directory and the static location graph.
type DefaultMatchingService struct {
	ProviderRepo providerRepo.ProviderRepository
	Graph        *location.Graph
}

// EligibleCandidates returns ranked candidates: in-town providers that are
// active, available and verified, whose declared travel radius covers the
// client's suburb. A provider whose suburb pair is missing from the graph is
// excluded outright; an unknown distance is never treated as close.
func (s *DefaultMatchingService) EligibleCandidates(ctx context.Context, town, suburb, serviceID string, exclude []string) ([]Candidate, error) {
	providers, err := s.ProviderRepo.Directory(ctx, providerRepo.DirectoryCriteria{
		Town:       town,
		ExcludeIDs: exclude,
	})
	if err != nil {
		return nil, NewMatchError("provider directory lookup failed", err)
	}

	var candidates []Candidate
	for _, p := range providers {
		if serviceID != "" && !p.OffersService(serviceID) {
			continue
		}
		tier, ok := s.Graph.Tier(town, p.Suburb, suburb)
		if !ok {
			continue
		}
		if tier > p.MaxDistanceTier {
			continue
		}
		candidates = append(candidates, Candidate{Provider: p, Tier: tier})
	}

	rankCandidates(candidates)
	return candidates, nil
}

// rankCandidates imposes the deterministic total order used for selection:
// nearest tier first, then rating, then experience, then id so ties cannot
// flip between runs.
func rankCandidates(candidates []Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.Provider.Rating != b.Provider.Rating {
			return a.Provider.Rating > b.Provider.Rating
		}
		if a.Provider.TotalJobsCompleted != b.Provider.TotalJobsCompleted {
			return a.Provider.TotalJobsCompleted > b.Provider.TotalJobsCompleted
		}
		return a.Provider.ID < b.Provider.ID
	})
}
