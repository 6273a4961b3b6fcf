package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	entitlementRepo "servihub/database/repository/entitlement"
	"servihub/models"

	"github.com/google/uuid"
)

// Entitlement outcomes.
type EntitlementOutcome string

const (
	EntitlementConsumed    EntitlementOutcome = "consumed"
	EntitlementNotEntitled EntitlementOutcome = "not_entitled"
	EntitlementExhausted   EntitlementOutcome = "exhausted"
)

// EntitlementResult reports one consumption attempt. NotEntitled and
// Exhausted are expected outcomes, not errors; the caller falls back to
// pay-per-use pricing.
type EntitlementResult struct {
	Outcome   EntitlementOutcome `json:"outcome"`
	Remaining int                `json:"remaining"` // Uses left in the cycle after this consumption.
	PackageID string             `json:"packageId,omitempty"`
	// UsageRecordID identifies the appended ledger entry on a consumed
	// outcome, so a failed follow-up write can release it.
	UsageRecordID string `json:"usageRecordId,omitempty"`
}

// EntitlementLedger owns the check-then-append sequence for package usage.
// The sequence is serialized per (client, package, service) key: without the
// per-key lock, two concurrent attempts could both read usedCount below the
// quota and both append, breaking usedCount <= quantityPerCycle.
type EntitlementLedger struct {
	Repo entitlementRepo.EntitlementRepository
	Now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEntitlementLedger(repo entitlementRepo.EntitlementRepository) *EntitlementLedger {
	return &EntitlementLedger{
		Repo:  repo,
		Now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// TryConsume consumes one unit of the client's entitlement for a service.
// bookingID tags the appended usage record and may be empty when consumption
// is checked outside booking creation.
func (l *EntitlementLedger) TryConsume(ctx context.Context, clientID, serviceID, bookingID string) (EntitlementResult, error) {
	now := l.Now()

	active, err := l.Repo.ActivePackage(ctx, clientID, now)
	if err != nil {
		return EntitlementResult{}, fmt.Errorf("active package lookup failed: %w", err)
	}
	if active == nil {
		return EntitlementResult{Outcome: EntitlementNotEntitled}, nil
	}

	pkg, err := l.Repo.GetPackage(ctx, active.PackageID)
	if err != nil {
		return EntitlementResult{}, fmt.Errorf("package lookup failed: %w", err)
	}
	ent, ok := pkg.Entitlement(serviceID)
	if !ok {
		return EntitlementResult{Outcome: EntitlementNotEntitled, PackageID: pkg.ID}, nil
	}

	key := clientID + "|" + active.PackageID + "|" + serviceID
	lock := l.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	windowStart := now.AddDate(0, 0, -ent.CycleDays)
	used, err := l.Repo.CountUsageSince(ctx, clientID, active.PackageID, serviceID, windowStart)
	if err != nil {
		return EntitlementResult{}, fmt.Errorf("usage count failed: %w", err)
	}
	if used >= ent.QuantityPerCycle {
		return EntitlementResult{Outcome: EntitlementExhausted, PackageID: pkg.ID}, nil
	}

	record := &models.UsageRecord{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		PackageID: active.PackageID,
		ServiceID: serviceID,
		BookingID: bookingID,
		Timestamp: now,
	}
	if err := l.Repo.AppendUsage(ctx, record); err != nil {
		return EntitlementResult{}, fmt.Errorf("usage append failed: %w", err)
	}

	return EntitlementResult{
		Outcome:       EntitlementConsumed,
		Remaining:     ent.QuantityPerCycle - used - 1,
		PackageID:     pkg.ID,
		UsageRecordID: record.ID,
	}, nil
}

// Release compensates a consumption whose booking never persisted, restoring
// the quota the orphaned record would otherwise burn.
func (l *EntitlementLedger) Release(ctx context.Context, recordID string) error {
	if recordID == "" {
		return nil
	}
	return l.Repo.RemoveUsage(ctx, recordID)
}

func (l *EntitlementLedger) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
