package insurance

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/oklog/ulid/v2"
)

// Ledger validates and appends claims. Entries are never modified or removed.
type Ledger struct {
	store    ClaimStore
	resolver PolicyholderResolver
	now      func() time.Time
}

// NewLedger creates a Ledger that appends to store and checks claimants
// through resolver.
func NewLedger(store ClaimStore, resolver PolicyholderResolver) *Ledger {
	return &Ledger{
		store:    store,
		resolver: resolver,
		now:      time.Now,
	}
}

// Add files a claim against policyholderID. The claim is dated with the
// current calendar day.
func (l *Ledger) Add(ctx context.Context, policyholderID string, amount float64, reason string, status ClaimStatus) (*Claim, error) {
	_, ok, err := l.resolver.Lookup(ctx, policyholderID)
	if err != nil {
		return nil, fmt.Errorf("lookup policyholder: %w", err)
	}
	if !ok {
		return nil, policyholderNotFound(policyholderID)
	}
	if !(amount > 0) || math.IsInf(amount, 1) {
		return nil, invalid("amount", "claim amount must be a positive number")
	}
	if !status.Valid() {
		return nil, invalid("status", fmt.Sprintf("%q is not one of Pending, Approved, Rejected", status))
	}

	c := &Claim{
		ID:             ulid.Make().String(),
		PolicyholderID: policyholderID,
		Amount:         amount,
		Reason:         reason,
		Status:         status,
		Date:           l.now().Format(dateLayout),
	}
	if err := l.store.AppendClaim(ctx, c); err != nil {
		return nil, fmt.Errorf("append claim: %w", err)
	}
	cp := *c
	return &cp, nil
}

// ListFor returns the claims filed by one policyholder in insertion order.
func (l *Ledger) ListFor(ctx context.Context, policyholderID string) ([]Claim, error) {
	return l.store.ListClaimsFor(ctx, policyholderID)
}

// List returns every claim in insertion order.
func (l *Ledger) List(ctx context.Context) ([]Claim, error) {
	return l.store.ListClaims(ctx)
}
