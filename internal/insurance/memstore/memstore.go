// Package memstore provides an in-memory implementation of insurance.Store.
// Nothing survives a restart.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/linnemanlabs/claimwatch/internal/insurance"
)

// Store holds policyholders and claims in memory.
type Store struct {
	mu            sync.RWMutex
	policyholders map[string]*insurance.Policyholder // policyholder ID -> record
	order         []string                           // policyholder IDs in registration order
	claims        []insurance.Claim                  // append-only, insertion order
	claimIDs      map[string]struct{}
	byClaimant    map[string][]int // policyholder ID -> indexes into claims
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		policyholders: make(map[string]*insurance.Policyholder),
		claimIDs:      make(map[string]struct{}),
		byClaimant:    make(map[string][]int),
	}
}

// PutPolicyholder stores a copy of the policyholder. Records are immutable,
// so an ID that is already present is rejected.
func (s *Store) PutPolicyholder(_ context.Context, ph *insurance.Policyholder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.policyholders[ph.ID]; ok {
		return fmt.Errorf("policyholder %q already stored", ph.ID)
	}
	cp := *ph
	s.policyholders[ph.ID] = &cp
	s.order = append(s.order, ph.ID)
	return nil
}

// GetPolicyholder retrieves a policyholder by ID. Returns a copy.
func (s *Store) GetPolicyholder(_ context.Context, id string) (*insurance.Policyholder, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ph, ok := s.policyholders[id]
	if !ok {
		return nil, false, nil
	}
	cp := *ph
	return &cp, true, nil
}

// ListPolicyholders returns copies of all policyholders in registration order.
func (s *Store) ListPolicyholders(_ context.Context) ([]insurance.Policyholder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]insurance.Policyholder, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.policyholders[id])
	}
	return out, nil
}

// AppendClaim appends a copy of the claim to the ledger.
func (s *Store) AppendClaim(_ context.Context, c *insurance.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claimIDs[c.ID]; ok {
		return fmt.Errorf("claim %q already stored", c.ID)
	}
	s.byClaimant[c.PolicyholderID] = append(s.byClaimant[c.PolicyholderID], len(s.claims))
	s.claims = append(s.claims, *c)
	s.claimIDs[c.ID] = struct{}{}
	return nil
}

// ListClaims returns copies of all claims in insertion order.
func (s *Store) ListClaims(_ context.Context) ([]insurance.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]insurance.Claim, len(s.claims))
	copy(out, s.claims)
	return out, nil
}

// ListClaimsFor returns copies of the claims filed by one policyholder, in
// insertion order. Cost is proportional to that policyholder's claims only.
func (s *Store) ListClaimsFor(_ context.Context, policyholderID string) ([]insurance.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.byClaimant[policyholderID]
	out := make([]insurance.Claim, 0, len(idx))
	for _, i := range idx {
		out = append(out, s.claims[i])
	}
	return out, nil
}
