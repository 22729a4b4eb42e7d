package insurance

import (
	"context"
	"fmt"
)

// ReportGenerator builds aggregate views over the ledger. Claims whose
// policyholder cannot be resolved are skipped wherever the policyholder is
// needed.
type ReportGenerator struct {
	registry *Registry
	ledger   *Ledger
}

// NewReportGenerator creates a ReportGenerator over registry and ledger.
func NewReportGenerator(registry *Registry, ledger *Ledger) *ReportGenerator {
	return &ReportGenerator{registry: registry, ledger: ledger}
}

type typeTotals struct {
	sum   float64
	count int
}

// Generate computes the report bundle in one pass over the ledger.
func (g *ReportGenerator) Generate(ctx context.Context) (*Report, error) {
	phs, claims, err := g.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byID := index(phs)

	monthly := NewOrderedMap[int]()
	totals := NewOrderedMap[typeTotals]()
	pending := make([]Policyholder, 0)
	seenPending := make(map[string]struct{})
	var highest *Claim

	for i := range claims {
		c := &claims[i]

		monthly.Update(c.Month(), func(n int) int { return n + 1 })

		// strict comparison keeps the earliest claim on ties
		if highest == nil || c.Amount > highest.Amount {
			highest = c
		}

		ph, ok := byID[c.PolicyholderID]
		if !ok {
			continue
		}
		totals.Update(string(ph.PolicyType), func(t typeTotals) typeTotals {
			return typeTotals{sum: addCapped(t.sum, c.Amount), count: t.count + 1}
		})
		if c.Status == StatusPending {
			if _, dup := seenPending[ph.ID]; !dup {
				seenPending[ph.ID] = struct{}{}
				pending = append(pending, *ph)
			}
		}
	}

	avg := NewOrderedMap[float64]()
	for _, k := range totals.Keys() {
		t, _ := totals.Get(k)
		if t.count > 0 {
			avg.Set(k, t.sum/float64(t.count))
		}
	}

	r := &Report{
		MonthlyClaims:        monthly,
		AvgClaimByType:       avg,
		PendingPolicyholders: pending,
	}
	if highest != nil {
		cp := *highest
		r.HighestClaim = &cp
	}
	return r, nil
}

// ClaimsByPolicyType groups claims by their policyholder's current policy
// type, keeping ledger order inside each group.
func (g *ReportGenerator) ClaimsByPolicyType(ctx context.Context) (*OrderedMap[[]Claim], error) {
	phs, claims, err := g.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	byID := index(phs)

	out := NewOrderedMap[[]Claim]()
	for _, c := range claims {
		ph, ok := byID[c.PolicyholderID]
		if !ok {
			continue
		}
		out.Update(string(ph.PolicyType), func(cs []Claim) []Claim { return append(cs, c) })
	}
	return out, nil
}

func (g *ReportGenerator) snapshot(ctx context.Context) ([]Policyholder, []Claim, error) {
	phs, err := g.registry.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list policyholders: %w", err)
	}
	claims, err := g.ledger.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list claims: %w", err)
	}
	return phs, claims, nil
}
