package insurance

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RiskPolicy holds the thresholds for the high-risk rule. A policyholder is
// high risk when its claim count inside the trailing window exceeds
// MaxRecentClaims, or its lifetime claimed total divided by sum insured
// exceeds MaxClaimRatio. Both comparisons are strict.
type RiskPolicy struct {
	WindowDays      int
	MaxRecentClaims int
	MaxClaimRatio   float64
}

// DefaultRiskPolicy returns a one-year window, more than 3 claims, or more
// than 80% of the sum insured claimed.
func DefaultRiskPolicy() RiskPolicy {
	return RiskPolicy{
		WindowDays:      365,
		MaxRecentClaims: 3,
		MaxClaimRatio:   0.8,
	}
}

// Cutoff returns the earliest claim date, as YYYY-MM-DD, that still counts
// as recent at now.
func (p RiskPolicy) Cutoff(now time.Time) string {
	return now.AddDate(0, 0, -p.WindowDays).Format(dateLayout)
}

func (p RiskPolicy) flags(recent int, ratio float64) bool {
	return recent > p.MaxRecentClaims || ratio > p.MaxClaimRatio
}

type claimStats struct {
	total  int
	recent int
	amount float64
}

// tally walks claims once and accumulates per-policyholder stats. Claim
// dates compare as strings.
func tally(claims []Claim, cutoff string) map[string]*claimStats {
	out := make(map[string]*claimStats)
	for i := range claims {
		c := &claims[i]
		st, ok := out[c.PolicyholderID]
		if !ok {
			st = &claimStats{}
			out[c.PolicyholderID] = st
		}
		st.total++
		st.amount = addCapped(st.amount, c.Amount)
		if c.Date >= cutoff {
			st.recent++
		}
	}
	return out
}

// claimRatio is amount/sumInsured, capped at math.MaxFloat64 so a tiny sum
// insured cannot produce +Inf.
func claimRatio(amount, sumInsured float64) float64 {
	if sumInsured > 0 {
		return capFinite(amount / sumInsured)
	}
	return 0
}

// addCapped adds non-negative amounts, saturating at math.MaxFloat64.
func addCapped(a, b float64) float64 {
	return capFinite(a + b)
}

func capFinite(x float64) float64 {
	if math.IsInf(x, 1) {
		return math.MaxFloat64
	}
	return x
}

// RiskAnalyzer computes claim frequency and high-risk flags. It never
// mutates the registry or the ledger.
type RiskAnalyzer struct {
	registry *Registry
	ledger   *Ledger
	policy   RiskPolicy
	now      func() time.Time
}

// NewRiskAnalyzer creates a RiskAnalyzer over registry and ledger.
func NewRiskAnalyzer(registry *Registry, ledger *Ledger, policy RiskPolicy) *RiskAnalyzer {
	return &RiskAnalyzer{
		registry: registry,
		ledger:   ledger,
		policy:   policy,
		now:      time.Now,
	}
}

// Policy returns the thresholds in use.
func (a *RiskAnalyzer) Policy() RiskPolicy {
	return a.policy
}

// ClaimFrequency counts every claim filed by the policyholder, regardless of
// status or date.
func (a *RiskAnalyzer) ClaimFrequency(ctx context.Context, policyholderID string) (int, error) {
	if _, ok, err := a.registry.Lookup(ctx, policyholderID); err != nil {
		return 0, fmt.Errorf("lookup policyholder: %w", err)
	} else if !ok {
		return 0, policyholderNotFound(policyholderID)
	}

	claims, err := a.ledger.ListFor(ctx, policyholderID)
	if err != nil {
		return 0, fmt.Errorf("list claims: %w", err)
	}
	return len(claims), nil
}

// IdentifyHighRisk returns every flagged policyholder in registration order.
// The result is empty, never nil.
func (a *RiskAnalyzer) IdentifyHighRisk(ctx context.Context) ([]HighRisk, error) {
	phs, err := a.registry.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list policyholders: %w", err)
	}
	claims, err := a.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	stats := tally(claims, a.policy.Cutoff(a.now()))
	out := make([]HighRisk, 0)
	for _, ph := range phs {
		st, ok := stats[ph.ID]
		if !ok {
			st = &claimStats{}
		}
		ratio := claimRatio(st.amount, ph.SumInsured)
		if a.policy.flags(st.recent, ratio) {
			out = append(out, HighRisk{
				Policyholder: ph,
				ClaimCount:   st.recent,
				ClaimRatio:   ratio,
			})
		}
	}
	return out, nil
}

// Assess returns the risk metrics of one policyholder. Only that
// policyholder's claims are read.
func (a *RiskAnalyzer) Assess(ctx context.Context, policyholderID string) (*RiskAssessment, error) {
	ph, ok, err := a.registry.Lookup(ctx, policyholderID)
	if err != nil {
		return nil, fmt.Errorf("lookup policyholder: %w", err)
	}
	if !ok {
		return nil, policyholderNotFound(policyholderID)
	}
	claims, err := a.ledger.ListFor(ctx, policyholderID)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}

	ra := &RiskAssessment{Policyholder: *ph}
	if st, ok := tally(claims, a.policy.Cutoff(a.now()))[ph.ID]; ok {
		ra.ClaimCount = st.recent
		ra.TotalClaimed = st.amount
	}
	ra.ClaimRatio = claimRatio(ra.TotalClaimed, ph.SumInsured)
	ra.HighRisk = a.policy.flags(ra.ClaimCount, ra.ClaimRatio)
	return ra, nil
}
