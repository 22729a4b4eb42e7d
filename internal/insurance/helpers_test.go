package insurance

import (
	"context"
	"sync"
	"time"
)

// fakeStore implements Store for testing.
type fakeStore struct {
	mu      sync.Mutex
	phs     map[string]*Policyholder
	order   []string
	claims  []Claim
	putErr  error
	listErr error

	fullScans int // ListClaims calls
}

func newFakeStore() *fakeStore {
	return &fakeStore{phs: make(map[string]*Policyholder)}
}

func (f *fakeStore) PutPolicyholder(_ context.Context, ph *Policyholder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	cp := *ph
	f.phs[ph.ID] = &cp
	f.order = append(f.order, ph.ID)
	return nil
}

func (f *fakeStore) GetPolicyholder(_ context.Context, id string) (*Policyholder, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ph, ok := f.phs[id]
	if !ok {
		return nil, false, nil
	}
	cp := *ph
	return &cp, true, nil
}

func (f *fakeStore) ListPolicyholders(_ context.Context) ([]Policyholder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Policyholder, 0, len(f.order))
	for _, id := range f.order {
		if ph, ok := f.phs[id]; ok {
			out = append(out, *ph)
		}
	}
	return out, nil
}

func (f *fakeStore) AppendClaim(_ context.Context, c *Claim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.claims = append(f.claims, *c)
	return nil
}

func (f *fakeStore) ListClaims(_ context.Context) ([]Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullScans++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Claim, len(f.claims))
	copy(out, f.claims)
	return out, nil
}

func (f *fakeStore) ListClaimsFor(_ context.Context, policyholderID string) ([]Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Claim, 0)
	for _, c := range f.claims {
		if c.PolicyholderID == policyholderID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) scans() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fullScans
}

func (f *fakeStore) failLists(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// forget drops a policyholder behind the registry's back, leaving its claims
// orphaned. The domain has no delete; this simulates one.
func (f *fakeStore) forget(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.phs, id)
}

// stubResolver resolves a fixed set of IDs.
type stubResolver struct {
	known map[string]bool
	err   error
}

func (r stubResolver) Lookup(_ context.Context, id string) (*Policyholder, bool, error) {
	if r.err != nil {
		return nil, false, r.err
	}
	if !r.known[id] {
		return nil, false, nil
	}
	return &Policyholder{ID: id}, true, nil
}

// testNow is the fixed "today" used across tests.
var testNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fixture wires the four components over one fake store with a settable clock.
type fixture struct {
	store    *fakeStore
	registry *Registry
	ledger   *Ledger
	risk     *RiskAnalyzer
	reports  *ReportGenerator
}

func newFixture() *fixture {
	store := newFakeStore()
	registry := NewRegistry(store)
	ledger := NewLedger(store, registry)
	ledger.now = fixedClock(testNow)
	risk := NewRiskAnalyzer(registry, ledger, DefaultRiskPolicy())
	risk.now = fixedClock(testNow)
	return &fixture{
		store:    store,
		registry: registry,
		ledger:   ledger,
		risk:     risk,
		reports:  NewReportGenerator(registry, ledger),
	}
}

// at files subsequent claims on the given day.
func (f *fixture) at(t time.Time) {
	f.ledger.now = fixedClock(t)
}

func (f *fixture) mustRegister(name string, pt PolicyType, sumInsured float64) *Policyholder {
	ph, err := f.registry.Register(context.Background(), name, 30, pt, sumInsured)
	if err != nil {
		panic(err)
	}
	return ph
}

func (f *fixture) mustClaim(phID string, amount float64, status ClaimStatus) *Claim {
	c, err := f.ledger.Add(context.Background(), phID, amount, "test", status)
	if err != nil {
		panic(err)
	}
	return c
}
