package insurance

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/oklog/ulid/v2"
)

// MinAge is the youngest age a policyholder may be registered at.
const MinAge = 18

// Registry validates and stores policyholders.
type Registry struct {
	store PolicyholderStore
}

// NewRegistry creates a Registry backed by store.
func NewRegistry(store PolicyholderStore) *Registry {
	return &Registry{store: store}
}

// Register validates the input, assigns a fresh ID and stores the
// policyholder. Nothing is stored when validation fails.
func (r *Registry) Register(ctx context.Context, name string, age int, policyType PolicyType, sumInsured float64) (*Policyholder, error) {
	if age < MinAge {
		return nil, invalid("age", fmt.Sprintf("policyholder must be at least %d years old", MinAge))
	}
	if !policyType.Valid() {
		return nil, invalid("policy_type", fmt.Sprintf("%q is not one of Health, Vehicle, Life", policyType))
	}
	if !(sumInsured > 0) || math.IsInf(sumInsured, 1) {
		return nil, invalid("sum_insured", "sum insured must be a positive number")
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "name must not be empty")
	}

	ph := &Policyholder{
		ID:         ulid.Make().String(),
		Name:       name,
		Age:        age,
		PolicyType: policyType,
		SumInsured: sumInsured,
	}
	if err := r.store.PutPolicyholder(ctx, ph); err != nil {
		return nil, fmt.Errorf("store policyholder: %w", err)
	}
	cp := *ph
	return &cp, nil
}

// Lookup returns the policyholder with the given ID.
func (r *Registry) Lookup(ctx context.Context, id string) (*Policyholder, bool, error) {
	return r.store.GetPolicyholder(ctx, id)
}

// List returns all policyholders in registration order.
func (r *Registry) List(ctx context.Context) ([]Policyholder, error) {
	return r.store.ListPolicyholders(ctx)
}

// index builds an ID lookup over a policyholder snapshot.
func index(phs []Policyholder) map[string]*Policyholder {
	out := make(map[string]*Policyholder, len(phs))
	for i := range phs {
		out[phs[i].ID] = &phs[i]
	}
	return out
}
