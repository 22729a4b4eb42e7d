package insurance

import "context"

// PolicyholderStore holds policyholder records.
type PolicyholderStore interface {
	PutPolicyholder(ctx context.Context, ph *Policyholder) error
	GetPolicyholder(ctx context.Context, id string) (*Policyholder, bool, error)
	// ListPolicyholders returns copies in registration order.
	ListPolicyholders(ctx context.Context) ([]Policyholder, error)
}

// ClaimStore is the append-only claim sequence.
type ClaimStore interface {
	AppendClaim(ctx context.Context, c *Claim) error
	// ListClaims returns copies in insertion order.
	ListClaims(ctx context.Context) ([]Claim, error)
	// ListClaimsFor returns copies of one policyholder's claims in insertion order.
	ListClaimsFor(ctx context.Context, policyholderID string) ([]Claim, error)
}

// Store is the persistence interface for the whole domain.
type Store interface {
	PolicyholderStore
	ClaimStore
}

// PolicyholderResolver looks up policyholders by ID. Registry satisfies it;
// tests can pass a stub.
type PolicyholderResolver interface {
	Lookup(ctx context.Context, id string) (*Policyholder, bool, error)
}

// Notifier receives risk alerts.
type Notifier interface {
	Send(ctx context.Context, alert *RiskAlert) error
}
