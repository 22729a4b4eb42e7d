package insurance

// PolicyType is the kind of cover a policyholder holds.
type PolicyType string

const (
	PolicyHealth  PolicyType = "Health"
	PolicyVehicle PolicyType = "Vehicle"
	PolicyLife    PolicyType = "Life"
)

// Valid reports whether t is one of the supported policy types.
func (t PolicyType) Valid() bool {
	switch t {
	case PolicyHealth, PolicyVehicle, PolicyLife:
		return true
	}
	return false
}

// ClaimStatus tracks where a claim is in its review.
type ClaimStatus string

const (
	// StatusPending means filed, not yet decided
	StatusPending ClaimStatus = "Pending"

	// StatusApproved means accepted for payout
	StatusApproved ClaimStatus = "Approved"

	// StatusRejected means declined
	StatusRejected ClaimStatus = "Rejected"
)

// Valid reports whether s is one of the supported claim statuses.
func (s ClaimStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// dateLayout is the day-granularity ISO 8601 format used for claim dates.
// Zero-padded, so lexicographic order equals chronological order.
const dateLayout = "2006-01-02"

// Policyholder is an insured party. Built only by Registry.Register.
type Policyholder struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Age        int        `json:"age"`
	PolicyType PolicyType `json:"policy_type"`
	SumInsured float64    `json:"sum_insured"`
}

// Claim is a monetary request against a policyholder's policy. Built only by
// Ledger.Add and never modified afterwards.
type Claim struct {
	ID             string      `json:"id"`
	PolicyholderID string      `json:"policyholder_id"`
	Amount         float64     `json:"amount"`
	Reason         string      `json:"reason"`
	Status         ClaimStatus `json:"status"`
	Date           string      `json:"date"`
}

// Month returns the YYYY-MM prefix of the claim date.
func (c *Claim) Month() string {
	if len(c.Date) < 7 {
		return c.Date
	}
	return c.Date[:7]
}

// HighRisk is one entry of the high-risk roster.
type HighRisk struct {
	Policyholder Policyholder `json:"policyholder"`
	ClaimCount   int          `json:"claim_count"`
	ClaimRatio   float64      `json:"claim_ratio"`
}

// RiskAssessment is the risk picture of a single policyholder.
type RiskAssessment struct {
	Policyholder Policyholder `json:"policyholder"`
	ClaimCount   int          `json:"claim_count"`
	TotalClaimed float64      `json:"total_claimed"`
	ClaimRatio   float64      `json:"claim_ratio"`
	HighRisk     bool         `json:"high_risk"`
}

// Report is the bundle produced by ReportGenerator.Generate.
type Report struct {
	MonthlyClaims        *OrderedMap[int]     `json:"monthly_claims"`
	AvgClaimByType       *OrderedMap[float64] `json:"avg_claim_by_type"`
	HighestClaim         *Claim               `json:"highest_claim"`
	PendingPolicyholders []Policyholder       `json:"pending_policyholders"`
}

// RiskAlert is sent to a Notifier when a claim pushes a policyholder into
// high risk.
type RiskAlert struct {
	Assessment RiskAssessment `json:"assessment"`
	Trigger    Claim          `json:"trigger"`
}
