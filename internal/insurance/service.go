package insurance

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/go-core/log"
)

const tracerName = "github.com/linnemanlabs/claimwatch/internal/insurance"

func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Service is the business boundary for insurance operations. One RWMutex
// guards registry and ledger together: writes are serialized against each
// other and against reads, so a reader never sees a half-applied write.
type Service struct {
	mu       sync.RWMutex
	registry *Registry
	ledger   *Ledger
	risk     *RiskAnalyzer
	reports  *ReportGenerator

	logger   log.Logger
	metrics  *Metrics
	notifier Notifier
	inflight sync.WaitGroup
}

// NewService creates a new insurance service. metrics and notifier may be nil.
func NewService(store Store, policy RiskPolicy, logger log.Logger, metrics *Metrics, notifier Notifier) *Service {
	if logger == nil {
		logger = log.Nop()
	}
	registry := NewRegistry(store)
	ledger := NewLedger(store, registry)
	return &Service{
		registry: registry,
		ledger:   ledger,
		risk:     NewRiskAnalyzer(registry, ledger, policy),
		reports:  NewReportGenerator(registry, ledger),
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
	}
}

// setClock replaces the time source of the ledger and the risk analyzer.
func (s *Service) setClock(now func() time.Time) {
	s.ledger.now = now
	s.risk.now = now
}

// RegisterPolicyholder validates and stores a new policyholder.
func (s *Service) RegisterPolicyholder(ctx context.Context, name string, age int, policyType PolicyType, sumInsured float64) (ph *Policyholder, err error) {
	ctx, span := tracer().Start(ctx, "insurance.RegisterPolicyholder", trace.WithAttributes(
		attribute.String("claimwatch.policy_type", string(policyType)),
	))
	defer s.finish(span, "register", time.Now(), &err)

	s.mu.Lock()
	ph, err = s.registry.Register(ctx, name, age, policyType, sumInsured)
	s.mu.Unlock()
	if err != nil {
		s.metrics.rejected("register", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("claimwatch.policyholder.id", ph.ID))
	s.metrics.registered(ph)
	s.logger.Info(ctx, "policyholder registered",
		"policyholder_id", ph.ID,
		"policy_type", ph.PolicyType,
		"sum_insured", ph.SumInsured,
	)
	return ph, nil
}

// GetPolicyholder returns the policyholder with the given ID.
func (s *Service) GetPolicyholder(ctx context.Context, id string) (ph *Policyholder, err error) {
	ctx, span := tracer().Start(ctx, "insurance.GetPolicyholder", trace.WithAttributes(
		attribute.String("claimwatch.policyholder.id", id),
	))
	defer s.finish(span, "get_policyholder", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	ph, ok, err := s.registry.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, policyholderNotFound(id)
	}
	return ph, nil
}

// AddClaim files a claim. When the claim pushes its policyholder into high
// risk and a notifier is configured, an alert is sent asynchronously.
func (s *Service) AddClaim(ctx context.Context, policyholderID string, amount float64, reason string, status ClaimStatus) (c *Claim, err error) {
	ctx, span := tracer().Start(ctx, "insurance.AddClaim", trace.WithAttributes(
		attribute.String("claimwatch.policyholder.id", policyholderID),
	))
	defer s.finish(span, "add_claim", time.Now(), &err)

	var before, after *RiskAssessment
	var beforeErr, afterErr error
	s.mu.Lock()
	if s.notifier != nil {
		before, beforeErr = s.risk.Assess(ctx, policyholderID)
	}
	c, err = s.ledger.Add(ctx, policyholderID, amount, reason, status)
	if err == nil && before != nil {
		after, afterErr = s.risk.Assess(ctx, policyholderID)
	}
	s.mu.Unlock()

	// an unknown policyholder is reported by Ledger.Add, not here
	var nf *NotFoundError
	if beforeErr != nil && !errors.As(beforeErr, &nf) {
		s.logger.Warn(ctx, "risk assessment before claim failed, skipping alert",
			"policyholder_id", policyholderID, "error", beforeErr)
	}
	if afterErr != nil {
		s.logger.Warn(ctx, "risk assessment after claim failed, skipping alert",
			"policyholder_id", policyholderID, "error", afterErr)
	}
	if err != nil {
		s.metrics.rejected("add_claim", err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("claimwatch.claim.id", c.ID),
		attribute.String("claimwatch.claim.status", string(c.Status)),
	)
	s.metrics.claimed(c)
	s.logger.Info(ctx, "claim added",
		"claim_id", c.ID,
		"policyholder_id", c.PolicyholderID,
		"amount", c.Amount,
		"status", c.Status,
	)

	if before != nil && after != nil && !before.HighRisk && after.HighRisk {
		alert := &RiskAlert{Assessment: *after, Trigger: *c}
		s.inflight.Add(1)
		go s.notify(context.WithoutCancel(ctx), alert)
	}
	return c, nil
}

// ClaimFrequency counts all claims filed by the policyholder.
func (s *Service) ClaimFrequency(ctx context.Context, policyholderID string) (n int, err error) {
	ctx, span := tracer().Start(ctx, "insurance.ClaimFrequency", trace.WithAttributes(
		attribute.String("claimwatch.policyholder.id", policyholderID),
	))
	defer s.finish(span, "claim_frequency", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err = s.risk.ClaimFrequency(ctx, policyholderID)
	if err == nil {
		span.SetAttributes(attribute.Int("claimwatch.claim_frequency", n))
	}
	return n, err
}

// AssessRisk returns the risk metrics of one policyholder.
func (s *Service) AssessRisk(ctx context.Context, policyholderID string) (ra *RiskAssessment, err error) {
	ctx, span := tracer().Start(ctx, "insurance.AssessRisk", trace.WithAttributes(
		attribute.String("claimwatch.policyholder.id", policyholderID),
	))
	defer s.finish(span, "assess_risk", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.risk.Assess(ctx, policyholderID)
}

// HighRisk returns the high-risk roster in registration order.
func (s *Service) HighRisk(ctx context.Context) (out []HighRisk, err error) {
	ctx, span := tracer().Start(ctx, "insurance.HighRisk")
	defer s.finish(span, "high_risk", time.Now(), &err)

	s.mu.RLock()
	out, err = s.risk.IdentifyHighRisk(ctx)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("claimwatch.high_risk.count", len(out)))
	s.metrics.highRisk(len(out))
	return out, nil
}

// Report returns the aggregate report bundle.
func (s *Service) Report(ctx context.Context) (r *Report, err error) {
	ctx, span := tracer().Start(ctx, "insurance.Report")
	defer s.finish(span, "report", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports.Generate(ctx)
}

// ClaimsByPolicyType returns claims grouped by policy type.
func (s *Service) ClaimsByPolicyType(ctx context.Context) (out *OrderedMap[[]Claim], err error) {
	ctx, span := tracer().Start(ctx, "insurance.ClaimsByPolicyType")
	defer s.finish(span, "claims_by_policy_type", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reports.ClaimsByPolicyType(ctx)
}

// Wait blocks until in-flight risk alerts are delivered or ctx is done.
func (s *Service) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) notify(ctx context.Context, alert *RiskAlert) {
	defer s.inflight.Done()

	ph := alert.Assessment.Policyholder
	L := s.logger.With("policyholder_id", ph.ID, "claim_id", alert.Trigger.ID)

	err := s.notifier.Send(ctx, alert)
	s.metrics.alert(err)
	if err != nil {
		L.Error(ctx, err, "risk alert delivery failed")
		return
	}
	L.Info(ctx, "risk alert sent",
		"claim_count", alert.Assessment.ClaimCount,
		"claim_ratio", alert.Assessment.ClaimRatio,
	)
}

func (s *Service) finish(span trace.Span, op string, start time.Time, errp *error) {
	err := *errp
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.metrics.observeOp(op, time.Since(start).Seconds(), err)
	span.End()
}
