package cfg

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"net/url"

	"github.com/linnemanlabs/claimwatch/internal/insurance"
)

// Config holds the service-specific settings that sit alongside the common
// go-core log, metrics, tracing and profiling configuration.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	SlackWebhookURL       string
	RiskWindowDays        int
	RiskMaxRecentClaims   int
	RiskMaxClaimRatio     float64
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	def := insurance.DefaultRiskPolicy()

	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for high-risk notifications (empty = disabled)")
	fs.IntVar(&c.RiskWindowDays, "risk-window-days", def.WindowDays, "days of claim history counted towards the recent-claims threshold (1..3650)")
	fs.IntVar(&c.RiskMaxRecentClaims, "risk-max-recent-claims", def.MaxRecentClaims, "recent claims above which a policyholder is high risk (>= 0)")
	fs.Float64Var(&c.RiskMaxClaimRatio, "risk-max-claim-ratio", def.MaxClaimRatio, "claimed/sum-insured ratio above which a policyholder is high risk (> 0)")
}

// RiskPolicy returns the high-risk thresholds described by the config.
func (c *Config) RiskPolicy() insurance.RiskPolicy {
	return insurance.RiskPolicy{
		WindowDays:      c.RiskWindowDays,
		MaxRecentClaims: c.RiskMaxRecentClaims,
		MaxClaimRatio:   c.RiskMaxClaimRatio,
	}
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	// Webhook is optional, but must be an absolute http(s) URL when set
	if c.SlackWebhookURL != "" {
		u, err := url.Parse(c.SlackWebhookURL)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			errs = append(errs, errors.New("SLACK_WEBHOOK_URL must be an absolute http(s) URL"))
		}
	}

	// Risk thresholds
	if c.RiskWindowDays <= 0 || c.RiskWindowDays > 3650 {
		errs = append(errs, fmt.Errorf("invalid RISK_WINDOW_DAYS %d (must be 1..3650)", c.RiskWindowDays))
	}
	if c.RiskMaxRecentClaims < 0 {
		errs = append(errs, fmt.Errorf("invalid RISK_MAX_RECENT_CLAIMS %d (must be >= 0)", c.RiskMaxRecentClaims))
	}
	if !(c.RiskMaxClaimRatio > 0) || math.IsInf(c.RiskMaxClaimRatio, 1) {
		errs = append(errs, fmt.Errorf("invalid RISK_MAX_CLAIM_RATIO %v (must be a finite value > 0)", c.RiskMaxClaimRatio))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
