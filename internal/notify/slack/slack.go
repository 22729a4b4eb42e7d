// Package slack sends high-risk policyholder alerts to Slack via incoming webhooks.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/linnemanlabs/claimwatch/internal/insurance"
)

const (
	maxReasonLen = 500
	httpTimeout  = 10 * time.Second
)

// Notifier posts risk alerts to a Slack webhook.
type Notifier struct {
	webhookURL string
	client     *http.Client
}

var _ insurance.Notifier = (*Notifier)(nil)

// New creates a new Slack notifier. If webhookURL is empty, Send is a no-op.
func New(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: httpTimeout},
	}
}

// Send posts a risk alert to the configured Slack webhook.
// If no webhook URL is configured, it returns nil immediately.
func (n *Notifier) Send(ctx context.Context, alert *insurance.RiskAlert) error {
	if n.webhookURL == "" || alert == nil {
		return nil
	}

	body, err := json.Marshal(buildMessage(alert))
	if err != nil {
		return fmt.Errorf("slack: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req) //nolint:gosec // G704: webhookURL is from trusted config, not user input
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("slack: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func buildMessage(a *insurance.RiskAlert) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			headerBlock(a),
			{"type": "divider"},
			fieldsBlock(a),
			{"type": "divider"},
			claimBlock(a),
			contextBlock(a),
		},
	}
}

func headerBlock(a *insurance.RiskAlert) map[string]any {
	text := fmt.Sprintf("%s High Risk: %s", ratioEmoji(a.Assessment.ClaimRatio), a.Assessment.Policyholder.Name)

	return map[string]any{
		"type": "header",
		"text": map[string]any{
			"type": "plain_text",
			"text": text,
		},
	}
}

func fieldsBlock(a *insurance.RiskAlert) map[string]any {
	ph := a.Assessment.Policyholder
	fields := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Policy type:* %s", ph.PolicyType),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Sum insured:* %.2f", ph.SumInsured),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Recent claims:* %d", a.Assessment.ClaimCount),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Total claimed:* %.2f", a.Assessment.TotalClaimed),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Claim ratio:* %.0f%%", a.Assessment.ClaimRatio*100),
		},
	}

	return map[string]any{
		"type":   "section",
		"fields": fields,
	}
}

func claimBlock(a *insurance.RiskAlert) map[string]any {
	reason := truncate(a.Trigger.Reason, maxReasonLen)
	if reason == "" {
		reason = "_No reason given._"
	}

	return map[string]any{
		"type": "section",
		"text": map[string]any{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Triggering claim* (%s, %.2f)\n\n%s", a.Trigger.Status, a.Trigger.Amount, reason),
		},
	}
}

func contextBlock(a *insurance.RiskAlert) map[string]any {
	elements := []map[string]any{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("claimwatch • policyholder %s • claim %s • %s", a.Assessment.Policyholder.ID, a.Trigger.ID, a.Trigger.Date),
		},
	}

	return map[string]any{
		"type":     "context",
		"elements": elements,
	}
}

// ratioEmoji is red once claims exceed the sum insured, yellow otherwise.
func ratioEmoji(ratio float64) string {
	if ratio > 1 {
		return "\U0001f534" // red circle
	}
	return "\U0001f7e1" // yellow circle
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
