package claimapi

import (
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/claimwatch/internal/insurance"
)

type claimRequest struct {
	PolicyholderID *string  `json:"policyholder_id"`
	Amount         *float64 `json:"amount"`
	Reason         *string  `json:"reason"`
	Status         *string  `json:"status"` // optional, Pending when omitted
}

func (req *claimRequest) missing() string {
	switch {
	case req.PolicyholderID == nil:
		return "policyholder_id"
	case req.Amount == nil:
		return "amount"
	case req.Reason == nil:
		return "reason"
	}
	return ""
}

func (a *API) handleAddClaim(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, r, "invalid payload")
		return
	}
	if f := req.missing(); f != "" {
		a.badRequest(w, r, "missing field: "+f)
		return
	}

	status := insurance.StatusPending
	if req.Status != nil {
		status = insurance.ClaimStatus(*req.Status)
	}

	c, err := a.svc.AddClaim(r.Context(), *req.PolicyholderID, *req.Amount, *req.Reason, status)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(
		attribute.String("claimwatch.claim.id", c.ID),
		attribute.String("claimwatch.policyholder.id", c.PolicyholderID),
	)
	a.writeJSON(w, r, http.StatusCreated, c)
}
