package claimapi

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (a *API) handleHighRisk(w http.ResponseWriter, r *http.Request) {
	hr, err := a.svc.HighRisk(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.Int("claimwatch.high_risk.count", len(hr)))
	a.writeJSON(w, r, http.StatusOK, hr)
}

func (a *API) handleReports(w http.ResponseWriter, r *http.Request) {
	rep, err := a.svc.Report(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, rep)
}

func (a *API) handleClaimsByPolicyType(w http.ResponseWriter, r *http.Request) {
	byType, err := a.svc.ClaimsByPolicyType(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, byType)
}
