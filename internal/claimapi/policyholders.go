package claimapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/linnemanlabs/claimwatch/internal/insurance"
)

type registerRequest struct {
	Name       *string  `json:"name"`
	Age        *int     `json:"age"`
	PolicyType *string  `json:"policy_type"`
	SumInsured *float64 `json:"sum_insured"`
}

func (req *registerRequest) missing() string {
	switch {
	case req.Name == nil:
		return "name"
	case req.Age == nil:
		return "age"
	case req.PolicyType == nil:
		return "policy_type"
	case req.SumInsured == nil:
		return "sum_insured"
	}
	return ""
}

type frequencyResponse struct {
	PolicyholderID string `json:"policyholder_id"`
	ClaimFrequency int    `json:"claim_frequency"`
}

func (a *API) handleRegisterPolicyholder(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.badRequest(w, r, "invalid payload")
		return
	}
	if f := req.missing(); f != "" {
		a.badRequest(w, r, "missing field: "+f)
		return
	}

	ph, err := a.svc.RegisterPolicyholder(r.Context(), *req.Name, *req.Age, insurance.PolicyType(*req.PolicyType), *req.SumInsured)
	if err != nil {
		a.writeError(w, r, err)
		return
	}

	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("claimwatch.policyholder.id", ph.ID))
	a.writeJSON(w, r, http.StatusCreated, ph)
}

func (a *API) handleGetPolicyholder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("claimwatch.policyholder.id", id))

	ph, err := a.svc.GetPolicyholder(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, ph)
}

func (a *API) handleClaimFrequency(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("claimwatch.policyholder.id", id))

	n, err := a.svc.ClaimFrequency(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, frequencyResponse{PolicyholderID: id, ClaimFrequency: n})
}

func (a *API) handleAssessRisk(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trace.SpanFromContext(r.Context()).SetAttributes(attribute.String("claimwatch.policyholder.id", id))

	ra, err := a.svc.AssessRisk(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, r, http.StatusOK, ra)
}
