// Package claimapi exposes the insurance service over HTTP.
package claimapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/claimwatch/internal/insurance"
)

// DurabilityHeader tells every caller that state is held in memory only and
// does not survive a restart.
const DurabilityHeader = "X-Data-Durability"

// InsuranceService defines the business operations claimapi needs.
type InsuranceService interface {
	RegisterPolicyholder(ctx context.Context, name string, age int, policyType insurance.PolicyType, sumInsured float64) (*insurance.Policyholder, error)
	GetPolicyholder(ctx context.Context, id string) (*insurance.Policyholder, error)
	AddClaim(ctx context.Context, policyholderID string, amount float64, reason string, status insurance.ClaimStatus) (*insurance.Claim, error)
	ClaimFrequency(ctx context.Context, policyholderID string) (int, error)
	AssessRisk(ctx context.Context, policyholderID string) (*insurance.RiskAssessment, error)
	HighRisk(ctx context.Context) ([]insurance.HighRisk, error)
	Report(ctx context.Context) (*insurance.Report, error)
	ClaimsByPolicyType(ctx context.Context) (*insurance.OrderedMap[[]insurance.Claim], error)
}

// API holds dependencies for HTTP handlers.
type API struct {
	logger log.Logger
	svc    InsuranceService
}

// New creates a new API handler.
func New(logger log.Logger, svc InsuranceService) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if svc == nil {
		panic(xerrors.New("insurance service is required"))
	}
	return &API{
		logger: logger,
		svc:    svc,
	}
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ephemeral)

		r.Post("/policyholders", a.handleRegisterPolicyholder)
		r.Get("/policyholders/{id}", a.handleGetPolicyholder)
		r.Get("/policyholders/{id}/claim_frequency", a.handleClaimFrequency)
		r.Get("/policyholders/{id}/risk", a.handleAssessRisk)

		r.Post("/claims", a.handleAddClaim)
		r.Get("/claims/by_policy_type", a.handleClaimsByPolicyType)

		r.Get("/risk/high_risk", a.handleHighRisk)
		r.Get("/reports", a.handleReports)
	})
}

func ephemeral(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(DurabilityHeader, "none")
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v before committing the status, so an unencodable value
// becomes a 500 instead of a 200 with an empty body.
func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		a.writeError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (a *API) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	a.writeJSON(w, r, http.StatusBadRequest, errorBody{Error: msg})
}

// writeError maps domain errors to HTTP status codes. Anything that is not
// a validation or not-found error is logged and reported as a 500.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *insurance.ValidationError
	if errors.As(err, &ve) {
		a.writeJSON(w, r, http.StatusBadRequest, errorBody{Error: ve.Error()})
		return
	}
	var nf *insurance.NotFoundError
	if errors.As(err, &nf) {
		a.writeJSON(w, r, http.StatusNotFound, errorBody{Error: nf.Error()})
		return
	}
	a.logger.Error(r.Context(), err, "request failed", "path", r.URL.Path)
	a.writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: "internal error"})
}
