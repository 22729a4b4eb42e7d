// Package insurance is the business core of claimwatch. It holds the
// policyholder Registry, the append-only claim Ledger, and the read-only
// RiskAnalyzer and ReportGenerator that derive analytics from them. Service
// ties these together behind a single lock and is what the HTTP layer calls.
//
// All state lives in process memory and is lost on restart.
package insurance
