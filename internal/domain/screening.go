package domain

import (
	"time"
)

// Decision is the final outcome of screening a transaction
type Decision string

const (
	DecisionApproved Decision = "APPROVED" // Transaction can proceed
	DecisionReview   Decision = "REVIEW"   // Manual compliance review needed
	DecisionDenied   Decision = "DENIED"   // Blocked, sanctions involvement
)

// RuleTag identifies which compliance rule flagged a transaction.
// The set is closed: the scorer's sanctions override is an exact-tag
// check, never a substring or dynamic-string comparison.
type RuleTag string

const (
	TagSanctionsMatch      RuleTag = "SANCTIONS_MATCH"
	TagHighRiskCountry     RuleTag = "HIGH_RISK_COUNTRY"
	TagVelocityExceeded    RuleTag = "VELOCITY_EXCEEDED"
	TagLargeAmount         RuleTag = "LARGE_AMOUNT"
	TagStructuringDetected RuleTag = "STRUCTURING_DETECTED"
)

// TransactionRequest is an incoming remittance transaction to be screened.
// The core performs no validation; malformed input is rejected at the API
// boundary before it gets here.
type TransactionRequest struct {
	SenderName         string    `json:"sender_name"`
	RecipientName      string    `json:"recipient_name"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	DestinationCountry string    `json:"destination_country"`
	Timestamp          time.Time `json:"timestamp"`
}

// RuleResult is the output of a single compliance rule check.
type RuleResult struct {
	ScoreDelta   int       `json:"score_delta"` // Points to add to the cumulative risk score
	Reasons      []string  `json:"reasons"`
	MatchedRules []RuleTag `json:"matched_rules"`
}

// ScreeningResult is the outcome of screening a single transaction.
type ScreeningResult struct {
	TransactionID string    `json:"transaction_id"`
	Decision      Decision  `json:"decision"`
	RiskScore     int       `json:"risk_score"` // 0-100 cumulative risk score
	Reasons       []string  `json:"reasons"`
	MatchedRules  []RuleTag `json:"matched_rules"`
}

// StoredTransaction is the persisted record of a screened transaction.
// Write-once: never mutated after insertion into the store.
type StoredTransaction struct {
	TransactionID      string    `json:"transaction_id"`
	SenderName         string    `json:"sender_name"`
	RecipientName      string    `json:"recipient_name"`
	Amount             float64   `json:"amount"`
	Currency           string    `json:"currency"`
	DestinationCountry string    `json:"destination_country"`
	Timestamp          time.Time `json:"timestamp"`
	Decision           Decision  `json:"decision"`
	RiskScore          int       `json:"risk_score"`
}

// AuditEntry links a screening request to its full outcome and rationale.
// Append-only: this record can never be modified or deleted.
type AuditEntry struct {
	TransactionID string             `json:"transaction_id"`
	Timestamp     time.Time          `json:"timestamp"`
	Request       TransactionRequest `json:"request"`
	Decision      Decision           `json:"decision"`
	RiskScore     int                `json:"risk_score"`
	Reasons       []string           `json:"reasons"`
	MatchedRules  []RuleTag          `json:"matched_rules"`
	Signature     string             `json:"signature,omitempty"` // HMAC signature for non-repudiation
}

// AuditFilter narrows audit log queries. All set fields combine with AND.
type AuditFilter struct {
	TransactionID *string
	Since         *time.Time
	Until         *time.Time
}

// BatchSummary aggregates the outcomes of a batch screening run.
type BatchSummary struct {
	Total             int       `json:"total"`
	Approved          int       `json:"approved"`
	Denied            int       `json:"denied"`
	Review            int       `json:"review"`
	CommonRiskFactors []RuleTag `json:"common_risk_factors"`
}

// BatchResult is the outcome of screening a batch of transactions.
type BatchResult struct {
	Results []*ScreeningResult `json:"results"`
	Summary BatchSummary       `json:"summary"`
}
