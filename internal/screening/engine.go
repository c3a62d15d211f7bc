// Package screening contains the rule evaluation pipeline, the score
// aggregation policy, and the orchestrating engine.
package screening

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/remessas-global/payment-screening/internal/domain"
	"github.com/remessas-global/payment-screening/internal/rules"
)

// TransactionStore is the engine's view of the sender-indexed store.
type TransactionStore interface {
	rules.History
	Append(tx domain.StoredTransaction)
	AppendAudit(entry domain.AuditEntry)
}

// RulesSource supplies the active rule thresholds. Snapshot must return a
// complete, consistent config; the engine calls it exactly once per
// screening.
type RulesSource interface {
	Snapshot() domain.RulesConfig
}

// AuditSigner signs audit entries for non-repudiation.
type AuditSigner interface {
	Sign(entry domain.AuditEntry) string
}

// Engine orchestrates the screening of one transaction: it runs the five
// compliance rules in a fixed severity order, aggregates their results into
// a decision, and persists the transaction plus an audit entry.
//
// Safe for concurrent use: all mutable shared state lives in the store.
type Engine struct {
	sanctionsList     []string
	highRiskCountries map[string]struct{}
	store             TransactionStore
	rulesCfg          RulesSource
	signer            AuditSigner
	logger            *zap.Logger
}

// NewEngine creates a screening engine. The sanctions list and high-risk
// country set are reference data fixed at construction; thresholds come
// from the rules source on every call.
func NewEngine(
	sanctionsList []string,
	highRiskCountries map[string]struct{},
	store TransactionStore,
	rulesCfg RulesSource,
	signer AuditSigner,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		sanctionsList:     sanctionsList,
		highRiskCountries: highRiskCountries,
		store:             store,
		rulesCfg:          rulesCfg,
		signer:            signer,
		logger:            logger,
	}
}

// Screen evaluates one transaction against all compliance rules.
//
// The five rules run in severity order against the store state as of the
// start of the call: the current transaction is not visible to the
// velocity and structuring lookbacks, it is appended only after scoring.
// Exactly one transaction append and one audit append happen per call,
// unconditionally; approved history still feeds future windowed checks.
//
// Screen never fails: every input maps to a decision.
func (e *Engine) Screen(ctx context.Context, req domain.TransactionRequest) *domain.ScreeningResult {
	transactionID := uuid.NewString()
	cfg := e.rulesCfg.Snapshot()

	results := []domain.RuleResult{
		// 1. Sanctions, highest severity, absolute veto
		e.runRule("sanctions", func() domain.RuleResult {
			return rules.CheckSanctions(req.SenderName, req.RecipientName, e.sanctionsList, cfg.FuzzyMatchThreshold)
		}),
		// 2. Country risk
		e.runRule("country_risk", func() domain.RuleResult {
			return rules.CheckCountry(req.DestinationCountry, e.highRiskCountries)
		}),
		// 3. Velocity
		e.runRule("velocity", func() domain.RuleResult {
			return rules.CheckVelocity(req.SenderName, e.store, req.Timestamp, cfg.VelocityThreshold, cfg.VelocityWindowMinutes)
		}),
		// 4. Amount
		e.runRule("amount", func() domain.RuleResult {
			return rules.CheckAmount(req.Amount, cfg.AmountThreshold)
		}),
		// 5. Structuring
		e.runRule("structuring", func() domain.RuleResult {
			return rules.CheckStructuring(req.SenderName, req.Amount, e.store, req.Timestamp,
				cfg.StructuringWindowMinutes, cfg.StructuringMinCount, cfg.StructuringAmountVariance)
		}),
	}

	score, decision, reasons, matched := Aggregate(results)

	e.store.Append(domain.StoredTransaction{
		TransactionID:      transactionID,
		SenderName:         req.SenderName,
		RecipientName:      req.RecipientName,
		Amount:             req.Amount,
		Currency:           req.Currency,
		DestinationCountry: req.DestinationCountry,
		Timestamp:          req.Timestamp,
		Decision:           decision,
		RiskScore:          score,
	})

	entry := domain.AuditEntry{
		TransactionID: transactionID,
		Timestamp:     req.Timestamp,
		Request:       req,
		Decision:      decision,
		RiskScore:     score,
		Reasons:       reasons,
		MatchedRules:  matched,
	}
	if e.signer != nil {
		entry.Signature = e.signer.Sign(entry)
	}
	e.store.AppendAudit(entry)

	e.logger.Debug("transaction screened",
		zap.String("transaction_id", transactionID),
		zap.String("decision", string(decision)),
		zap.Int("risk_score", score),
	)

	return &domain.ScreeningResult{
		TransactionID: transactionID,
		Decision:      decision,
		RiskScore:     score,
		Reasons:       reasons,
		MatchedRules:  matched,
	}
}

// runRule isolates a single rule check. A panicking rule yields an empty
// result; the remaining rules and the unconditional store writes still run.
func (e *Engine) runRule(name string, check func() domain.RuleResult) (result domain.RuleResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("rule check panicked",
				zap.String("rule", name),
				zap.Any("panic", r),
			)
			result = domain.RuleResult{}
		}
	}()
	return check()
}
