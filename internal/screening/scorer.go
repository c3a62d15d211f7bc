package screening

import (
	"github.com/remessas-global/payment-screening/internal/domain"
)

// maxRiskScore caps the cumulative score. Contributions past the cap are
// clamped, never wrapped.
const maxRiskScore = 100

// reviewThreshold is the clamped score at or above which a transaction
// goes to manual review.
const reviewThreshold = 50

// Aggregate combines the rule results, in rule-execution order, into the
// cumulative score and final decision.
//
// The decision is deterministic, with a two-level override:
//   - a sanctions match always yields DENIED, regardless of score;
//   - otherwise the clamped score decides: >= 50 REVIEW, else APPROVED.
//
// The score is still computed and reported on denial, for audit purposes
// only. Reasons and tags are concatenated preserving rule order.
func Aggregate(results []domain.RuleResult) (int, domain.Decision, []string, []domain.RuleTag) {
	total := 0
	reasons := []string{}
	matched := []domain.RuleTag{}

	for _, r := range results {
		total += r.ScoreDelta
		reasons = append(reasons, r.Reasons...)
		matched = append(matched, r.MatchedRules...)
	}

	if total > maxRiskScore {
		total = maxRiskScore
	}
	if total < 0 {
		total = 0
	}

	decision := domain.DecisionApproved
	switch {
	case hasSanctionsMatch(matched):
		decision = domain.DecisionDenied
	case total >= reviewThreshold:
		decision = domain.DecisionReview
	}

	return total, decision, reasons, matched
}

func hasSanctionsMatch(tags []domain.RuleTag) bool {
	for _, tag := range tags {
		if tag == domain.TagSanctionsMatch {
			return true
		}
	}
	return false
}
