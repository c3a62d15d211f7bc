package rules

import (
	"fmt"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// CheckAmount flags transactions strictly above the configured ceiling.
// An amount exactly equal to the threshold does not trigger: the boundary
// is exclusive.
func CheckAmount(amount, threshold float64) domain.RuleResult {
	if amount <= threshold {
		return domain.RuleResult{}
	}

	return domain.RuleResult{
		ScoreDelta: 50,
		Reasons: []string{
			fmt.Sprintf("Transaction amount $%.2f exceeds threshold of $%.2f", amount, threshold),
		},
		MatchedRules: []domain.RuleTag{domain.TagLargeAmount},
	}
}
