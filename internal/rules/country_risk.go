package rules

import (
	"fmt"
	"strings"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// CheckCountry flags transactions destined for high-risk jurisdictions
// (FATF grey/black list countries, sanctioned states, jurisdictions with
// weak AML controls). Country codes are ISO 3166-1 alpha-2, compared
// uppercase.
func CheckCountry(destinationCountry string, highRiskCountries map[string]struct{}) domain.RuleResult {
	country := strings.ToUpper(strings.TrimSpace(destinationCountry))

	if _, risky := highRiskCountries[country]; !risky {
		return domain.RuleResult{}
	}

	return domain.RuleResult{
		ScoreDelta: 50,
		Reasons: []string{
			fmt.Sprintf("Destination country '%s' is a high-risk jurisdiction", country),
		},
		MatchedRules: []domain.RuleTag{domain.TagHighRiskCountry},
	}
}
