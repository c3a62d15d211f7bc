package rules

import (
	"fmt"

	"github.com/remessas-global/payment-screening/internal/domain"
	"github.com/remessas-global/payment-screening/internal/matcher"
)

// CheckSanctions screens the sender and recipient names against every entry
// in the sanctions list using fuzzy matching. A name matches when its
// similarity to a sanctioned entity reaches the configured threshold.
//
// The sender is checked against the full list first, then the recipient.
// One reason is recorded per match, but the SANCTIONS_MATCH tag is added at
// most once. Any match contributes the full 100 points: sanctions
// involvement alone saturates the score and forces denial via the scorer's
// override.
func CheckSanctions(senderName, recipientName string, sanctionsList []string, threshold int) domain.RuleResult {
	var result domain.RuleResult

	parties := []struct {
		role string
		name string
	}{
		{"Sender", senderName},
		{"Recipient", recipientName},
	}

	for _, party := range parties {
		for _, sanctioned := range sanctionsList {
			similarity := matcher.Similarity(party.name, sanctioned)
			if similarity < threshold {
				continue
			}

			result.Reasons = append(result.Reasons, fmt.Sprintf(
				"%s '%s' matches sanctioned entity '%s' (similarity: %d%%)",
				party.role, party.name, sanctioned, similarity,
			))
			if len(result.MatchedRules) == 0 {
				result.MatchedRules = append(result.MatchedRules, domain.TagSanctionsMatch)
			}
		}
	}

	if len(result.MatchedRules) > 0 {
		result.ScoreDelta = 100
	}
	return result
}
