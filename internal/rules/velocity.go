package rules

import (
	"fmt"
	"time"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// CheckVelocity flags senders with an unusual burst of transactions.
// It counts the sender's prior transactions in the trailing window plus
// the current one (not yet stored) and fires when the total strictly
// exceeds the threshold. A count exactly at the threshold does not fire.
func CheckVelocity(senderName string, history History, timestamp time.Time, threshold, windowMinutes int) domain.RuleResult {
	windowStart := timestamp.Add(-time.Duration(windowMinutes) * time.Minute)
	recent := history.GetBySender(senderName, &windowStart)
	count := len(recent) + 1

	if count <= threshold {
		return domain.RuleResult{}
	}

	return domain.RuleResult{
		ScoreDelta: 50,
		Reasons: []string{
			fmt.Sprintf("Sender has %d transactions in the last %d minutes (threshold: %d)",
				count, windowMinutes, threshold),
		},
		MatchedRules: []domain.RuleTag{domain.TagVelocityExceeded},
	}
}
