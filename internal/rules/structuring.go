package rules

import (
	"fmt"
	"time"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// CheckStructuring detects a large transfer deliberately split into several
// smaller ones to evade reporting thresholds, e.g. 5 x $500 in 30 minutes
// instead of 1 x $2,500.
//
// The sender's amounts inside the trailing window, plus the current amount
// last, form the candidate set. Each amount in turn is treated as a cluster
// center; every amount within ±variance of the center (inclusive bounds)
// joins its cluster. The largest cluster wins, ties going to the first
// center encountered, which keeps decisions reproducible. A cluster of at
// least minCount amounts flags structuring.
//
// The center-vs-all comparison is O(n²) over the window's transaction
// count, which is bounded by time rather than total history.
func CheckStructuring(senderName string, amount float64, history History, timestamp time.Time, windowMinutes, minCount int, variance float64) domain.RuleResult {
	windowStart := timestamp.Add(-time.Duration(windowMinutes) * time.Minute)
	recent := history.GetBySender(senderName, &windowStart)

	amounts := make([]float64, 0, len(recent)+1)
	for _, tx := range recent {
		amounts = append(amounts, tx.Amount)
	}
	amounts = append(amounts, amount)

	if len(amounts) < minCount {
		return domain.RuleResult{}
	}

	maxClusterSize := 0
	var bestCluster []float64

	for _, center := range amounts {
		lower := center * (1 - variance)
		upper := center * (1 + variance)

		var cluster []float64
		for _, a := range amounts {
			if a >= lower && a <= upper {
				cluster = append(cluster, a)
			}
		}

		// Strict > keeps the first center on ties.
		if len(cluster) > maxClusterSize {
			maxClusterSize = len(cluster)
			bestCluster = cluster
		}
	}

	// The empty-cluster check guards the mean below: with minCount <= 0
	// the gate alone would admit a zero-size cluster.
	if maxClusterSize < minCount || len(bestCluster) == 0 {
		return domain.RuleResult{}
	}

	var sum float64
	for _, a := range bestCluster {
		sum += a
	}
	mean := sum / float64(len(bestCluster))

	return domain.RuleResult{
		ScoreDelta: 50,
		Reasons: []string{
			fmt.Sprintf("Potential structuring detected: %d transactions of similar amounts (~$%.2f) within %d minutes",
				maxClusterSize, mean, windowMinutes),
		},
		MatchedRules: []domain.RuleTag{domain.TagStructuringDetected},
	}
}
