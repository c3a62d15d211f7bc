package rules

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// stubHistory serves a fixed transaction list, applying the same inclusive
// since filter the real store does.
type stubHistory struct {
	txns []domain.StoredTransaction
}

func (h *stubHistory) GetBySender(_ string, since *time.Time) []domain.StoredTransaction {
	if since == nil {
		return h.txns
	}
	var out []domain.StoredTransaction
	for _, tx := range h.txns {
		if !tx.Timestamp.Before(*since) {
			out = append(out, tx)
		}
	}
	return out
}

func historyOf(base time.Time, amounts ...float64) *stubHistory {
	h := &stubHistory{}
	for i, a := range amounts {
		h.txns = append(h.txns, domain.StoredTransaction{
			TransactionID: fmt.Sprintf("tx-%d", i),
			SenderName:    "Test Sender",
			Amount:        a,
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
		})
	}
	return h
}

var sanctionsList = []string{"Mohammad Ahmad", "Viktor Petrov", "Al-Rashid Trading Company"}

func TestCheckSanctionsExactMatch(t *testing.T) {
	res := CheckSanctions("Mohammad Ahmad", "Clean Recipient", sanctionsList, 85)

	assert.Equal(t, 100, res.ScoreDelta)
	assert.Equal(t, []domain.RuleTag{domain.TagSanctionsMatch}, res.MatchedRules)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "Sender 'Mohammad Ahmad' matches sanctioned entity 'Mohammad Ahmad'")
	assert.Contains(t, res.Reasons[0], "100%")
}

func TestCheckSanctionsFuzzyMatch(t *testing.T) {
	// Transliteration variant of a listed name.
	res := CheckSanctions("Mohammed Ahmad", "Clean Recipient", sanctionsList, 85)

	assert.Equal(t, 100, res.ScoreDelta)
	assert.Equal(t, []domain.RuleTag{domain.TagSanctionsMatch}, res.MatchedRules)
}

func TestCheckSanctionsRecipientMatch(t *testing.T) {
	res := CheckSanctions("Clean Sender", "Viktor Petrov", sanctionsList, 85)

	assert.Equal(t, 100, res.ScoreDelta)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "Recipient 'Viktor Petrov'")
}

func TestCheckSanctionsTagOnce(t *testing.T) {
	// Both parties listed: two reasons but a single tag.
	res := CheckSanctions("Mohammad Ahmad", "Viktor Petrov", sanctionsList, 85)

	assert.Equal(t, 100, res.ScoreDelta)
	assert.Len(t, res.Reasons, 2)
	assert.Equal(t, []domain.RuleTag{domain.TagSanctionsMatch}, res.MatchedRules)
}

func TestCheckSanctionsNoMatch(t *testing.T) {
	res := CheckSanctions("Maria Garcia", "John Smith", sanctionsList, 85)

	assert.Zero(t, res.ScoreDelta)
	assert.Empty(t, res.Reasons)
	assert.Empty(t, res.MatchedRules)
}

func TestCheckCountry(t *testing.T) {
	highRisk := map[string]struct{}{"IR": {}, "KP": {}}

	res := CheckCountry("IR", highRisk)
	assert.Equal(t, 50, res.ScoreDelta)
	assert.Equal(t, []domain.RuleTag{domain.TagHighRiskCountry}, res.MatchedRules)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "Destination country 'IR' is a high-risk jurisdiction", res.Reasons[0])

	assert.Zero(t, CheckCountry("MX", highRisk).ScoreDelta)
}

func TestCheckCountryNormalizesCode(t *testing.T) {
	highRisk := map[string]struct{}{"IR": {}}

	assert.Equal(t, 50, CheckCountry(" ir ", highRisk).ScoreDelta)
}

func TestCheckAmountBoundary(t *testing.T) {
	// Exactly at the threshold does not fire; strictly above does.
	assert.Zero(t, CheckAmount(2000.00, 2000).ScoreDelta)

	res := CheckAmount(2000.01, 2000)
	assert.Equal(t, 50, res.ScoreDelta)
	assert.Equal(t, []domain.RuleTag{domain.TagLargeAmount}, res.MatchedRules)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "Transaction amount $2000.01 exceeds threshold of $2000.00", res.Reasons[0])
}

func TestCheckVelocityBoundary(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	now := base.Add(30 * time.Minute)

	// 4 prior + current = 5, at the threshold of 5: no hit.
	h := historyOf(base, 100, 100, 100, 100)
	assert.Zero(t, CheckVelocity("Test Sender", h, now, 5, 60).ScoreDelta)

	// 5 prior + current = 6: hit.
	h = historyOf(base, 100, 100, 100, 100, 100)
	res := CheckVelocity("Test Sender", h, now, 5, 60)
	assert.Equal(t, 50, res.ScoreDelta)
	assert.Equal(t, []domain.RuleTag{domain.TagVelocityExceeded}, res.MatchedRules)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "Sender has 6 transactions in the last 60 minutes (threshold: 5)", res.Reasons[0])
}

func TestCheckVelocityIgnoresOldTransactions(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	h := historyOf(base, 100, 100, 100, 100, 100)

	// Two hours later the burst has aged out of the window.
	res := CheckVelocity("Test Sender", h, base.Add(2*time.Hour), 5, 60)
	assert.Zero(t, res.ScoreDelta)
}

func TestCheckStructuringCluster(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	now := base.Add(10 * time.Minute)

	// 500 and 490 in the window plus current 510: all within ±20% of 500.
	h := historyOf(base, 500, 490)
	res := CheckStructuring("Test Sender", 510, h, now, 30, 3, 0.20)

	assert.Equal(t, 50, res.ScoreDelta)
	assert.Equal(t, []domain.RuleTag{domain.TagStructuringDetected}, res.MatchedRules)
	require.Len(t, res.Reasons, 1)
	assert.Equal(t, "Potential structuring detected: 3 transactions of similar amounts (~$500.00) within 30 minutes", res.Reasons[0])
}

func TestCheckStructuringBelowMinCount(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	h := historyOf(base, 500)

	res := CheckStructuring("Test Sender", 510, h, base.Add(10*time.Minute), 30, 3, 0.20)
	assert.Zero(t, res.ScoreDelta)
}

func TestCheckStructuringDissimilarAmounts(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	h := historyOf(base, 100, 5000)

	// Three amounts in the window but no cluster of three similar ones.
	res := CheckStructuring("Test Sender", 900, h, base.Add(10*time.Minute), 30, 3, 0.20)
	assert.Zero(t, res.ScoreDelta)
}

func TestCheckStructuringIgnoresOldTransactions(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	h := historyOf(base, 500, 490, 505)

	// An hour later none of the prior amounts are inside the 30 minute
	// window, leaving only the current transaction.
	res := CheckStructuring("Test Sender", 510, h, base.Add(time.Hour), 30, 3, 0.20)
	assert.Zero(t, res.ScoreDelta)
}

func TestCheckStructuringVarianceBoundsInclusive(t *testing.T) {
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)
	// With center 500 and ±20%, 400 and 600 sit exactly on the bounds.
	h := historyOf(base, 400, 600)

	res := CheckStructuring("Test Sender", 500, h, base.Add(10*time.Minute), 30, 3, 0.20)
	assert.Equal(t, 50, res.ScoreDelta)
	require.Len(t, res.Reasons, 1)
	assert.Contains(t, res.Reasons[0], "3 transactions")
}
