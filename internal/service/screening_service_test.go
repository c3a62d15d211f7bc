package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/remessas-global/payment-screening/internal/config"
	"github.com/remessas-global/payment-screening/internal/crypto"
	"github.com/remessas-global/payment-screening/internal/domain"
	"github.com/remessas-global/payment-screening/internal/screening"
	"github.com/remessas-global/payment-screening/internal/store"
)

var testSanctions = []string{"Mohammad Ahmad", "Viktor Petrov"}

var testHighRisk = map[string]struct{}{"IR": {}, "KP": {}}

type capturingAlerts struct {
	ch chan *domain.ScreeningResult
}

func newCapturingAlerts() *capturingAlerts {
	return &capturingAlerts{ch: make(chan *domain.ScreeningResult, 16)}
}

func (a *capturingAlerts) PublishAlert(_ context.Context, result *domain.ScreeningResult) error {
	a.ch <- result
	return nil
}

func newTestService(t *testing.T, signer *crypto.AuditSigner, alerts AlertPublisher) (*ScreeningService, *store.Store) {
	t.Helper()
	st := store.New()
	holder := config.NewRulesHolder(domain.DefaultRulesConfig())

	var engineSigner screening.AuditSigner
	if signer != nil {
		engineSigner = signer
	}
	engine := screening.NewEngine(testSanctions, testHighRisk, st, holder, engineSigner, zap.NewNop())

	return NewScreeningService(engine, st, nil, nil, alerts, signer, zap.NewNop()), st
}

func request(sender string, amount float64, country string, ts time.Time) domain.TransactionRequest {
	return domain.TransactionRequest{
		SenderName:         sender,
		RecipientName:      "John Smith",
		Amount:             amount,
		Currency:           "USD",
		DestinationCountry: country,
		Timestamp:          ts,
	}
}

func TestScreenDelegatesToEngine(t *testing.T) {
	svc, st := newTestService(t, nil, nil)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	res := svc.Screen(context.Background(), request("Maria Garcia", 150, "MX", ts))

	assert.Equal(t, domain.DecisionApproved, res.Decision)
	assert.Len(t, st.GetBySender("Maria Garcia", nil), 1)
}

func TestScreenPublishesAlertForFlaggedTransaction(t *testing.T) {
	alerts := newCapturingAlerts()
	svc, _ := newTestService(t, nil, alerts)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	res := svc.Screen(context.Background(), request("Mohammad Ahmad", 150, "MX", ts))
	require.Equal(t, domain.DecisionDenied, res.Decision)

	select {
	case published := <-alerts.ch:
		assert.Equal(t, res.TransactionID, published.TransactionID)
	case <-time.After(2 * time.Second):
		t.Fatal("alert was not published")
	}
}

func TestScreenSkipsAlertForApprovedTransaction(t *testing.T) {
	alerts := newCapturingAlerts()
	svc, _ := newTestService(t, nil, alerts)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	svc.Screen(context.Background(), request("Maria Garcia", 150, "MX", ts))

	select {
	case published := <-alerts.ch:
		t.Fatalf("unexpected alert for approved transaction %s", published.TransactionID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScreenBatchSummary(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	batch := svc.ScreenBatch(context.Background(), []domain.TransactionRequest{
		request("Maria Garcia", 150, "MX", ts),
		request("Mohammad Ahmad", 150, "MX", ts),
		request("Carlos Reyes", 3000, "IR", ts),
		request("Ana Souza", 3000, "BR", ts),
	})

	require.Len(t, batch.Results, 4)
	assert.Equal(t, 4, batch.Summary.Total)
	assert.Equal(t, 1, batch.Summary.Approved)
	assert.Equal(t, 1, batch.Summary.Denied)
	assert.Equal(t, 2, batch.Summary.Review)
}

func TestScreenBatchCommonRiskFactors(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	// LARGE_AMOUNT fires twice, HIGH_RISK_COUNTRY and SANCTIONS_MATCH once
	// each. Frequency orders first, first appearance breaks the tie.
	batch := svc.ScreenBatch(context.Background(), []domain.TransactionRequest{
		request("Mohammad Ahmad", 150, "MX", ts),
		request("Carlos Reyes", 3000, "IR", ts),
		request("Ana Souza", 3000, "BR", ts),
	})

	assert.Equal(t, []domain.RuleTag{
		domain.TagLargeAmount,
		domain.TagSanctionsMatch,
		domain.TagHighRiskCountry,
	}, batch.Summary.CommonRiskFactors)
}

func TestScreenBatchEmpty(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	batch := svc.ScreenBatch(context.Background(), nil)

	assert.Empty(t, batch.Results)
	assert.Zero(t, batch.Summary.Total)
	assert.NotNil(t, batch.Summary.CommonRiskFactors)
	assert.Empty(t, batch.Summary.CommonRiskFactors)
}

func TestTransactionsFiltersBySince(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	base := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	svc.Screen(context.Background(), request("Maria Garcia", 150, "MX", base))
	svc.Screen(context.Background(), request("Maria Garcia", 150, "MX", base.Add(time.Hour)))

	since := base.Add(30 * time.Minute)
	assert.Len(t, svc.Transactions("Maria Garcia", &since), 1)
	assert.Len(t, svc.Transactions("Maria Garcia", nil), 2)
}

func TestAuditLogVerifiesSignatures(t *testing.T) {
	signer, err := crypto.NewAuditSigner("dW5pdC10ZXN0LXNlY3JldA==")
	require.NoError(t, err)
	svc, _ := newTestService(t, signer, nil)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	svc.Screen(context.Background(), request("Maria Garcia", 3000, "IR", ts))

	entries, err := svc.AuditLog(domain.AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].Signature)
}

func TestAuditLogDetectsTampering(t *testing.T) {
	signer, err := crypto.NewAuditSigner("dW5pdC10ZXN0LXNlY3JldA==")
	require.NoError(t, err)
	svc, st := newTestService(t, signer, nil)
	ts := time.Date(2026, 2, 22, 10, 0, 0, 0, time.UTC)

	svc.Screen(context.Background(), request("Maria Garcia", 150, "MX", ts))

	// An entry appended without a signature fails verification.
	st.AppendAudit(domain.AuditEntry{
		TransactionID: "forged",
		Timestamp:     ts,
		Decision:      domain.DecisionApproved,
	})

	_, err = svc.AuditLog(domain.AuditFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit integrity failure")
}

func TestSearchAuditDisabled(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.SearchAudit(context.Background(), "anything", 0, 10)
	assert.Error(t, err)
}

func TestArchiveAuditLogDisabled(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, _, err := svc.ArchiveAuditLog(context.Background(), nil, nil)
	assert.Error(t, err)
}
