package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/remessas-global/payment-screening/internal/crypto"
	"github.com/remessas-global/payment-screening/internal/domain"
	"github.com/remessas-global/payment-screening/internal/repository/elasticsearch"
	"github.com/remessas-global/payment-screening/internal/repository/s3"
	"github.com/remessas-global/payment-screening/internal/screening"
	"github.com/remessas-global/payment-screening/internal/store"
)

// AlertPublisher notifies downstream consumers about flagged transactions.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, result *domain.ScreeningResult) error
}

// ScreeningService wraps the core engine with the service's ambient side
// effects: compliance alerting, best-effort search indexing, and audit
// archival. The engine itself stays free of I/O; everything here runs
// after the decision is made and can never change or fail it.
type ScreeningService struct {
	engine     *screening.Engine
	store      *store.Store
	auditIndex *elasticsearch.AuditIndex // optional
	archive    *s3.ArchiveRepository     // optional
	alerts     AlertPublisher            // optional
	signer     *crypto.AuditSigner       // optional
	logger     *zap.Logger
}

// NewScreeningService assembles the service. The auditIndex, archive,
// alerts, and signer collaborators may each be nil; the corresponding
// capability is then disabled.
func NewScreeningService(
	engine *screening.Engine,
	st *store.Store,
	auditIndex *elasticsearch.AuditIndex,
	archive *s3.ArchiveRepository,
	alerts AlertPublisher,
	signer *crypto.AuditSigner,
	logger *zap.Logger,
) *ScreeningService {
	return &ScreeningService{
		engine:     engine,
		store:      st,
		auditIndex: auditIndex,
		archive:    archive,
		alerts:     alerts,
		signer:     signer,
		logger:     logger,
	}
}

// Screen screens one transaction and fans out the follow-up side effects.
func (s *ScreeningService) Screen(ctx context.Context, req domain.TransactionRequest) *domain.ScreeningResult {
	result := s.engine.Screen(ctx, req)

	if s.alerts != nil && result.Decision != domain.DecisionApproved {
		s.asyncPublishAlert(result)
	}
	if s.auditIndex != nil {
		s.asyncIndexEntry(result.TransactionID)
	}

	return result
}

// ScreenBatch screens each transaction independently, in order, and
// aggregates the outcomes. The summary's common risk factors are the up to
// five most frequent rule tags across the batch, most frequent first, ties
// broken by first appearance.
func (s *ScreeningService) ScreenBatch(ctx context.Context, reqs []domain.TransactionRequest) *domain.BatchResult {
	results := make([]*domain.ScreeningResult, 0, len(reqs))
	for _, req := range reqs {
		results = append(results, s.Screen(ctx, req))
	}

	summary := domain.BatchSummary{
		Total:             len(results),
		CommonRiskFactors: []domain.RuleTag{},
	}

	counts := make(map[domain.RuleTag]int)
	var order []domain.RuleTag
	for _, r := range results {
		switch r.Decision {
		case domain.DecisionApproved:
			summary.Approved++
		case domain.DecisionDenied:
			summary.Denied++
		case domain.DecisionReview:
			summary.Review++
		}
		for _, tag := range r.MatchedRules {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > 5 {
		order = order[:5]
	}
	summary.CommonRiskFactors = append(summary.CommonRiskFactors, order...)

	return &domain.BatchResult{
		Results: results,
		Summary: summary,
	}
}

// Transactions returns a sender's screened transactions, optionally
// bounded below by since.
func (s *ScreeningService) Transactions(sender string, since *time.Time) []domain.StoredTransaction {
	return s.store.GetBySender(sender, since)
}

// AuditLog returns audit entries matching the filter. When a signer is
// configured, every returned entry's signature is verified; a mismatch
// means tampering and fails the whole query.
func (s *ScreeningService) AuditLog(filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	entries := s.store.AuditLog(filter)

	if s.signer != nil {
		for _, entry := range entries {
			if !s.signer.Verify(entry) {
				s.logger.Error("audit signature mismatch",
					zap.String("transaction_id", entry.TransactionID),
				)
				return nil, fmt.Errorf("audit integrity failure: entry %s signature invalid", entry.TransactionID)
			}
		}
	}

	return entries, nil
}

// SearchAudit performs a full-text search over indexed audit entries.
func (s *ScreeningService) SearchAudit(ctx context.Context, query string, from, size int) ([]domain.AuditEntry, error) {
	if s.auditIndex == nil {
		return nil, fmt.Errorf("audit search is not enabled")
	}
	return s.auditIndex.Search(ctx, query, from, size)
}

// ArchiveAuditLog uploads the audit entries in the given time range to the
// archive bucket and returns the batch id and entry count.
func (s *ScreeningService) ArchiveAuditLog(ctx context.Context, since, until *time.Time) (string, int, error) {
	if s.archive == nil {
		return "", 0, fmt.Errorf("audit archival is not enabled")
	}

	entries := s.store.AuditLog(domain.AuditFilter{Since: since, Until: until})
	batchID := uuid.NewString()

	if err := s.archive.ArchiveBatch(ctx, entries, batchID); err != nil {
		return "", 0, fmt.Errorf("failed to archive audit log: %w", err)
	}

	return batchID, len(entries), nil
}

// asyncPublishAlert publishes a compliance alert in the background with
// panic protection. Alerting is best effort and never blocks screening.
func (s *ScreeningService) asyncPublishAlert(result *domain.ScreeningResult) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in alert publish", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.alerts.PublishAlert(ctx, result); err != nil {
			s.logger.Error("failed to publish compliance alert",
				zap.String("transaction_id", result.TransactionID),
				zap.Error(err),
			)
		}
	}()
}

// asyncIndexEntry mirrors the audit entry into Elasticsearch in the
// background. Indexing failures are logged and dropped; the in-memory
// audit log remains authoritative.
func (s *ScreeningService) asyncIndexEntry(transactionID string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in async audit index", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		entries := s.store.AuditLog(domain.AuditFilter{TransactionID: &transactionID})
		if len(entries) == 0 {
			return
		}
		if err := s.auditIndex.IndexEntry(ctx, entries[0]); err != nil {
			s.logger.Error("failed to index audit entry",
				zap.String("transaction_id", transactionID),
				zap.Error(err),
			)
		}
	}()
}
