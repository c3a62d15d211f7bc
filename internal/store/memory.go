// Package store provides the in-memory system of record for screened
// transactions and the append-only audit log.
//
// Transactions are indexed by normalized sender name, because the windowed
// velocity and structuring rules only ever query one sender's history.
// Each sender has its own append log guarded by its own lock, so concurrent
// screenings for different senders never contend, while two calls for the
// same sender serialize their appends and see each other's completed writes.
//
// All data lives for the lifetime of the process. Nothing is ever updated,
// deleted, or expired.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// SenderKey normalizes a sender name to its index key (trimmed, lowercased).
// The core has no separate customer identifier; the name string is the key.
func SenderKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Store is a thread-safe in-memory transaction and audit store.
type Store struct {
	mu      sync.RWMutex
	senders map[string]*senderLog

	auditMu sync.RWMutex
	audit   []domain.AuditEntry
}

// senderLog is one sender's append-only transaction history, kept sorted
// by timestamp so windowed reads can binary-search for the window start
// instead of scanning all history. Timestamps are client-supplied, so
// appends usually arrive chronologically but are not guaranteed to; a
// late-arriving record is inserted at its sorted position.
type senderLog struct {
	mu   sync.RWMutex
	txns []domain.StoredTransaction
}

// New creates an empty, ready-to-use Store.
func New() *Store {
	return &Store{
		senders: make(map[string]*senderLog),
	}
}

// Append stores a transaction under its normalized sender key, preserving
// timestamp order. The write is atomic: a concurrent reader of the same
// sender sees either the state before the append or the fully-written
// record, never a partial.
func (s *Store) Append(tx domain.StoredTransaction) {
	log := s.logFor(SenderKey(tx.SenderName))

	log.mu.Lock()
	defer log.mu.Unlock()

	n := len(log.txns)
	if n == 0 || !tx.Timestamp.Before(log.txns[n-1].Timestamp) {
		log.txns = append(log.txns, tx)
		return
	}

	// Out-of-order timestamp: insert at the sorted position so the
	// windowed binary search in GetBySender stays valid. Records with
	// equal timestamps keep their arrival order.
	i := sort.Search(n, func(i int) bool {
		return log.txns[i].Timestamp.After(tx.Timestamp)
	})
	log.txns = append(log.txns, domain.StoredTransaction{})
	copy(log.txns[i+1:], log.txns[i:])
	log.txns[i] = tx
}

// GetBySender returns a sender's transactions in timestamp order.
// If since is non-nil, only transactions with timestamp >= since are
// returned (inclusive lower bound). The returned slice is a copy; the
// store retains exclusive ownership of the records.
func (s *Store) GetBySender(name string, since *time.Time) []domain.StoredTransaction {
	s.mu.RLock()
	log := s.senders[SenderKey(name)]
	s.mu.RUnlock()

	if log == nil {
		return nil
	}

	log.mu.RLock()
	defer log.mu.RUnlock()

	start := 0
	if since != nil {
		start = sort.Search(len(log.txns), func(i int) bool {
			return !log.txns[i].Timestamp.Before(*since)
		})
	}
	if start >= len(log.txns) {
		return nil
	}

	out := make([]domain.StoredTransaction, len(log.txns)-start)
	copy(out, log.txns[start:])
	return out
}

// AppendAudit appends an entry to the audit log.
func (s *Store) AppendAudit(entry domain.AuditEntry) {
	s.auditMu.Lock()
	s.audit = append(s.audit, entry)
	s.auditMu.Unlock()
}

// AuditLog returns audit entries matching the filter, in append order.
// All set filter fields combine with AND semantics; time bounds are
// inclusive on both ends.
func (s *Store) AuditLog(filter domain.AuditFilter) []domain.AuditEntry {
	s.auditMu.RLock()
	defer s.auditMu.RUnlock()

	var out []domain.AuditEntry
	for _, entry := range s.audit {
		if filter.TransactionID != nil && entry.TransactionID != *filter.TransactionID {
			continue
		}
		if filter.Since != nil && entry.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && entry.Timestamp.After(*filter.Until) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// logFor returns the sender's log, creating it on first use.
func (s *Store) logFor(key string) *senderLog {
	s.mu.RLock()
	log := s.senders[key]
	s.mu.RUnlock()
	if log != nil {
		return log
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if log = s.senders[key]; log == nil {
		log = &senderLog{}
		s.senders[key] = log
	}
	return log
}
