package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	elastic "github.com/elastic/go-elasticsearch/v8"

	"github.com/remessas-global/payment-screening/internal/config"
	"github.com/remessas-global/payment-screening/internal/domain"
)

// AuditIndex mirrors audit entries into Elasticsearch for full-text search.
// The in-memory store stays the source of truth; indexing is best effort
// and a failure here never fails a screening.
type AuditIndex struct {
	client *elastic.Client
	index  string
}

// NewAuditIndex creates the index repository and verifies connectivity.
func NewAuditIndex(cfg config.ElasticsearchConfig) (*AuditIndex, error) {
	client, err := elastic.NewClient(elastic.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	if _, err = client.Info(); err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}

	return &AuditIndex{
		client: client,
		index:  cfg.Index,
	}, nil
}

// IndexEntry indexes one audit entry, keyed by transaction id.
func (r *AuditIndex) IndexEntry(ctx context.Context, entry domain.AuditEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	res, err := r.client.Index(
		r.index,
		bytes.NewReader(data),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(entry.TransactionID),
	)
	if err != nil {
		return fmt.Errorf("failed to index audit entry: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch error: %s", res.String())
	}

	return nil
}

// Search runs a query-string search over indexed audit entries, newest
// first.
func (r *AuditIndex) Search(ctx context.Context, query string, from, size int) ([]domain.AuditEntry, error) {
	esQuery := map[string]interface{}{
		"from": from,
		"size": size,
		"query": map[string]interface{}{
			"query_string": map[string]interface{}{
				"query": query,
			},
		},
		"sort": []map[string]interface{}{
			{"timestamp": "desc"},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.index),
		r.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to perform search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	entries := make([]domain.AuditEntry, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		var entry domain.AuditEntry
		if err := json.Unmarshal(hit.Source, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
