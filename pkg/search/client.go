// Package search wraps the Elasticsearch client behind a small Indexer
// interface so the synchronizer service stays testable without a live
// backend.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

// textSearchFields are the fields matched by a full-text query.
var textSearchFields = []string{
	"transaction_id",
	"payment_method",
	"country",
	"product_category",
	"user_name",
	"user_id",
	"product_id",
}

// maxHits caps one search response.
const maxHits = 1000

// Indexer is the secondary-index backend contract.
type Indexer interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// EnsureIndex creates the transactions index if it does not exist.
	EnsureIndex(ctx context.Context) error

	// Index upserts one document under its deterministic id.
	Index(ctx context.Context, id string, doc *models.SearchDocument) error

	// Search runs a multi-field text query with an optional inclusive
	// lower-bound timestamp filter, returning the matching documents and
	// the total hit count.
	Search(ctx context.Context, text string, fromDate *time.Time) ([]*models.SearchDocument, int64, error)
}

// Client is the Elasticsearch-backed Indexer.
type Client struct {
	es    *elasticsearch.Client
	index string
}

// NewClient creates an Indexer talking to the given Elasticsearch address.
func NewClient(address, index string) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{address},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Client{es: es, index: index}, nil
}

var _ Indexer = (*Client)(nil)

func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping returned status %d", res.StatusCode)
	}
	return nil
}

// indexSettings mirrors the single-node defaults of the index.
const indexSettings = `{
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	},
	"mappings": {
		"properties": {
			"transaction_id":   {"type": "keyword"},
			"payment_method":   {"type": "text"},
			"country":          {"type": "text"},
			"product_category": {"type": "text"},
			"status":           {"type": "keyword"},
			"amount":           {"type": "double"},
			"customer_rating":  {"type": "integer"},
			"timestamp":        {"type": "date"},
			"user_id":          {"type": "keyword"},
			"user_name":        {"type": "text"},
			"product_id":       {"type": "keyword"},
			"dataset_source":   {"type": "keyword"},
			"version":          {"type": "keyword"}
		}
	}
}`

func (c *Client) EnsureIndex(ctx context.Context) error {
	exists, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == 200 {
		return nil
	}

	res, err := c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexSettings)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation returned status %d", res.StatusCode)
	}
	return nil
}

func (c *Client) Index(ctx context.Context, id string, doc *models.SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal search document: %w", err)
	}

	res, err := c.es.Index(c.index, bytes.NewReader(body),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("failed to index document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing document %s returned status %d", id, res.StatusCode)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, text string, fromDate *time.Time) ([]*models.SearchDocument, int64, error) {
	query := buildQuery(text, fromDate)
	body, err := json.Marshal(query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithSize(maxHits),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("search returned status %d", res.StatusCode)
	}

	return decodeHits(res.Body)
}

// buildQuery assembles the bool query: a multi_match over the text fields,
// plus an optional timestamp range filter.
func buildQuery(text string, fromDate *time.Time) map[string]any {
	must := []any{
		map[string]any{
			"multi_match": map[string]any{
				"query":  text,
				"fields": textSearchFields,
			},
		},
	}

	if fromDate != nil {
		must = append(must, map[string]any{
			"range": map[string]any{
				"timestamp": map[string]any{"gte": fromDate.Format(time.RFC3339)},
			},
		})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
	}
}

// searchResponse is the subset of the Elasticsearch response we consume.
type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.SearchDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeHits(body io.Reader) ([]*models.SearchDocument, int64, error) {
	var parsed searchResponse
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]*models.SearchDocument, 0, len(parsed.Hits.Hits))
	for i := range parsed.Hits.Hits {
		docs = append(docs, &parsed.Hits.Hits[i].Source)
	}
	return docs, parsed.Hits.Total.Value, nil
}
