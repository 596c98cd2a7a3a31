package models

import (
	"fmt"
	"time"
)

// SearchDocument is the denormalized copy of a Transaction held in the
// secondary full-text index, tagged with its originating dataset and lake
// version.
type SearchDocument struct {
	TransactionID   string    `json:"transaction_id"`
	PaymentMethod   string    `json:"payment_method"`
	Country         string    `json:"country"`
	ProductCategory string    `json:"product_category"`
	Status          string    `json:"status"`
	Amount          float64   `json:"amount"`
	CustomerRating  int       `json:"customer_rating"`
	Timestamp       time.Time `json:"timestamp"`
	UserID          string    `json:"user_id"`
	UserName        string    `json:"user_name"`
	ProductID       string    `json:"product_id"`
	DatasetSource   string    `json:"dataset_source"`
	VersionName     string    `json:"version"`
}

// DocumentID returns the deterministic index key. Re-indexing the same
// record is an upsert because the id is a pure function of
// (version, dataset, transaction id).
func (d *SearchDocument) DocumentID() string {
	return fmt.Sprintf("%s_%s_%s", d.VersionName, d.DatasetSource, d.TransactionID)
}

// SearchDocumentFromTransaction builds the index document for a
// materialized record.
func SearchDocumentFromTransaction(t *Transaction) *SearchDocument {
	return &SearchDocument{
		TransactionID:   t.TransactionID,
		PaymentMethod:   t.PaymentMethod,
		Country:         t.Country,
		ProductCategory: t.ProductCategory,
		Status:          t.Status,
		Amount:          t.Amount,
		CustomerRating:  t.CustomerRating,
		Timestamp:       t.Timestamp,
		UserID:          t.UserID,
		UserName:        t.UserName,
		ProductID:       t.ProductID,
		DatasetSource:   t.DatasetName,
		VersionName:     t.VersionName,
	}
}

// SearchGroup is the per-dataset grouping of search hits.
type SearchGroup struct {
	VersionName string            `json:"version"`
	Items       []*SearchDocument `json:"items"`
}

// SearchResult is the grouped-by-dataset result of a full-text query.
type SearchResult struct {
	TotalHits int64                   `json:"total_hits"`
	Groups    map[string]*SearchGroup `json:"results"`
}
