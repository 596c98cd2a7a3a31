package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction is the canonical materialized record shape. Instances are
// created only by the materializer from raw lake items and are immutable
// once stored.
type Transaction struct {
	ID              uuid.UUID `json:"id"`
	DatasetName     string    `json:"dataset_name"`
	VersionName     string    `json:"version_name"`
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
	CreatedAt       time.Time `json:"created_at"`
}

// TransactionFilter restricts a transaction listing. Zero values mean the
// corresponding predicate is not applied. Substring matches are
// case-insensitive.
type TransactionFilter struct {
	PaymentMethod           string
	PaymentMethodContains   string
	Country                 string
	CountryContains         string
	ProductCategory         string
	ProductCategoryContains string
	Status                  string
	UserID                  string
	UserName                string
	UserNameContains        string
	ProductID               string

	AmountGT *float64
	AmountLT *float64
	Amount   *float64
	RatingGT *int
	RatingLT *int
	Rating   *int

	// Search matches any of the categorical text fields.
	Search string

	// Ordering is one of amount, customer_rating, timestamp, optionally
	// prefixed with "-" for descending. Empty means timestamp ascending.
	Ordering string
}
