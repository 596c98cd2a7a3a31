package lake

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

// sourceTimeLayout is the timestamp format used by lake producers.
const sourceTimeLayout = "2006-01-02T15:04:05.000Z"

// UnknownValue is the sentinel substituted for absent string fields.
const UnknownValue = "Unknown"

// NormalizeRecord maps one untyped lake item onto the canonical Transaction
// shape, applying the named default-substitution rules:
//
//   - string fields (payment method, category, status, user id, user name,
//     product id) default to "Unknown" when absent
//   - country comes from the nested LOCATION object
//   - customer rating defaults to 0 when absent or null
//   - timestamp defaults to now when absent or unparsable
//
// A missing amount defaults to 0; a negative or non-numeric amount is an
// error and the item is skipped by the caller.
func NormalizeRecord(raw map[string]any, dataset, version string, now time.Time) (*models.Transaction, error) {
	amount, err := numberField(raw, "AMOUNT")
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, fmt.Errorf("negative amount %v", amount)
	}

	country := UnknownValue
	if loc, ok := raw["LOCATION"].(map[string]any); ok {
		country = stringField(loc, "COUNTRY")
	}

	rating := 0
	if v, ok := raw["CUSTOMER_RATING"]; ok && v != nil {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("customer rating is not a number: %v", v)
		}
		rating = int(f)
	}

	timestamp := now
	if v, ok := raw["TIMESTAMP"].(string); ok {
		if parsed, err := time.Parse(sourceTimeLayout, v); err == nil {
			timestamp = parsed
		}
	}

	transactionID := ""
	if v, ok := raw["TRANSACTION_ID"].(string); ok {
		transactionID = v
	}

	return &models.Transaction{
		ID:              uuid.New(),
		DatasetName:     dataset,
		VersionName:     version,
		TransactionID:   transactionID,
		PaymentMethod:   stringField(raw, "PAYMENT_METHOD"),
		Country:         country,
		ProductCategory: stringField(raw, "PRODUCT_CATEGORY"),
		Status:          stringField(raw, "STATUS"),
		Amount:          amount,
		CustomerRating:  rating,
		Timestamp:       timestamp,
		UserID:          stringField(raw, "USER_ID"),
		UserName:        stringField(raw, "USER_NAME"),
		ProductID:       stringField(raw, "PRODUCT_ID"),
	}, nil
}

// stringField substitutes the Unknown sentinel only when the key is absent
// or not a string; an explicitly empty value is kept verbatim.
func stringField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return UnknownValue
}

func numberField(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%g", &f); err != nil {
			return 0, fmt.Errorf("field %s is not numeric: %q", key, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %s is not numeric: %v", key, v)
	}
}
