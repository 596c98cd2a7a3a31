package repositories

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakegate-inc/lakegate-engine/pkg/apperrors"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
)

func baseBuilder() sq.SelectBuilder {
	return sq.Select("id").From("transactions").PlaceholderFormat(sq.Dollar)
}

func TestApplyFilter_ExactMatch(t *testing.T) {
	filter := &models.TransactionFilter{Status: "COMPLETED", UserID: "u-1"}

	query, args, err := applyFilter(baseBuilder(), filter).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "status = ")
	assert.Contains(t, query, "user_id = ")
	assert.ElementsMatch(t, []any{"COMPLETED", "u-1"}, args)
}

func TestApplyFilter_SubstringUsesILike(t *testing.T) {
	filter := &models.TransactionFilter{CountryContains: "land"}

	query, args, err := applyFilter(baseBuilder(), filter).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "country ILIKE ")
	assert.Equal(t, []any{"%land%"}, args)
}

func TestApplyFilter_NumericComparisons(t *testing.T) {
	amount := 9.5
	rating := 3
	filter := &models.TransactionFilter{AmountGT: &amount, RatingLT: &rating}

	query, args, err := applyFilter(baseBuilder(), filter).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "amount > ")
	assert.Contains(t, query, "customer_rating < ")
	assert.ElementsMatch(t, []any{9.5, 3}, args)
}

func TestApplyFilter_SearchSpansCategoricalFields(t *testing.T) {
	filter := &models.TransactionFilter{Search: "card"}

	query, args, err := applyFilter(baseBuilder(), filter).ToSql()
	require.NoError(t, err)

	for _, column := range searchableColumns {
		assert.Contains(t, query, column+" ILIKE ")
	}
	assert.Len(t, args, len(searchableColumns))
}

func TestApplyFilter_ZeroFilterAddsNothing(t *testing.T) {
	plain, _, err := baseBuilder().ToSql()
	require.NoError(t, err)

	filtered, args, err := applyFilter(baseBuilder(), &models.TransactionFilter{}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, plain, filtered)
	assert.Empty(t, args)
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		ordering string
		want     string
	}{
		{"", "timestamp ASC"},
		{"amount", "amount ASC"},
		{"-amount", "amount DESC"},
		{"customer_rating", "customer_rating ASC"},
		{"-timestamp", "timestamp DESC"},
	}

	for _, tc := range cases {
		got, err := orderClause(tc.ordering)
		require.NoError(t, err, tc.ordering)
		assert.Equal(t, tc.want, got)
	}
}

func TestOrderClause_UnknownField(t *testing.T) {
	_, err := orderClause("user_name")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = orderClause("-amount; DROP TABLE transactions")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
