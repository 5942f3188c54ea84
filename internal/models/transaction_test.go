package models_test

import (
	"testing"
	"time"

	"finanseer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateIDIsDeterministic(t *testing.T) {
	amount := decimal.RequireFromString("10.50")

	id1 := models.GenerateID(date(2024, 1, 1), amount, "NL01RABO0123456789", "Test Payee", "Test Description")
	id2 := models.GenerateID(date(2024, 1, 1), amount, "NL01RABO0123456789", "Test Payee", "Test Description")

	assert.Equal(t, id1, id2)
	assert.Len(t, id1, 64, "expected a full SHA-256 hex digest")
}

func TestGenerateIDIgnoresWhitespacePadding(t *testing.T) {
	amount := decimal.RequireFromString("10.50")

	padded := models.GenerateID(date(2024, 1, 1), amount, " NL01RABO0123456789 ", " Test Payee ", " Test Description ")
	plain := models.GenerateID(date(2024, 1, 1), amount, "NL01RABO0123456789", "Test Payee", "Test Description")

	assert.Equal(t, plain, padded)
}

func TestGenerateIDIsSensitiveToEveryField(t *testing.T) {
	amount := decimal.RequireFromString("10.50")
	base := models.GenerateID(date(2024, 1, 1), amount, "NL01RABO0123456789", "Test Payee", "Test Description")

	tests := []struct {
		name string
		id   string
	}{
		{
			name: "different date",
			id:   models.GenerateID(date(2024, 1, 2), amount, "NL01RABO0123456789", "Test Payee", "Test Description"),
		},
		{
			name: "different amount",
			id:   models.GenerateID(date(2024, 1, 1), decimal.RequireFromString("10.51"), "NL01RABO0123456789", "Test Payee", "Test Description"),
		},
		{
			name: "different counterparty",
			id:   models.GenerateID(date(2024, 1, 1), amount, "NL02INGB0001234567", "Test Payee", "Test Description"),
		},
		{
			name: "different description",
			id:   models.GenerateID(date(2024, 1, 1), amount, "NL01RABO0123456789", "Test Payee", "Different Description"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base, tt.id)
		})
	}
}

func TestGenerateIDPrefersIBANOverName(t *testing.T) {
	amount := decimal.RequireFromString("5.00")

	withIBAN := models.GenerateID(date(2024, 3, 1), amount, "NL01RABO0123456789", "Name A", "desc")
	sameIBANOtherName := models.GenerateID(date(2024, 3, 1), amount, "NL01RABO0123456789", "Name B", "desc")
	nameOnly := models.GenerateID(date(2024, 3, 1), amount, "", "Name A", "desc")

	assert.Equal(t, withIBAN, sameIBANOtherName, "name must not contribute when an IBAN is present")
	assert.NotEqual(t, withIBAN, nameOnly)
}

func TestGenerateIDQuantizesAmount(t *testing.T) {
	a := models.GenerateID(date(2024, 1, 1), decimal.RequireFromString("10.5"), "", "Payee", "")
	b := models.GenerateID(date(2024, 1, 1), decimal.RequireFromString("10.50"), "", "Payee", "")

	assert.Equal(t, a, b, "amounts are quantized to two decimals before hashing")
}

func TestValidRuleType(t *testing.T) {
	assert.True(t, models.ValidRuleType("iban"))
	assert.True(t, models.ValidRuleType("counterparty_name"))
	assert.True(t, models.ValidRuleType("description_contains"))
	assert.False(t, models.ValidRuleType("regex"))
	assert.False(t, models.ValidRuleType(""))
}

func TestCategoryLabel(t *testing.T) {
	categorized := models.CategorizedTransaction{CategoryName: "Bills", SubcategoryName: "Rent"}
	require.Equal(t, "Bills: Rent", categorized.CategoryLabel())

	uncategorized := models.CategorizedTransaction{}
	assert.Equal(t, "", uncategorized.CategoryLabel())
}
