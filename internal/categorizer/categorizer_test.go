package categorizer_test

import (
	"testing"
	"time"

	"finanseer/internal/categorizer"
	"finanseer/internal/models"
	"finanseer/internal/recorderror"
	"finanseer/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithData(t *testing.T) (*store.MockStore, int64, int64) {
	t.Helper()
	m := store.NewMockStore()

	bills, err := m.EnsureCategory("Bills")
	require.NoError(t, err)
	food, err := m.EnsureCategory("Food")
	require.NoError(t, err)

	rent, err := m.EnsureSubcategory("Rent", bills)
	require.NoError(t, err)
	groceries, err := m.EnsureSubcategory("Groceries", food)
	require.NoError(t, err)

	today := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.UpsertTransactions([]models.Transaction{
		{
			ID: "t1", AccountID: "A1", Date: today,
			Amount: decimal.RequireFromString("10.00"), Currency: "EUR",
			MutationType: models.MutationDebit, BankSource: "TestBank",
		},
		{
			ID: "t2", AccountID: "A1", Date: today.AddDate(0, 0, -1),
			Amount: decimal.RequireFromString("20.00"), Currency: "EUR",
			MutationType: models.MutationDebit, BankSource: "TestBank",
			CounterpartyName: "UNIQUE_PAYEE",
		},
		{
			ID: "t3", AccountID: "A1", Date: today.AddDate(0, 0, -2),
			Amount: decimal.RequireFromString("30.00"), Currency: "EUR",
			MutationType: models.MutationDebit, BankSource: "TestBank",
			DescriptionRaw: "monthly rent payment",
		},
	}))

	// t1 is already categorized.
	_, err = m.BulkSetSubcategory([]store.Assignment{{TransactionID: "t1", SubcategoryID: rent}})
	require.NoError(t, err)

	return m, rent, groceries
}

func TestUncategorizedSortedByDate(t *testing.T) {
	m, _, _ := newStoreWithData(t)
	service := categorizer.NewService(m)

	uncategorized, err := service.Uncategorized(store.SortByDate)
	require.NoError(t, err)

	require.Len(t, uncategorized, 2)
	assert.Equal(t, "t2", uncategorized[0].ID, "most recent first")
	assert.Equal(t, "t3", uncategorized[1].ID)
	for _, tx := range uncategorized {
		assert.Nil(t, tx.SubcategoryID)
	}
}

func TestUncategorizedSortedByAmount(t *testing.T) {
	m, _, _ := newStoreWithData(t)
	service := categorizer.NewService(m)

	uncategorized, err := service.Uncategorized(store.SortByAmount)
	require.NoError(t, err)

	require.Len(t, uncategorized, 2)
	assert.Equal(t, "t3", uncategorized[0].ID, "largest amount first")
	assert.Equal(t, "t2", uncategorized[1].ID)
}

func TestFindByText(t *testing.T) {
	m, _, _ := newStoreWithData(t)
	service := categorizer.NewService(m)

	t.Run("matches counterparty name case-insensitively", func(t *testing.T) {
		found, err := service.FindByText("unique_payee")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "t2", found[0].ID)
	})

	t.Run("matches raw description", func(t *testing.T) {
		found, err := service.FindByText("rent payment")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "t3", found[0].ID)
	})

	t.Run("never returns categorized transactions", func(t *testing.T) {
		found, err := service.FindByText("")
		require.NoError(t, err)
		for _, tx := range found {
			assert.NotEqual(t, "t1", tx.ID)
		}
	})

	t.Run("no results", func(t *testing.T) {
		found, err := service.FindByText("nonexistent")
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestAssignCategory(t *testing.T) {
	m, _, groceries := newStoreWithData(t)
	service := categorizer.NewService(m)

	require.NoError(t, service.AssignCategory([]string{"t2"}, groceries))

	require.NotNil(t, m.Transactions["t2"].SubcategoryID)
	assert.Equal(t, groceries, *m.Transactions["t2"].SubcategoryID)

	uncategorized, err := service.Uncategorized(store.SortByDate)
	require.NoError(t, err)
	require.Len(t, uncategorized, 1)
	assert.Equal(t, "t3", uncategorized[0].ID)
}

func TestAssignCategoryUnknownSubcategoryAbortsBatch(t *testing.T) {
	m, _, _ := newStoreWithData(t)
	service := categorizer.NewService(m)

	err := service.AssignCategory([]string{"t2", "t3"}, 999)

	var refErr *recorderror.ReferenceError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, int64(999), refErr.ID)

	// Fail-closed: no partial assignment.
	assert.Nil(t, m.Transactions["t2"].SubcategoryID)
	assert.Nil(t, m.Transactions["t3"].SubcategoryID)
}

func TestAssignCategoryPersistenceFailureSurfaces(t *testing.T) {
	m, _, groceries := newStoreWithData(t)
	service := categorizer.NewService(m)

	m.FailCommits = true
	err := service.AssignCategory([]string{"t2"}, groceries)

	var persistErr *recorderror.PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Nil(t, m.Transactions["t2"].SubcategoryID)
}

func TestAddRuleValidatesTarget(t *testing.T) {
	m, rent, _ := newStoreWithData(t)
	service := categorizer.NewService(m)

	id, err := service.AddRule(models.Rule{
		Type:          models.RuleTypeIBAN,
		Pattern:       "NL66INGB0001234567",
		SubcategoryID: rent,
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = service.AddRule(models.Rule{
		Type:          models.RuleTypeIBAN,
		Pattern:       "NL66INGB0001234567",
		SubcategoryID: 999,
	})
	var refErr *recorderror.ReferenceError
	require.ErrorAs(t, err, &refErr)
}

func TestAddRuleKeepsExplicitPriority(t *testing.T) {
	m, rent, _ := newStoreWithData(t)
	service := categorizer.NewService(m)

	_, err := service.AddRule(models.Rule{
		Type:          models.RuleTypeCounterpartyName,
		Pattern:       "Albert Heijn",
		Priority:      models.DefaultRulePriority,
		SubcategoryID: rent,
	})
	require.NoError(t, err)

	// An explicit priority of 0 is the highest priority, not "unset".
	_, err = service.AddRule(models.Rule{
		Type:          models.RuleTypeIBAN,
		Pattern:       "NL66INGB0001234567",
		Priority:      0,
		SubcategoryID: rent,
	})
	require.NoError(t, err)

	rules, err := m.RulesByPriority()
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, 0, rules[0].Priority)
	assert.Equal(t, models.RuleTypeIBAN, rules[0].Type)
	assert.Equal(t, models.DefaultRulePriority, rules[1].Priority)
}
