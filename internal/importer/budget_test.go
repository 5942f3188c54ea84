package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"finanseer/internal/importer"
	"finanseer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBudgetCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "budget.csv")
	// YNAB exports carry a UTF-8 byte order mark.
	require.NoError(t, os.WriteFile(path, append([]byte("\xef\xbb\xbf"), content...), 0o600))
	return path
}

func TestImportBudgetCategories(t *testing.T) {
	path := writeBudgetCSV(t, "Category Group,Category\n"+
		"Bills,Rent\n"+
		"Bills,Utilities\n"+
		"Food,Groceries\n"+
		",Orphan\n"+
		"Empty Group,\n")

	m := store.NewMockStore()
	count, err := importer.ImportBudgetCategories(m, path)
	require.NoError(t, err)

	assert.Equal(t, 2, count)

	tree, err := m.CategoriesWithSubcategories()
	require.NoError(t, err)
	require.Len(t, tree, 2)

	assert.Equal(t, "Bills", tree[0].Name)
	require.Len(t, tree[0].Subcategories, 2)
	assert.Equal(t, "Rent", tree[0].Subcategories[0].Name)
	assert.Equal(t, "Utilities", tree[0].Subcategories[1].Name)

	assert.Equal(t, "Food", tree[1].Name)
	require.Len(t, tree[1].Subcategories, 1)
	assert.Equal(t, "Groceries", tree[1].Subcategories[0].Name)
}

func TestImportBudgetCategoriesIsIdempotent(t *testing.T) {
	path := writeBudgetCSV(t, "Category Group,Category\nBills,Rent\n")

	m := store.NewMockStore()
	_, err := importer.ImportBudgetCategories(m, path)
	require.NoError(t, err)
	_, err = importer.ImportBudgetCategories(m, path)
	require.NoError(t, err)

	tree, err := m.CategoriesWithSubcategories()
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Subcategories, 1)
}

func TestImportBudgetCategoriesMissingFile(t *testing.T) {
	m := store.NewMockStore()
	_, err := importer.ImportBudgetCategories(m, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
