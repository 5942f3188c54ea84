package importer_test

import (
	"os"
	"path/filepath"
	"testing"

	"finanseer/internal/importer"
	"finanseer/internal/models"
	"finanseer/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLatin1CSV writes raw bytes so Latin-1 characters (like \xe9 for 'é')
// survive untouched, matching how Rabobank encodes its exports.
func writeLatin1CSV(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rabobank.csv")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

const rabobankHeader = `"IBAN/BBAN","Munt","Datum","Bedrag","Tegenrekening IBAN/BBAN","Naam tegenpartij","Omschrijving-1","Omschrijving-2","Omschrijving-3"` + "\n"

func TestImportRabobankCSV(t *testing.T) {
	content := []byte(rabobankHeader +
		`"NL77RABO0327533137","EUR","2024-05-18","-12,50","NL66INGB0001234567","Caf` + "\xe9" + ` De Hoek","Betaling","terras",""` + "\n" +
		`"NL77RABO0327533137","EUR","2024-05-19","+1.250,00","","Employer BV","Salaris","",""` + "\n")
	path := writeLatin1CSV(t, content)

	m := store.NewMockStore()
	stats, err := importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Imported)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Duplicates)
	require.Len(t, m.Transactions, 2)

	var debit, credit *models.Transaction
	for _, tx := range m.Transactions {
		if tx.MutationType == models.MutationDebit {
			debit = tx
		} else {
			credit = tx
		}
	}

	require.NotNil(t, debit)
	assert.Equal(t, "12.50", debit.Amount.StringFixed(2), "amount is stored unsigned")
	assert.Equal(t, "Café De Hoek", debit.CounterpartyName, "Latin-1 content is decoded")
	assert.Equal(t, "NL66INGB0001234567", debit.CounterpartyIBAN)
	assert.Equal(t, "Betaling terras", debit.DescriptionRaw, "description parts are joined")
	assert.Equal(t, "Rabobank", debit.BankSource)

	require.NotNil(t, credit)
	assert.Equal(t, "1250.00", credit.Amount.StringFixed(2), "thousands separator is handled")
	assert.Equal(t, models.MutationCredit, credit.MutationType)
}

func TestImportRabobankCSVSkipsDuplicateRowsInBatch(t *testing.T) {
	row := `"NL77RABO0327533137","EUR","2024-05-18","-12,50","NL66INGB0001234567","Shop","Betaling","",""` + "\n"
	path := writeLatin1CSV(t, []byte(rabobankHeader+row+row))

	m := store.NewMockStore()
	stats, err := importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Len(t, m.Transactions, 1, "importing the same logical row twice stores exactly one transaction")
}

func TestImportRabobankCSVSkipsInvalidRows(t *testing.T) {
	content := []byte(rabobankHeader +
		`"NL77RABO0327533137","EUR","","-12,50","","Shop","missing date","",""` + "\n" +
		`"NL77RABO0327533137","EUR","2024-05-18","not-a-number","","Shop","bad amount","",""` + "\n" +
		`"NL77RABO0327533137","EUR","2024-05-19","-5,00","","Shop","valid","",""` + "\n")
	path := writeLatin1CSV(t, content)

	m := store.NewMockStore()
	stats, err := importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
	require.NoError(t, err, "row-level problems never fail the import")

	assert.Equal(t, 1, stats.Imported)
	assert.Equal(t, 2, stats.Skipped)
	assert.Len(t, m.Transactions, 1)
}

func TestImportRabobankCSVReimportKeepsCategorization(t *testing.T) {
	row := `"NL77RABO0327533137","EUR","2024-05-18","-12,50","","Shop","Betaling","",""` + "\n"
	path := writeLatin1CSV(t, []byte(rabobankHeader+row))

	m := store.NewMockStore()
	_, err := importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
	require.NoError(t, err)

	catID, err := m.EnsureCategory("Food")
	require.NoError(t, err)
	subID, err := m.EnsureSubcategory("Groceries", catID)
	require.NoError(t, err)

	var txID string
	for id := range m.Transactions {
		txID = id
	}
	_, err = m.BulkSetSubcategory([]store.Assignment{{TransactionID: txID, SubcategoryID: subID}})
	require.NoError(t, err)

	_, err = importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
	require.NoError(t, err)

	require.Len(t, m.Transactions, 1)
	require.NotNil(t, m.Transactions[txID].SubcategoryID)
	assert.Equal(t, subID, *m.Transactions[txID].SubcategoryID,
		"re-import must not undo categorization")
}

func TestImportRabobankCSVConfiguredDelimiter(t *testing.T) {
	importer.SetDelimiter(';')
	t.Cleanup(func() { importer.SetDelimiter(',') })

	content := []byte(`"IBAN/BBAN";"Munt";"Datum";"Bedrag";"Tegenrekening IBAN/BBAN";"Naam tegenpartij";"Omschrijving-1";"Omschrijving-2";"Omschrijving-3"` + "\n" +
		`"NL77RABO0327533137";"EUR";"2024-05-18";"-12,50";"";"Shop";"Betaling";"";""` + "\n")
	path := writeLatin1CSV(t, content)

	m := store.NewMockStore()
	stats, err := importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Imported)
	require.Len(t, m.Transactions, 1)
	for _, tx := range m.Transactions {
		assert.Equal(t, "Shop", tx.CounterpartyName)
		assert.Equal(t, "12.50", tx.Amount.StringFixed(2))
	}
}

func TestImportRabobankCSVDefaultCurrency(t *testing.T) {
	row := `"NL77RABO0327533137","","2024-05-18","-12,50","","Shop","Betaling","",""` + "\n"
	path := writeLatin1CSV(t, []byte(rabobankHeader+row))

	t.Run("missing currency falls back to the configured default", func(t *testing.T) {
		m := store.NewMockStore()
		stats, err := importer.ImportRabobankCSV(m, path, "Rabobank", "EUR")
		require.NoError(t, err)

		assert.Equal(t, 1, stats.Imported)
		for _, tx := range m.Transactions {
			assert.Equal(t, "EUR", tx.Currency)
		}
	})

	t.Run("no currency and no default skips the row", func(t *testing.T) {
		m := store.NewMockStore()
		stats, err := importer.ImportRabobankCSV(m, path, "Rabobank", "")
		require.NoError(t, err)

		assert.Equal(t, 0, stats.Imported)
		assert.Equal(t, 1, stats.Skipped)
	})
}

func TestImportRabobankCSVMissingFile(t *testing.T) {
	m := store.NewMockStore()
	_, err := importer.ImportRabobankCSV(m, filepath.Join(t.TempDir(), "missing.csv"), "Rabobank", "EUR")
	assert.Error(t, err)
}
