package importer

import (
	"strings"

	"finanseer/internal/dateutils"
	"finanseer/internal/models"
	"finanseer/internal/recorderror"
	"finanseer/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// rabobankRow maps the columns of a Rabobank CSV export. The export is
// Latin-1 encoded and uses a decimal comma.
type rabobankRow struct {
	AccountIBAN      string `csv:"IBAN/BBAN"`
	Currency         string `csv:"Munt"`
	Date             string `csv:"Datum"`
	Amount           string `csv:"Bedrag"`
	CounterpartyIBAN string `csv:"Tegenrekening IBAN/BBAN"`
	CounterpartyName string `csv:"Naam tegenpartij"`
	Description1     string `csv:"Omschrijving-1"`
	Description2     string `csv:"Omschrijving-2"`
	Description3     string `csv:"Omschrijving-3"`
}

// ImportRabobankCSV imports transactions from a Rabobank CSV export and
// persists them in one unit of work. Rows with missing or unparseable
// required fields are skipped and counted; rows whose identity hash repeats
// within the file are deduplicated. Rows without a currency fall back to
// defaultCurrency. The returned stats reflect evaluation; on a commit
// failure nothing was persisted and the error says so.
func ImportRabobankCSV(recordStore store.RecordStore, filePath, bankSource, defaultCurrency string) (ImportStats, error) {
	var stats ImportStats

	rows, err := readCSVRows[rabobankRow](filePath, charmap.ISO8859_1)
	if err != nil {
		return stats, err
	}

	seen := make(map[string]struct{}, len(rows))
	transactions := make([]models.Transaction, 0, len(rows))

	for i, row := range rows {
		// Header is line 1, so data row i lives on line i+2.
		line := i + 2

		transaction, err := parseRabobankRow(row, line, bankSource, defaultCurrency)
		if err != nil {
			log.WithError(err).Warn("Skipping row")
			stats.Skipped++
			continue
		}

		if _, dup := seen[transaction.ID]; dup {
			dupErr := &recorderror.DuplicateError{ID: transaction.ID}
			log.WithField("row", line).Warnf("Skipping duplicate transaction in file: %v", dupErr)
			stats.Duplicates++
			continue
		}
		seen[transaction.ID] = struct{}{}

		transactions = append(transactions, transaction)
		stats.Imported++
	}

	if err := recordStore.UpsertTransactions(transactions); err != nil {
		return stats, err
	}

	log.WithFields(logrus.Fields{
		"file":       filePath,
		"imported":   stats.Imported,
		"skipped":    stats.Skipped,
		"duplicates": stats.Duplicates,
	}).Info("Successfully synced transactions to the record store")
	return stats, nil
}

func parseRabobankRow(row rabobankRow, line int, bankSource, defaultCurrency string) (models.Transaction, error) {
	var t models.Transaction

	accountID := cleanString(row.AccountIBAN)
	dateStr := cleanString(row.Date)
	amountStr := cleanString(row.Amount)
	currency := cleanString(row.Currency)
	if currency == "" {
		currency = cleanString(defaultCurrency)
	}

	if accountID == "" || dateStr == "" || amountStr == "" || currency == "" {
		return t, &recorderror.ValidationError{Row: line, Reason: "missing essential data"}
	}

	date, _, err := dateutils.ParseDate(dateStr)
	if err != nil {
		return t, &recorderror.ValidationError{Row: line, Field: "Datum", Value: dateStr, Reason: err.Error()}
	}

	amount, err := parseDutchAmount(amountStr)
	if err != nil {
		return t, &recorderror.ValidationError{Row: line, Field: "Bedrag", Value: amountStr, Reason: err.Error()}
	}

	// The export carries the direction in the amount's sign; internally the
	// amount is non-negative and the direction lives in MutationType.
	mutationType := models.MutationCredit
	if amount.IsNegative() {
		mutationType = models.MutationDebit
	}
	amount = amount.Abs().Round(2)

	counterpartyIBAN := cleanString(row.CounterpartyIBAN)
	counterpartyName := cleanString(row.CounterpartyName)
	description := joinDescriptions(row.Description1, row.Description2, row.Description3)

	t = models.Transaction{
		ID:               models.GenerateID(date, amount, counterpartyIBAN, counterpartyName, description),
		AccountID:        accountID,
		Date:             date,
		Amount:           amount,
		Currency:         currency,
		CounterpartyName: counterpartyName,
		CounterpartyIBAN: counterpartyIBAN,
		DescriptionRaw:   description,
		MutationType:     mutationType,
		BankSource:       bankSource,
	}
	return t, nil
}

// parseDutchAmount parses an amount using a decimal comma and optional
// thousands dots, e.g. "1.234,56".
func parseDutchAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// joinDescriptions combines the split Omschrijving columns into one raw
// description, dropping empty parts.
func joinDescriptions(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = cleanString(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
