// Package exporter writes categorized transactions to a YNAB-compatible
// CSV file.
package exporter

import (
	"fmt"
	"os"

	"finanseer/internal/config"
	"finanseer/internal/models"
	"finanseer/internal/store"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
)

// Use the centralized logger from config package
var log = config.Logger

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// DefaultDateLayout is the MM/DD/YYYY layout YNAB expects.
const DefaultDateLayout = "01/02/2006"

// ynabRow maps one transaction onto the YNAB import columns. Exactly one of
// Outflow and Inflow is set, depending on the mutation type.
type ynabRow struct {
	Date     string `csv:"Date"`
	Payee    string `csv:"Payee"`
	Memo     string `csv:"Memo"`
	Outflow  string `csv:"Outflow"`
	Inflow   string `csv:"Inflow"`
	Category string `csv:"Category"`
}

// ExportYNABCSV writes all transactions, ordered by date, to a
// YNAB-compatible CSV file. The category column carries
// "Category: Subcategory" labels and stays empty for uncategorized
// transactions.
func ExportYNABCSV(recordStore store.RecordStore, filePath, dateLayout string) (int, error) {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}

	log.WithField("file", filePath).Info("Starting transaction export")

	transactions, err := recordStore.AllForExport()
	if err != nil {
		return 0, err
	}
	if len(transactions) == 0 {
		log.Info("No transactions found to export")
		return 0, nil
	}

	rows := make([]ynabRow, 0, len(transactions))
	for _, t := range transactions {
		rows = append(rows, toYNABRow(t, dateLayout))
	}

	file, err := os.Create(filePath)
	if err != nil {
		return 0, fmt.Errorf("error creating export file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close export file")
		}
	}()

	if err := gocsv.Marshal(rows, file); err != nil {
		return 0, fmt.Errorf("error writing export CSV: %w", err)
	}

	log.WithFields(logrus.Fields{
		"file":  filePath,
		"count": len(rows),
	}).Info("Successfully exported transactions")
	return len(rows), nil
}

func toYNABRow(t models.CategorizedTransaction, dateLayout string) ynabRow {
	row := ynabRow{
		Date:     t.Date.Format(dateLayout),
		Payee:    t.CounterpartyName,
		Memo:     t.DescriptionRaw,
		Category: t.CategoryLabel(),
	}

	amount := t.Amount.StringFixed(2)
	if t.IsDebit() {
		row.Outflow = amount
	} else {
		row.Inflow = amount
	}
	return row
}
