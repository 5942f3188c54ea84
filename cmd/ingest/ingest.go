// Package ingest handles the import command.
package ingest

import (
	"fmt"

	"finanseer/cmd/categories"
	"finanseer/cmd/root"
	"finanseer/internal/importer"

	"github.com/spf13/cobra"
)

var (
	transactionsFile string
	budgetFile       string
	andList          bool
)

// Cmd represents the import command
var Cmd = &cobra.Command{
	Use:   "import",
	Short: "Import bank transactions and budget categories from CSV files",
	Long: `Import transactions from a Rabobank CSV export and/or budget categories
from a YNAB-style CSV export into the local database. Imports are idempotent:
re-importing overlapping data never creates duplicates and never undoes
existing categorization.`,
	RunE: importFunc,
}

func init() {
	Cmd.Flags().StringVarP(&transactionsFile, "transactions", "t", "", "Rabobank CSV export to import")
	Cmd.Flags().StringVarP(&budgetFile, "budget", "b", "", "Budget category CSV export to import")
	Cmd.Flags().BoolVar(&andList, "and-list", false, "List categories immediately after importing")
}

func importFunc(cmd *cobra.Command, args []string) error {
	if transactionsFile == "" && budgetFile == "" {
		return fmt.Errorf("nothing to import: pass --transactions and/or --budget")
	}

	recordStore, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = recordStore.Close() }()

	if transactionsFile != "" {
		stats, err := importer.ImportRabobankCSV(recordStore, transactionsFile,
			root.Cfg.Import.BankSource, root.Cfg.Import.DefaultCurrency)
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d transactions (%d skipped, %d duplicates) from %s\n",
			stats.Imported, stats.Skipped, stats.Duplicates, transactionsFile)
	}

	if budgetFile != "" {
		count, err := importer.ImportBudgetCategories(recordStore, budgetFile)
		if err != nil {
			return err
		}
		cmd.Printf("Imported %d budget categories from %s\n", count, budgetFile)
	}

	if andList {
		return categories.List(cmd, recordStore)
	}
	return nil
}
