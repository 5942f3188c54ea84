// Package export handles the export command.
package export

import (
	"finanseer/cmd/root"
	"finanseer/internal/exporter"

	"github.com/spf13/cobra"
)

var outputFile string

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to a YNAB-compatible CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		recordStore, err := root.OpenStore()
		if err != nil {
			return err
		}
		defer func() { _ = recordStore.Close() }()

		count, err := exporter.ExportYNABCSV(recordStore, outputFile, root.Cfg.Export.DateFormat)
		if err != nil {
			return err
		}

		cmd.Printf("Process finished. Exported %d transactions to '%s'.\n", count, outputFile)
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "export.csv", "Output file path for the export")
}
