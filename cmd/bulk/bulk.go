// Package bulk handles the bulk-categorize command.
package bulk

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"finanseer/cmd/root"
	"finanseer/internal/categorizer"
	"finanseer/internal/models"

	"github.com/spf13/cobra"
)

const previewLimit = 10

// Cmd represents the bulk-categorize command
var Cmd = &cobra.Command{
	Use:   "bulk-categorize <text> <subcategory-id>",
	Short: "Categorize all uncategorized transactions matching a text pattern",
	Long: `Find uncategorized transactions whose counterparty name or description
contains the given text (case-insensitive), preview them, and after
confirmation assign the given subcategory to the whole batch at once.`,
	Args: cobra.ExactArgs(2),
	RunE: bulkFunc,
}

func bulkFunc(cmd *cobra.Command, args []string) error {
	pattern := args[0]
	subcategoryID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid subcategory ID %q: %w", args[1], err)
	}

	recordStore, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = recordStore.Close() }()

	service := categorizer.NewService(recordStore)
	transactions, err := service.FindByText(pattern)
	if err != nil {
		return err
	}

	if len(transactions) == 0 {
		cmd.Printf("No transactions found matching '%s'.\n", pattern)
		return nil
	}

	cmd.Printf("Found %d matching transactions for the pattern '%s':\n\n", len(transactions), pattern)
	for i, t := range transactions {
		if i == previewLimit {
			cmd.Printf("  ...and %d more.\n", len(transactions)-previewLimit)
			break
		}
		printTransaction(cmd, t)
	}

	cmd.Printf("\nProceed with assigning subcategory ID %d to these %d transactions? (y/n): ",
		subcategoryID, len(transactions))
	if !confirm(cmd) {
		cmd.Println("Bulk categorization cancelled.")
		return nil
	}

	ids := make([]string, 0, len(transactions))
	for _, t := range transactions {
		ids = append(ids, t.ID)
	}
	if err := service.AssignCategory(ids, subcategoryID); err != nil {
		return err
	}

	cmd.Printf("Successfully categorized %d transactions.\n", len(ids))
	return nil
}

func printTransaction(cmd *cobra.Command, t models.Transaction) {
	name := t.CounterpartyName
	if name == "" {
		name = "N/A"
	}
	desc := t.DescriptionRaw
	if desc == "" {
		desc = "N/A"
	}
	cmd.Printf("  %s | %8s %s | %-35s | %s\n",
		t.Date.Format(models.DateLayout), t.Amount.StringFixed(2), t.Currency, name, desc)
}

func confirm(cmd *cobra.Command) bool {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
}
