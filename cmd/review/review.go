// Package review handles the interactive transaction review command.
package review

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"finanseer/cmd/categories"
	"finanseer/cmd/root"
	"finanseer/internal/categorizer"
	"finanseer/internal/models"
	"finanseer/internal/store"

	"github.com/spf13/cobra"
)

var sortBy string

// Cmd represents the review command
var Cmd = &cobra.Command{
	Use:   "review",
	Short: "Review and categorize uncategorized transactions interactively",
	Long: `Walk through the queue of uncategorized transactions. Select one or more
by number (e.g. 1,2,5-7), pick a subcategory from the list, and the whole
selection is assigned in one batch. After each assignment the command
suggests a rule that would automate the same categorization.`,
	RunE: reviewFunc,
}

func init() {
	Cmd.Flags().StringVar(&sortBy, "sort-by", "date", "Sort the review queue by 'date' or 'amount'")
}

func reviewFunc(cmd *cobra.Command, args []string) error {
	sortKey := store.SortByDate
	switch sortBy {
	case "date":
	case "amount":
		sortKey = store.SortByAmount
	default:
		return fmt.Errorf("invalid --sort-by value %q: must be 'date' or 'amount'", sortBy)
	}

	recordStore, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = recordStore.Close() }()

	service := categorizer.NewService(recordStore)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	pageSize := root.Cfg.Review.PageSize

	for {
		transactions, err := service.Uncategorized(sortKey)
		if err != nil {
			return err
		}
		if len(transactions) == 0 {
			cmd.Println("No more uncategorized transactions to review. Well done!")
			return nil
		}

		cmd.Printf("\nFound %d uncategorized transactions to review (showing first %d):\n\n",
			len(transactions), min(pageSize, len(transactions)))
		for i, t := range transactions {
			if i == pageSize {
				break
			}
			printQueueLine(cmd, i+1, t)
		}

		cmd.Println("\nEnter transaction numbers to categorize (e.g., 1,2,5-7), 'l' to list categories, or 'q' to quit.")
		input, ok := prompt(cmd, scanner)
		if !ok || strings.EqualFold(input, "q") {
			return nil
		}
		if strings.EqualFold(input, "l") {
			if err := categories.List(cmd, recordStore); err != nil {
				return err
			}
			continue
		}

		indices, err := ParseSelection(input, len(transactions))
		if err != nil || len(indices) == 0 {
			cmd.Println("Invalid selection.")
			continue
		}

		selected := make([]models.Transaction, 0, len(indices))
		for _, idx := range indices {
			selected = append(selected, transactions[idx])
		}

		cmd.Println("Enter the category number to assign (or 'c' to cancel):")
		catInput, ok := prompt(cmd, scanner)
		if !ok {
			return nil
		}
		if strings.EqualFold(catInput, "c") {
			continue
		}

		catIndex, err := strconv.Atoi(catInput)
		if err != nil {
			cmd.Println("Invalid input. Please try again.")
			continue
		}

		tree, err := service.Categories()
		if err != nil {
			return err
		}
		flat := categories.Flatten(tree)
		if catIndex < 1 || catIndex > len(flat) {
			cmd.Println("Invalid category number.")
			continue
		}
		chosen := flat[catIndex-1]

		ids := make([]string, 0, len(selected))
		for _, t := range selected {
			ids = append(ids, t.ID)
		}
		if err := service.AssignCategory(ids, chosen.ID); err != nil {
			// Reported, but the review loop keeps going.
			cmd.Printf("Assignment failed: %v\n", err)
			continue
		}

		cmd.Printf("Successfully categorized %d transaction(s).\n", len(ids))
		suggestRule(cmd, selected[0], chosen)
	}
}

func printQueueLine(cmd *cobra.Command, n int, t models.Transaction) {
	name := t.CounterpartyName
	if name == "" {
		name = "N/A"
	}
	desc := t.DescriptionRaw
	if desc == "" {
		desc = "N/A"
	}
	cmd.Printf("  %3d | %s | %8s %s | %-35s | %s\n",
		n, t.Date.Format(models.DateLayout), t.Amount.StringFixed(2), t.Currency, name, desc)
}

// suggestRule prints the rules-add invocation that would automate the
// categorization just performed.
func suggestRule(cmd *cobra.Command, t models.Transaction, chosen models.SubcategoryInfo) {
	if t.CounterpartyName == "" && t.CounterpartyIBAN == "" {
		return
	}

	cmd.Println("\nTo create a rule for this, you could use a command like:")
	if t.CounterpartyName != "" {
		cmd.Printf("  finanseer rules add --type counterparty_name --pattern %q --category-id %d\n",
			t.CounterpartyName, chosen.ID)
	}
	if t.CounterpartyIBAN != "" {
		cmd.Printf("  finanseer rules add --type iban --pattern %q --category-id %d\n",
			t.CounterpartyIBAN, chosen.ID)
	}
}

func prompt(cmd *cobra.Command, scanner *bufio.Scanner) (string, bool) {
	cmd.Print("> ")
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// ParseSelection parses a selection expression like "1,2,5-7" into
// zero-based indices, rejecting anything out of the 1..max range.
func ParseSelection(input string, max int) ([]int, error) {
	seen := make(map[int]struct{})

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty selection part")
		}

		if start, end, ok := strings.Cut(part, "-"); ok {
			lo, err := strconv.Atoi(strings.TrimSpace(start))
			if err != nil {
				return nil, err
			}
			hi, err := strconv.Atoi(strings.TrimSpace(end))
			if err != nil {
				return nil, err
			}
			if lo < 1 || hi > max || lo > hi {
				return nil, fmt.Errorf("selection %s out of range 1-%d", part, max)
			}
			for n := lo; n <= hi; n++ {
				seen[n-1] = struct{}{}
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > max {
			return nil, fmt.Errorf("selection %d out of range 1-%d", n, max)
		}
		seen[n-1] = struct{}{}
	}

	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}
