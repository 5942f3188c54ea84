// Package categories handles the list-categories command.
package categories

import (
	"finanseer/cmd/root"
	"finanseer/internal/categorizer"
	"finanseer/internal/models"
	"finanseer/internal/store"

	"github.com/spf13/cobra"
)

// Cmd represents the list-categories command
var Cmd = &cobra.Command{
	Use:   "list-categories",
	Short: "List all available categories and subcategories",
	RunE: func(cmd *cobra.Command, args []string) error {
		recordStore, err := root.OpenStore()
		if err != nil {
			return err
		}
		defer func() { _ = recordStore.Close() }()

		return List(cmd, recordStore)
	},
}

// List prints the category tree as a flat, numbered subcategory list. The
// numbering matches what the review command accepts as category input.
func List(cmd *cobra.Command, recordStore store.RecordStore) error {
	service := categorizer.NewService(recordStore)
	tree, err := service.Categories()
	if err != nil {
		return err
	}

	if len(tree) == 0 {
		cmd.Println("No categories found. Run the import command first.")
		return nil
	}

	cmd.Println("Available categories and subcategories:")
	cmd.Println()
	for i, sub := range Flatten(tree) {
		cmd.Printf("  %3d | %-20s | %s\n", i+1, sub.CategoryName, sub.Name)
	}
	return nil
}

// Flatten turns the category tree into the ordered subcategory list shown
// to the user; positions in this list are stable selection numbers.
func Flatten(tree []models.CategoryWithSubcategories) []models.SubcategoryInfo {
	var flat []models.SubcategoryInfo
	for _, cat := range tree {
		for _, sub := range cat.Subcategories {
			flat = append(flat, models.SubcategoryInfo{
				Subcategory:  sub,
				CategoryName: cat.Name,
			})
		}
	}
	return flat
}
