package importer

import (
	"finanseer/internal/store"

	"golang.org/x/text/encoding/unicode"
)

// budgetRow maps the columns of a YNAB-style budget export. The export is
// UTF-8 with a byte order mark.
type budgetRow struct {
	CategoryGroup string `csv:"Category Group"`
	Category      string `csv:"Category"`
}

// ImportBudgetCategories imports the budget category structure from a
// YNAB-style CSV export. Categories and subcategories are created
// idempotently; rows with an empty group or category name are skipped.
func ImportBudgetCategories(recordStore store.RecordStore, filePath string) (int, error) {
	rows, err := readCSVRows[budgetRow](filePath, unicode.UTF8BOM)
	if err != nil {
		return 0, err
	}

	categoryIDs := make(map[string]int64)
	for _, row := range rows {
		group := cleanString(row.CategoryGroup)
		subcategory := cleanString(row.Category)
		if group == "" || subcategory == "" {
			continue
		}

		categoryID, ok := categoryIDs[group]
		if !ok {
			categoryID, err = recordStore.EnsureCategory(group)
			if err != nil {
				return len(categoryIDs), err
			}
			categoryIDs[group] = categoryID
		}

		if _, err := recordStore.EnsureSubcategory(subcategory, categoryID); err != nil {
			return len(categoryIDs), err
		}
	}

	log.WithField("categories", len(categoryIDs)).Infof("Successfully synced budget categories from %s", filePath)
	return len(categoryIDs), nil
}
