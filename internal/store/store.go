// Package store provides the durable record store backing imports,
// categorization and export. The interface is synchronous and returns fully
// materialized results; every mutating operation runs as one unit of work
// with a single commit and full rollback on failure.
package store

import (
	"finanseer/internal/config"
	"finanseer/internal/models"

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

// SortKey selects the ordering of uncategorized transaction listings.
type SortKey string

const (
	// SortByDate orders by transaction date, most recent first.
	SortByDate SortKey = "date"
	// SortByAmount orders by amount, largest first.
	SortByAmount SortKey = "amount"
)

// Assignment binds one transaction to one subcategory. Batches of
// assignments are always persisted atomically.
type Assignment struct {
	TransactionID string
	SubcategoryID int64
}

// RecordStore is the persistence contract consumed by the importer, the
// categorization service and the exporter.
type RecordStore interface {
	// UpsertTransactions inserts or updates transactions keyed by their
	// identity hash in a single unit of work. An existing categorization is
	// never overwritten by a re-import.
	UpsertTransactions(transactions []models.Transaction) error

	// FindUncategorized returns all transactions without a subcategory,
	// ordered by the given sort key.
	FindUncategorized(sort SortKey) ([]models.Transaction, error)

	// FindByText returns uncategorized transactions whose counterparty name
	// or raw description contains the pattern, case-insensitively, ordered
	// by date descending.
	FindByText(pattern string) ([]models.Transaction, error)

	// BulkSetSubcategory applies a batch of category assignments in one
	// unit of work and returns the number of rows updated. On failure the
	// whole batch is rolled back.
	BulkSetSubcategory(assignments []Assignment) (int64, error)

	// FindSubcategory returns the subcategory with its parent category
	// name, or nil when no such subcategory exists.
	FindSubcategory(id int64) (*models.SubcategoryInfo, error)

	// CategoriesWithSubcategories returns the full category tree, ordered
	// by category name then subcategory name.
	CategoriesWithSubcategories() ([]models.CategoryWithSubcategories, error)

	// EnsureCategory returns the ID of the named category, creating it if
	// necessary.
	EnsureCategory(name string) (int64, error)

	// EnsureSubcategory returns the ID of the named subcategory under the
	// given category, creating it if necessary.
	EnsureSubcategory(name string, categoryID int64) (int64, error)

	// AddRule persists a new categorization rule and returns its ID.
	AddRule(rule models.Rule) (int64, error)

	// RulesByPriority returns all rules ordered ascending by priority,
	// ties broken by insertion order.
	RulesByPriority() ([]models.Rule, error)

	// AllForExport returns every transaction with resolved category labels,
	// ordered by transaction date ascending.
	AllForExport() ([]models.CategorizedTransaction, error)

	// Close releases the underlying connection.
	Close() error
}
