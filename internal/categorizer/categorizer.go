// Package categorizer implements the categorization service: listing and
// searching uncategorized transactions, manual and bulk assignment, and the
// rule engine for automated categorization. All assignment paths funnel
// through the store's single batched assignment primitive, so every
// categorization is one atomic unit of work.
package categorizer

import (
	"finanseer/internal/config"
	"finanseer/internal/models"
	"finanseer/internal/recorderror"
	"finanseer/internal/store"

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

// Service coordinates categorization operations against an injected record
// store. The store handle is scoped per logical operation by the caller;
// Service itself holds no other state.
type Service struct {
	store store.RecordStore
}

// NewService creates a categorization service over the given store.
func NewService(s store.RecordStore) *Service {
	return &Service{store: s}
}

// Uncategorized returns all transactions without a subcategory, ordered by
// the given sort key.
func (s *Service) Uncategorized(sort store.SortKey) ([]models.Transaction, error) {
	log.WithField("sort", sort).Info("Fetching uncategorized transactions")

	transactions, err := s.store.FindUncategorized(sort)
	if err != nil {
		return nil, err
	}

	log.WithField("count", len(transactions)).Info("Found uncategorized transactions")
	return transactions, nil
}

// FindByText returns uncategorized transactions whose counterparty name or
// raw description contains the pattern, case-insensitively.
func (s *Service) FindByText(pattern string) ([]models.Transaction, error) {
	log.WithField("pattern", pattern).Info("Searching uncategorized transactions")

	transactions, err := s.store.FindByText(pattern)
	if err != nil {
		return nil, err
	}

	log.WithField("count", len(transactions)).Info("Found matching transactions")
	return transactions, nil
}

// Categories returns the full category tree, pre-joined by the store.
func (s *Service) Categories() ([]models.CategoryWithSubcategories, error) {
	categories, err := s.store.CategoriesWithSubcategories()
	if err != nil {
		return nil, err
	}

	log.WithField("count", len(categories)).Debug("Fetched categories")
	return categories, nil
}

// AssignCategory assigns a subcategory to a batch of transactions. The
// target subcategory is validated first; a missing target aborts the whole
// batch with a ReferenceError and no mutation. The batch is persisted as a
// single unit of work.
func (s *Service) AssignCategory(transactionIDs []string, subcategoryID int64) error {
	info, err := s.store.FindSubcategory(subcategoryID)
	if err != nil {
		return err
	}
	if info == nil {
		return &recorderror.ReferenceError{Entity: "subcategory", ID: subcategoryID}
	}

	log.WithFields(logrus.Fields{
		"category": info.Label(),
		"count":    len(transactionIDs),
	}).Info("Assigning category to transactions")

	assignments := make([]store.Assignment, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		assignments = append(assignments, store.Assignment{
			TransactionID: id,
			SubcategoryID: subcategoryID,
		})
	}

	updated, err := s.store.BulkSetSubcategory(assignments)
	if err != nil {
		log.WithError(err).Error("Failed to update transactions")
		return err
	}

	log.WithField("updated", updated).Info("Successfully updated transactions")
	return nil
}

// AddRule validates and persists a new categorization rule. A missing
// target subcategory aborts with a ReferenceError. The priority is stored
// as given; zero is a valid (highest) priority, callers that want the
// default pass models.DefaultRulePriority themselves.
func (s *Service) AddRule(rule models.Rule) (int64, error) {
	info, err := s.store.FindSubcategory(rule.SubcategoryID)
	if err != nil {
		return 0, err
	}
	if info == nil {
		return 0, &recorderror.ReferenceError{Entity: "subcategory", ID: rule.SubcategoryID}
	}

	id, err := s.store.AddRule(rule)
	if err != nil {
		return 0, err
	}

	log.WithFields(logrus.Fields{
		"rule_id":  id,
		"type":     rule.Type,
		"pattern":  rule.Pattern,
		"priority": rule.Priority,
		"category": info.Label(),
	}).Info("Added categorization rule")
	return id, nil
}
