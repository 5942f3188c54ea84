package store

import (
	"errors"
	"sort"
	"strings"

	"finanseer/internal/models"
	"finanseer/internal/recorderror"
)

// MockStore is an in-memory RecordStore used in tests. It mirrors the
// SQLite implementation's contract, including atomic batch assignment.
type MockStore struct {
	Transactions  map[string]*models.Transaction
	Categories    map[int64]*models.Category
	Subcategories map[int64]*models.Subcategory
	Rules         []models.Rule

	nextCategoryID    int64
	nextSubcategoryID int64
	nextRuleID        int64

	// FailCommits makes every mutating call fail with a PersistenceError,
	// leaving the store untouched, to exercise rollback paths.
	FailCommits bool
}

// NewMockStore creates an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		Transactions:  make(map[string]*models.Transaction),
		Categories:    make(map[int64]*models.Category),
		Subcategories: make(map[int64]*models.Subcategory),
	}
}

// Close implements RecordStore.
func (m *MockStore) Close() error { return nil }

// UpsertTransactions implements RecordStore.
func (m *MockStore) UpsertTransactions(transactions []models.Transaction) error {
	if m.FailCommits {
		return &recorderror.PersistenceError{Op: "upsert transactions", Err: errors.New("mock commit failure")}
	}
	for _, t := range transactions {
		t := t
		if existing, ok := m.Transactions[t.ID]; ok {
			// Keep the categorization, refresh everything else.
			t.SubcategoryID = existing.SubcategoryID
		}
		m.Transactions[t.ID] = &t
	}
	return nil
}

// FindUncategorized implements RecordStore.
func (m *MockStore) FindUncategorized(key SortKey) ([]models.Transaction, error) {
	var result []models.Transaction
	for _, t := range m.Transactions {
		if t.SubcategoryID == nil {
			result = append(result, *t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if key == SortByAmount {
			return result[i].Amount.GreaterThan(result[j].Amount)
		}
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// FindByText implements RecordStore.
func (m *MockStore) FindByText(pattern string) ([]models.Transaction, error) {
	needle := strings.ToLower(pattern)
	var result []models.Transaction
	for _, t := range m.Transactions {
		if t.SubcategoryID != nil {
			continue
		}
		if strings.Contains(strings.ToLower(t.CounterpartyName), needle) ||
			strings.Contains(strings.ToLower(t.DescriptionRaw), needle) {
			result = append(result, *t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

// BulkSetSubcategory implements RecordStore.
func (m *MockStore) BulkSetSubcategory(assignments []Assignment) (int64, error) {
	if m.FailCommits {
		return 0, &recorderror.PersistenceError{Op: "assign subcategory", Err: errors.New("mock commit failure")}
	}
	var updated int64
	for _, a := range assignments {
		if t, ok := m.Transactions[a.TransactionID]; ok {
			id := a.SubcategoryID
			t.SubcategoryID = &id
			updated++
		}
	}
	return updated, nil
}

// FindSubcategory implements RecordStore.
func (m *MockStore) FindSubcategory(id int64) (*models.SubcategoryInfo, error) {
	sub, ok := m.Subcategories[id]
	if !ok {
		return nil, nil
	}
	info := models.SubcategoryInfo{Subcategory: *sub}
	if cat, ok := m.Categories[sub.CategoryID]; ok {
		info.CategoryName = cat.Name
	}
	return &info, nil
}

// CategoriesWithSubcategories implements RecordStore.
func (m *MockStore) CategoriesWithSubcategories() ([]models.CategoryWithSubcategories, error) {
	var result []models.CategoryWithSubcategories
	for _, cat := range m.Categories {
		node := models.CategoryWithSubcategories{Category: *cat}
		for _, sub := range m.Subcategories {
			if sub.CategoryID == cat.ID {
				node.Subcategories = append(node.Subcategories, *sub)
			}
		}
		sort.Slice(node.Subcategories, func(i, j int) bool {
			return node.Subcategories[i].Name < node.Subcategories[j].Name
		})
		result = append(result, node)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// EnsureCategory implements RecordStore.
func (m *MockStore) EnsureCategory(name string) (int64, error) {
	for _, cat := range m.Categories {
		if cat.Name == name {
			return cat.ID, nil
		}
	}
	if m.FailCommits {
		return 0, &recorderror.PersistenceError{Op: "create category", Err: errors.New("mock commit failure")}
	}
	m.nextCategoryID++
	m.Categories[m.nextCategoryID] = &models.Category{ID: m.nextCategoryID, Name: name}
	return m.nextCategoryID, nil
}

// EnsureSubcategory implements RecordStore.
func (m *MockStore) EnsureSubcategory(name string, categoryID int64) (int64, error) {
	for _, sub := range m.Subcategories {
		if sub.Name == name && sub.CategoryID == categoryID {
			return sub.ID, nil
		}
	}
	if m.FailCommits {
		return 0, &recorderror.PersistenceError{Op: "create subcategory", Err: errors.New("mock commit failure")}
	}
	m.nextSubcategoryID++
	m.Subcategories[m.nextSubcategoryID] = &models.Subcategory{
		ID:         m.nextSubcategoryID,
		Name:       name,
		CategoryID: categoryID,
	}
	return m.nextSubcategoryID, nil
}

// AddRule implements RecordStore.
func (m *MockStore) AddRule(rule models.Rule) (int64, error) {
	if m.FailCommits {
		return 0, &recorderror.PersistenceError{Op: "add rule", Err: errors.New("mock commit failure")}
	}
	m.nextRuleID++
	rule.ID = m.nextRuleID
	m.Rules = append(m.Rules, rule)
	return rule.ID, nil
}

// RulesByPriority implements RecordStore.
func (m *MockStore) RulesByPriority() ([]models.Rule, error) {
	rules := make([]models.Rule, len(m.Rules))
	copy(rules, m.Rules)
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})
	return rules, nil
}

// AllForExport implements RecordStore.
func (m *MockStore) AllForExport() ([]models.CategorizedTransaction, error) {
	var result []models.CategorizedTransaction
	for _, t := range m.Transactions {
		ct := models.CategorizedTransaction{Transaction: *t}
		if t.SubcategoryID != nil {
			if sub, ok := m.Subcategories[*t.SubcategoryID]; ok {
				ct.SubcategoryName = sub.Name
				if cat, ok := m.Categories[sub.CategoryID]; ok {
					ct.CategoryName = cat.Name
				}
			}
		}
		result = append(result, ct)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}
