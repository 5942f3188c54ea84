// Package models defines the internal representation of transactions,
// budget categories and categorization rules.
package models

import "github.com/shopspring/decimal"

// MutationType represents the direction of a money flow. Amounts are always
// non-negative; the direction is carried here, never by the amount's sign.
type MutationType string

const (
	MutationDebit  MutationType = "debit"
	MutationCredit MutationType = "credit"
)

// RuleType discriminates how a rule's pattern is matched against a
// transaction. The rule engine dispatches on this with an exhaustive switch,
// so adding a type is a compile-visible change there.
type RuleType string

const (
	// RuleTypeIBAN matches by exact, case-sensitive counterparty IBAN equality.
	RuleTypeIBAN RuleType = "iban"
	// RuleTypeCounterpartyName matches by case-insensitive substring in the
	// counterparty name.
	RuleTypeCounterpartyName RuleType = "counterparty_name"
	// RuleTypeDescriptionContains matches by substring in the normalized
	// description.
	RuleTypeDescriptionContains RuleType = "description_contains"
)

// ValidRuleType reports whether s names a known rule type.
func ValidRuleType(s string) bool {
	switch RuleType(s) {
	case RuleTypeIBAN, RuleTypeCounterpartyName, RuleTypeDescriptionContains:
		return true
	}
	return false
}

// Category is a top-level budget grouping with a unique name.
type Category struct {
	ID   int64
	Name string
}

// Subcategory is the assignable budget bucket. Transactions and rules always
// reference a subcategory, never a category directly.
type Subcategory struct {
	ID         int64
	Name       string
	CategoryID int64
}

// CategoryWithSubcategories is the pre-joined tree returned by the store so
// callers never traverse relations lazily.
type CategoryWithSubcategories struct {
	Category
	Subcategories []Subcategory
}

// Rule is a user-authored pattern directive. Rules are evaluated in
// ascending priority order; ties keep insertion order.
type Rule struct {
	ID             int64
	Type           RuleType
	Pattern        string
	Priority       int
	ConfidenceBase decimal.Decimal
	SubcategoryID  int64
}

// DefaultRulePriority is assigned when a rule does not specify one.
// Lower numbers are evaluated first.
const DefaultRulePriority = 100
