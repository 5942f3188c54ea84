package models

// CategorizedTransaction pairs a transaction with its resolved category
// labels for export. Both labels are empty when the transaction is
// uncategorized.
type CategorizedTransaction struct {
	Transaction
	CategoryName    string
	SubcategoryName string
}

// CategoryLabel renders the export label in "Category: Subcategory" form,
// or the empty string for uncategorized transactions.
func (c CategorizedTransaction) CategoryLabel() string {
	if c.CategoryName == "" || c.SubcategoryName == "" {
		return ""
	}
	return c.CategoryName + ": " + c.SubcategoryName
}

// SubcategoryInfo is a subcategory together with its parent category name,
// returned pre-joined by the store.
type SubcategoryInfo struct {
	Subcategory
	CategoryName string
}

// Label renders the subcategory in "Category: Subcategory" form.
func (s SubcategoryInfo) Label() string {
	return s.CategoryName + ": " + s.Name
}
