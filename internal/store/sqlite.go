package store

import (
	"database/sql"
	"fmt"
	"time"

	"finanseer/internal/models"
	"finanseer/internal/recorderror"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS subcategories (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	category_id INTEGER NOT NULL REFERENCES categories(id),
	UNIQUE(name, category_id)
);

CREATE TABLE IF NOT EXISTS transactions (
	id                TEXT PRIMARY KEY,
	account_id        TEXT NOT NULL,
	transaction_date  TEXT NOT NULL,
	amount            TEXT NOT NULL,
	currency          TEXT NOT NULL,
	counterparty_name TEXT,
	counterparty_iban TEXT,
	description_raw   TEXT,
	mutation_type     TEXT NOT NULL,
	bank_source       TEXT NOT NULL,
	subcategory_id    INTEGER REFERENCES subcategories(id)
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_iban ON transactions(counterparty_iban);

CREATE TABLE IF NOT EXISTS rules (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	type            TEXT NOT NULL,
	pattern         TEXT NOT NULL,
	priority        INTEGER NOT NULL DEFAULT 100,
	confidence_base TEXT NOT NULL DEFAULT '1.00',
	subcategory_id  INTEGER NOT NULL REFERENCES subcategories(id)
);
CREATE INDEX IF NOT EXISTS idx_rules_pattern ON rules(pattern);
`

// SQLiteStore is the RecordStore implementation over a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the SQLite database at path and
// ensures the schema exists. Safe to call on an existing database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	log.WithField("path", path).Debug("Opened SQLite record store")
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertTransactions inserts or updates the given transactions in a single
// unit of work. On conflict the importable fields are refreshed but an
// existing subcategory assignment is kept, so re-imports never undo
// categorization work.
func (s *SQLiteStore) UpsertTransactions(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &recorderror.PersistenceError{Op: "upsert transactions", Err: err}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO transactions
			(id, account_id, transaction_date, amount, currency,
			 counterparty_name, counterparty_iban, description_raw,
			 mutation_type, bank_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id = excluded.account_id,
			transaction_date = excluded.transaction_date,
			amount = excluded.amount,
			currency = excluded.currency,
			counterparty_name = excluded.counterparty_name,
			counterparty_iban = excluded.counterparty_iban,
			description_raw = excluded.description_raw,
			mutation_type = excluded.mutation_type,
			bank_source = excluded.bank_source`)
	if err != nil {
		_ = tx.Rollback()
		return &recorderror.PersistenceError{Op: "upsert transactions", Err: err}
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range transactions {
		_, err := stmt.Exec(
			t.ID,
			t.AccountID,
			t.Date.Format(models.DateLayout),
			t.Amount.StringFixed(2),
			t.Currency,
			nullString(t.CounterpartyName),
			nullString(t.CounterpartyIBAN),
			nullString(t.DescriptionRaw),
			string(t.MutationType),
			t.BankSource,
		)
		if err != nil {
			_ = tx.Rollback()
			return &recorderror.PersistenceError{Op: "upsert transactions", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return &recorderror.PersistenceError{Op: "upsert transactions", Err: err}
	}
	return nil
}

const transactionColumns = `id, account_id, transaction_date, amount, currency,
	counterparty_name, counterparty_iban, description_raw,
	mutation_type, bank_source, subcategory_id`

// FindUncategorized returns all transactions without a subcategory, ordered
// by the given sort key (date descending by default, amount descending for
// SortByAmount).
func (s *SQLiteStore) FindUncategorized(sort SortKey) ([]models.Transaction, error) {
	order := "transaction_date DESC"
	if sort == SortByAmount {
		order = "CAST(amount AS REAL) DESC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM transactions WHERE subcategory_id IS NULL ORDER BY %s",
		transactionColumns, order)

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying uncategorized transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// FindByText returns uncategorized transactions whose counterparty name or
// raw description contains the pattern, case-insensitively.
func (s *SQLiteStore) FindByText(pattern string) ([]models.Transaction, error) {
	like := "%" + pattern + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM transactions
		WHERE subcategory_id IS NULL
		  AND (counterparty_name LIKE ? OR description_raw LIKE ?)
		ORDER BY transaction_date DESC`, transactionColumns)

	rows, err := s.db.Query(query, like, like)
	if err != nil {
		return nil, fmt.Errorf("error searching transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTransactions(rows)
}

// BulkSetSubcategory applies a batch of category assignments in one unit of
// work. On any failure the whole batch is rolled back and a
// PersistenceError is returned.
func (s *SQLiteStore) BulkSetSubcategory(assignments []Assignment) (int64, error) {
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, &recorderror.PersistenceError{Op: "assign subcategory", Err: err}
	}

	stmt, err := tx.Prepare("UPDATE transactions SET subcategory_id = ? WHERE id = ?")
	if err != nil {
		_ = tx.Rollback()
		return 0, &recorderror.PersistenceError{Op: "assign subcategory", Err: err}
	}
	defer func() { _ = stmt.Close() }()

	var updated int64
	for _, a := range assignments {
		res, err := stmt.Exec(a.SubcategoryID, a.TransactionID)
		if err != nil {
			_ = tx.Rollback()
			return 0, &recorderror.PersistenceError{Op: "assign subcategory", Err: err}
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += n
		}
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return 0, &recorderror.PersistenceError{Op: "assign subcategory", Err: err}
	}
	return updated, nil
}

// FindSubcategory returns the subcategory with its parent category name, or
// nil when no such subcategory exists.
func (s *SQLiteStore) FindSubcategory(id int64) (*models.SubcategoryInfo, error) {
	row := s.db.QueryRow(`
		SELECT s.id, s.name, s.category_id, c.name
		FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		WHERE s.id = ?`, id)

	var info models.SubcategoryInfo
	err := row.Scan(&info.ID, &info.Name, &info.CategoryID, &info.CategoryName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying subcategory %d: %w", id, err)
	}
	return &info, nil
}

// CategoriesWithSubcategories returns the full category tree, ordered by
// category name then subcategory name.
func (s *SQLiteStore) CategoriesWithSubcategories() ([]models.CategoryWithSubcategories, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, s.id, s.name
		FROM categories c
		LEFT JOIN subcategories s ON s.category_id = c.id
		ORDER BY c.name, s.name`)
	if err != nil {
		return nil, fmt.Errorf("error querying categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []models.CategoryWithSubcategories
	byID := map[int64]int{}

	for rows.Next() {
		var catID int64
		var catName string
		var subID sql.NullInt64
		var subName sql.NullString
		if err := rows.Scan(&catID, &catName, &subID, &subName); err != nil {
			return nil, fmt.Errorf("error scanning category row: %w", err)
		}

		idx, seen := byID[catID]
		if !seen {
			result = append(result, models.CategoryWithSubcategories{
				Category: models.Category{ID: catID, Name: catName},
			})
			idx = len(result) - 1
			byID[catID] = idx
		}
		if subID.Valid {
			result[idx].Subcategories = append(result[idx].Subcategories, models.Subcategory{
				ID:         subID.Int64,
				Name:       subName.String,
				CategoryID: catID,
			})
		}
	}
	return result, rows.Err()
}

// EnsureCategory returns the ID of the named category, creating it if
// necessary.
func (s *SQLiteStore) EnsureCategory(name string) (int64, error) {
	var id int64
	err := s.db.QueryRow("SELECT id FROM categories WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("error querying category %q: %w", name, err)
	}

	res, err := s.db.Exec("INSERT INTO categories (name) VALUES (?)", name)
	if err != nil {
		return 0, &recorderror.PersistenceError{Op: "create category", Err: err}
	}
	return res.LastInsertId()
}

// EnsureSubcategory returns the ID of the named subcategory under the given
// category, creating it if necessary.
func (s *SQLiteStore) EnsureSubcategory(name string, categoryID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		"SELECT id FROM subcategories WHERE name = ? AND category_id = ?",
		name, categoryID).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("error querying subcategory %q: %w", name, err)
	}

	res, err := s.db.Exec(
		"INSERT INTO subcategories (name, category_id) VALUES (?, ?)",
		name, categoryID)
	if err != nil {
		return 0, &recorderror.PersistenceError{Op: "create subcategory", Err: err}
	}
	return res.LastInsertId()
}

// AddRule persists a new categorization rule and returns its ID.
func (s *SQLiteStore) AddRule(rule models.Rule) (int64, error) {
	confidence := rule.ConfidenceBase
	if confidence.IsZero() {
		confidence = decimal.NewFromInt(1)
	}

	res, err := s.db.Exec(`
		INSERT INTO rules (type, pattern, priority, confidence_base, subcategory_id)
		VALUES (?, ?, ?, ?, ?)`,
		string(rule.Type), rule.Pattern, rule.Priority,
		confidence.StringFixed(2), rule.SubcategoryID)
	if err != nil {
		return 0, &recorderror.PersistenceError{Op: "add rule", Err: err}
	}
	return res.LastInsertId()
}

// RulesByPriority returns all rules ordered ascending by priority, ties
// broken by insertion order.
func (s *SQLiteStore) RulesByPriority() ([]models.Rule, error) {
	rows, err := s.db.Query(`
		SELECT id, type, pattern, priority, confidence_base, subcategory_id
		FROM rules ORDER BY priority ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error querying rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []models.Rule
	for rows.Next() {
		var r models.Rule
		var ruleType, confidence string
		if err := rows.Scan(&r.ID, &ruleType, &r.Pattern, &r.Priority, &confidence, &r.SubcategoryID); err != nil {
			return nil, fmt.Errorf("error scanning rule row: %w", err)
		}
		r.Type = models.RuleType(ruleType)
		if dec, err := decimal.NewFromString(confidence); err == nil {
			r.ConfidenceBase = dec
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// AllForExport returns every transaction with resolved category labels,
// ordered by transaction date ascending.
func (s *SQLiteStore) AllForExport() ([]models.CategorizedTransaction, error) {
	query := fmt.Sprintf(`
		SELECT %s, c.name, s.name
		FROM transactions t
		LEFT JOIN subcategories s ON s.id = t.subcategory_id
		LEFT JOIN categories c ON c.id = s.category_id
		ORDER BY t.transaction_date ASC`, prefixedTransactionColumns("t"))

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying transactions for export: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []models.CategorizedTransaction
	for rows.Next() {
		var ct models.CategorizedTransaction
		var catName, subName sql.NullString
		t, err := scanTransactionWith(rows, &catName, &subName)
		if err != nil {
			return nil, err
		}
		ct.Transaction = t
		ct.CategoryName = catName.String
		ct.SubcategoryName = subName.String
		result = append(result, ct)
	}
	return result, rows.Err()
}

func prefixedTransactionColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.account_id, %[1]s.transaction_date, %[1]s.amount,
		%[1]s.currency, %[1]s.counterparty_name, %[1]s.counterparty_iban,
		%[1]s.description_raw, %[1]s.mutation_type, %[1]s.bank_source, %[1]s.subcategory_id`, alias)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransactionWith(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func scanTransactionWith(row rowScanner, extra ...any) (models.Transaction, error) {
	var t models.Transaction
	var dateStr, amountStr, mutation string
	var name, iban, desc sql.NullString
	var subID sql.NullInt64

	dest := []any{
		&t.ID, &t.AccountID, &dateStr, &amountStr, &t.Currency,
		&name, &iban, &desc, &mutation, &t.BankSource, &subID,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return t, fmt.Errorf("error scanning transaction row: %w", err)
	}

	date, err := time.Parse(models.DateLayout, dateStr)
	if err != nil {
		return t, fmt.Errorf("error parsing stored date %q: %w", dateStr, err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return t, fmt.Errorf("error parsing stored amount %q: %w", amountStr, err)
	}

	t.Date = date
	t.Amount = amount
	t.CounterpartyName = name.String
	t.CounterpartyIBAN = iban.String
	t.DescriptionRaw = desc.String
	t.MutationType = models.MutationType(mutation)
	if subID.Valid {
		v := subID.Int64
		t.SubcategoryID = &v
	}
	return t, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
