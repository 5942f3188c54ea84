package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 layout used for transaction dates, both in
// storage and in the identity hash.
const DateLayout = "2006-01-02"

// Transaction is the uniform internal representation of a bank transaction.
// Once imported it is immutable except for SubcategoryID, which is nil until
// the transaction is categorized.
type Transaction struct {
	ID               string
	AccountID        string
	Date             time.Time
	Amount           decimal.Decimal
	Currency         string
	CounterpartyName string
	CounterpartyIBAN string
	DescriptionRaw   string
	MutationType     MutationType
	BankSource       string
	SubcategoryID    *int64
}

// IsCategorized reports whether a subcategory has been assigned.
func (t Transaction) IsCategorized() bool {
	return t.SubcategoryID != nil
}

// IsDebit reports whether money flowed out of the account.
func (t Transaction) IsDebit() bool {
	return t.MutationType == MutationDebit
}

// GenerateID derives the deduplication key for a transaction. The digest is
// a SHA-256 over the ISO date, the amount quantized to two decimals, the
// counterparty identity (IBAN preferred over name) and the description, each
// trimmed of surrounding whitespace and concatenated without separators.
// Identical logical inputs always produce the identical digest, so the ID
// doubles as the primary key for idempotent re-imports.
func GenerateID(date time.Time, amount decimal.Decimal, counterpartyIBAN, counterpartyName, description string) string {
	counterparty := strings.TrimSpace(counterpartyIBAN)
	if counterparty == "" {
		counterparty = strings.TrimSpace(counterpartyName)
	}

	var b strings.Builder
	b.WriteString(date.Format(DateLayout))
	b.WriteString(amount.StringFixed(2))
	b.WriteString(counterparty)
	b.WriteString(strings.TrimSpace(description))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
