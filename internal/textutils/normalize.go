// Package textutils provides the description normalization pipeline used for
// fuzzy rule matching. Normalization is pure and idempotent: running it on
// its own output returns the same string.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords is the fixed vocabulary of Dutch banking boilerplate removed
// during normalization: institution names, payment-rail terms and generic
// banking vocabulary that carries no signal for categorization.
var stopwords = map[string]struct{}{
	"abn": {}, "amro": {}, "ing": {}, "rabo": {}, "rabobank": {}, "knab": {}, "bunq": {},
	"betaling": {}, "betaalautomaat": {}, "sepa": {}, "ideal": {}, "europe": {}, "bv": {},
	"via": {}, "trn": {}, "iban": {}, "bic": {}, "pasnr": {}, "datum": {}, "tijd": {}, "kenmerk": {},
	"omschrijving": {}, "machtigingskenmerk": {}, "incassant": {}, "id": {}, "eo": {}, "en": {},
	"rabomobiel": {}, "internetbankieren": {}, "mobiel": {}, "bankieren": {},
	"overboeking": {}, "rekening": {}, "naar": {}, "van": {}, "bij": {},
	"stichting": {}, "payments": {}, "online": {}, "payment": {},
}

// asciiFold decomposes characters and strips combining marks, so "é" folds
// to "e" before the ASCII filter runs.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a raw bank description into a matchable token
// stream. The pipeline lowercases, strips diacritics, replaces every
// character outside [a-z0-9 ] with a space, drops banking stopwords and
// collapses the remaining tokens to single spaces. Empty input, or input
// consisting only of stopwords, yields the empty string.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := strings.ToLower(raw)
	if folded, _, err := transform.String(asciiFold, text); err == nil {
		text = folded
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	kept := tokens[:0]
	for _, token := range tokens {
		if _, skip := stopwords[token]; !skip {
			kept = append(kept, token)
		}
	}

	return strings.Join(kept, " ")
}
