// Package dateutils provides common date parsing used by the import
// adapters.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Common date format constants used throughout the application
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutEuropean = "02-01-2006"
	DateLayoutCompact  = "20060102"
)

// CommonFormats is a list of formats to try when parsing bank export dates.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutEuropean,
	DateLayoutCompact,
	"02/01/2006",
	"2006/01/02",
}

// ParseDate attempts to parse a date string using the common bank export
// formats, returning the parsed time and the layout that matched.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = strings.TrimSpace(dateStr)

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, format, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}
