// Package importer provides the import adapters that translate bank and
// budget CSV exports into the internal data model. Row-level problems
// (validation failures, in-batch duplicates) are skipped and counted, never
// fatal; only a failed commit aborts an import.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"finanseer/internal/config"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Use the centralized logger from config package
var log = config.Logger

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// Field delimiter for input CSV files, configurable to match the bank export
var delimiter rune = ','

// SetDelimiter sets the field delimiter used when reading CSV input files.
func SetDelimiter(delim rune) {
	delimiter = delim
}

// ImportStats summarizes one import pass. Skipped counts rows dropped for
// validation failures, Duplicates counts rows whose identity hash was
// already seen in the same batch.
type ImportStats struct {
	Imported   int
	Skipped    int
	Duplicates int
}

// readCSVRows reads a CSV file into a slice of row structs using gocsv,
// decoding the file content with the given character encoding first.
func readCSVRows[TRow any](filePath string, enc encoding.Encoding) ([]TRow, error) {
	log.WithField("file", filePath).Info("Reading CSV file")

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var reader io.Reader = file
	if enc != nil {
		reader = transform.NewReader(file, enc.NewDecoder())
	}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter

	var rows []TRow
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	log.WithField("count", len(rows)).Info("Successfully read CSV data")
	return rows, nil
}

// cleanString trims surrounding whitespace and treats whitespace-only
// values as absent.
func cleanString(value string) string {
	return strings.TrimSpace(value)
}
