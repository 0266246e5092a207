// Package loader reads uploaded spreadsheets and timeline documents into the
// raw structures the analysis core consumes.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ErrUnsupportedFormat is returned for file extensions the loader cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format (supported: .csv, .xlsx)")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Supported reports whether filename has an extension Load can read.
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

// LoadFile reads a table from disk.
func LoadFile(path string) (models.RawTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawTable{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Load(filepath.Base(path), data)
}

// Load parses data according to the extension of filename.
func Load(filename string, data []byte) (models.RawTable, error) {
	var (
		records [][]string
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		records, err = readCSV(data)
	case ".xlsx":
		records, err = readXLSX(data)
	default:
		return models.RawTable{}, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
	if err != nil {
		return models.RawTable{}, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	table := buildTable(records)
	if table.Len() == 0 {
		return models.RawTable{}, &models.EmptyDataError{Artifact: filename}
	}

	logrus.Debugf("loader: %s has %d rows, columns %v", filename, table.Len(), table.Columns)
	return table, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var r io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		// Japanese Excel exports are usually Shift-JIS (CP932).
		logrus.Debug("loader: input is not UTF-8, decoding as Shift-JIS")
		r = transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader.ReadAll()
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// buildTable turns records into a RawTable using the first non-empty record as
// the header. Blank and duplicate header names are made unique.
func buildTable(records [][]string) models.RawTable {
	start := -1
	for i, rec := range records {
		if !blankRecord(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return models.RawTable{}
	}

	columns := headerNames(records[start])
	table := models.RawTable{Columns: columns}

	for _, rec := range records[start+1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = strings.TrimSpace(rec[i])
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table
}

func headerNames(header []string) []string {
	seen := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}
	return columns
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
