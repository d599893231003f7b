package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Record is one labeled transcript
type Record struct {
	Row    int
	Text   string
	IsScam bool
}

// ErrMissingColumns is returned when the header has no text or label column
var ErrMissingColumns = errors.New("dataset needs a TEXT and a CATEGORY column")

// Load reads labeled transcripts from a .csv or .xlsx file. Rows with an
// empty transcript or an unknown label are skipped.
func Load(path string) ([]Record, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return parseRows(rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]Record, error) {
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	textIdx, labelIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "text", "transcript":
			if textIdx == -1 {
				textIdx = i
			}
		case "category", "label":
			if labelIdx == -1 {
				labelIdx = i
			}
		}
	}
	if textIdx == -1 || labelIdx == -1 {
		return nil, ErrMissingColumns
	}

	var out []Record
	for i, r := range rows[1:] {
		if textIdx >= len(r) || labelIdx >= len(r) {
			continue
		}
		text := strings.TrimSpace(r[textIdx])
		if text == "" {
			continue
		}
		isScam, ok := ParseLabel(r[labelIdx])
		if !ok {
			continue
		}
		out = append(out, Record{Row: i + 2, Text: text, IsScam: isScam})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no labeled rows")
	}
	return out, nil
}

// ParseLabel maps a CATEGORY cell to a scam flag
func ParseLabel(value string) (isScam bool, ok bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "1.0", "true", "yes", "scam", "fraud", "spam":
		return true, true
	case "0", "0.0", "false", "no", "legit", "legitimate", "normal", "ham":
		return false, true
	default:
		return false, false
	}
}
