package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], utf8BOM)
	}
	return records, nil
}

// readXLSX streams the rows of one worksheet. Cells are read raw so that
// date cells arrive as spreadsheet serials instead of locale formatted text.
func readXLSX(r io.Reader, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx has no worksheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("open worksheet %q: %w", sheetName, err)
	}
	defer func() { _ = rows.Close() }()

	var records [][]string
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read worksheet %q: %w", sheetName, err)
		}
		records = append(records, cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheetName, err)
	}
	return records, nil
}
