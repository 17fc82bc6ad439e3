package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"club-mailer/apperrors"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet data row. Keys lists the non-empty cells' column
// headers in sheet order.
type Row struct {
	Keys   []string
	Values map[string]string
}

// Get returns the cell under header, or "".
func (r Row) Get(header string) string {
	return r.Values[header]
}

// ParseSpreadsheet reads the first sheet of an xlsx workbook, or a csv file
// when name ends in .csv. The first line is the header row. Blank rows and
// blank cells are skipped. Date cells come back as raw serial numbers.
func ParseSpreadsheet(name string, r io.Reader) ([]Row, error) {
	var table [][]string
	var err error
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		table, err = readCSV(r)
	} else {
		table, err = readWorkbook(r)
	}
	if err != nil {
		return nil, apperrors.NewImportFormatError(err.Error())
	}
	return tableToRows(table), nil
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read csv: %w", err)
	}
	return rows, nil
}

func tableToRows(table [][]string) []Row {
	if len(table) == 0 {
		return nil
	}
	headers := make([]string, len(table[0]))
	for i, h := range table[0] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for _, line := range table[1:] {
		row := Row{Values: make(map[string]string)}
		for i, cell := range line {
			if i >= len(headers) || headers[i] == "" || cell == "" {
				continue
			}
			if _, dup := row.Values[headers[i]]; dup {
				continue
			}
			row.Keys = append(row.Keys, headers[i])
			row.Values[headers[i]] = cell
		}
		if len(row.Keys) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
