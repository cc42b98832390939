package stops

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bbernstein/parentstops/internal/models"
)

// ErrMissingColumn is returned when the header lacks a column the enrichment needs
var ErrMissingColumn = errors.New("missing required column")

// RequiredColumns must be present in every stop table
var RequiredColumns = []string{
	models.ColumnStopID,
	models.ColumnStopName,
	models.ColumnStopLat,
	models.ColumnStopLon,
}

// ReadTable parses a comma separated stop table with a header row. Columns
// we do not model are kept on each record so they survive a rewrite.
func ReadTable(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := &models.Table{Columns: header}
	for _, col := range RequiredColumns {
		if !table.HasColumn(col) {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	for line := 2; ; line++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		var record models.StopRecord
		for i, col := range header {
			if i < len(fields) {
				record.SetField(col, fields[i])
			}
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}

// WriteTable writes the table with its header in column order. Missing
// values are written as empty strings.
func WriteTable(w io.Writer, table *models.Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	fields := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			fields[i] = row.Field(col)
		}
		if err := writer.Write(fields); err != nil {
			return fmt.Errorf("writing stop %s: %w", row.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
