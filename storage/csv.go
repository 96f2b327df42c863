package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CSVWriter writes rows of one shared table to a CSV file.
type CSVWriter struct {
	table  Table
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the table's header row. Intermediate directories are created automatically.
func NewCSVWriter(path string, table Table) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(table.ColumnNames()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{table: table, file: f, writer: w}, nil
}

// Write appends rows in schema order.
func (c *CSVWriter) Write(rows [][]any) error {
	for i, row := range rows {
		if len(row) != len(c.table.Columns) {
			return fmt.Errorf("csv: row %d has %d values, table %s has %d columns",
				i, len(row), c.table.Name, len(c.table.Columns))
		}
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = FormatValue(v)
		}
		if err := c.writer.Write(record); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// WriteTableCSV writes a complete table file in one call.
func WriteTableCSV(path string, table Table, rows [][]any) error {
	w, err := NewCSVWriter(path, table)
	if err != nil {
		return err
	}
	if err := w.Write(rows); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// ReadTableCSV reads a CSV file written for table. Columns are matched by
// header name and returned in schema order; extra columns are ignored and a
// missing schema column is an error.
func ReadTableCSV(path string, table Table) ([][]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f, table)
}

// ReadTable is ReadTableCSV over an arbitrary reader.
func ReadTable(r io.Reader, table Table) ([][]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: empty input, expected header for %s", table.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	positions := make([]int, len(table.Columns))
	var missing []string
	for i, col := range table.Columns {
		pos, ok := index[col.Name]
		if !ok {
			missing = append(missing, col.Name)
			continue
		}
		positions[i] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: %s is missing columns %s", table.Name, strings.Join(missing, ", "))
	}

	var rows [][]any
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}

		row := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			raw := ""
			if positions[i] < len(record) {
				raw = record[positions[i]]
			}
			v, err := ParseValue(col, raw)
			if err != nil {
				return nil, fmt.Errorf("csv: line %d: %w", line, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
