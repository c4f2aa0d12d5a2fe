package table

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cast"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var (
	// ErrNoHeader is returned when delimited input has no header row.
	ErrNoHeader = errors.New("delimited input has no header row")
	// ErrTooManyFields is returned when a row is wider than the header.
	ErrTooManyFields = errors.New("row has more fields than the header")
)

// ReadOptions controls how delimited text is decoded.
type ReadOptions struct {
	// Comma is the field delimiter. Defaults to ','.
	Comma rune
	// SkipRows is the number of rows directly after the header to discard.
	SkipRows int
}

// ReadDelimited decodes delimited text whose first row holds the column
// names. Empty cells become nil and short rows are padded with nil; a row
// wider than the header or a malformed quote fails the whole read. A leading
// UTF-8 byte order mark is ignored.
func ReadDelimited(r io.Reader, opts ReadOptions) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	t := New(header...)
	skipped := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if skipped < opts.SkipRows {
			skipped++
			continue
		}

		if len(record) > len(t.columns) {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d: %w", line, len(t.columns), len(record), ErrTooManyFields)
		}

		row := make([]any, len(t.columns))
		for i, field := range record {
			if field != "" {
				row[i] = field
			}
		}
		t.rows = append(t.rows, row)
	}

	return t, nil
}

// WriteCSV encodes the table as comma-separated text with a header row.
// Nil values are written as empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(t.columns))
	for i, row := range t.rows {
		for j, v := range row {
			if IsNull(v) {
				record[j] = ""
				continue
			}
			s, err := cast.ToStringE(v)
			if err != nil {
				return fmt.Errorf("row %d column %q: %w", i, t.columns[j], err)
			}
			record[j] = s
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
