package cmd

import (
	"io"
	"os"

	pretty "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cast"

	"github.com/s0up4200/surveyarr/filter"
	"github.com/s0up4200/surveyarr/table"
)

func newTableWriter(out io.Writer) pretty.Writer {
	t := pretty.NewWriter()
	t.SetStyle(pretty.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

// renderTable prints the given columns of t, or all of them when none are named
func renderTable(out io.Writer, t *table.Table, columns ...string) {
	if len(columns) == 0 {
		columns = t.Columns()
	}

	w := newTableWriter(out)
	header := make(pretty.Row, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	w.AppendHeader(header)

	for i := range t.Len() {
		row := make(pretty.Row, len(columns))
		for j, col := range columns {
			v, _ := t.Value(i, col)
			if !table.IsNull(v) {
				row[j] = cast.ToString(v)
			}
		}
		w.AppendRow(row)
	}
	w.AppendFooter(pretty.Row{"total", t.Len()})
	w.Render()
}

// applyFilter narrows t with a --filter argument, if one was given
func applyFilter(t *table.Table, arg string) (*table.Table, error) {
	if arg == "" {
		return t, nil
	}
	f, err := filters.Resolve(arg)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("filter", f.Expression()).Msg("Filtering listing")
	return filter.Apply(f, t), nil
}

// readCSVFile reads a contact file with a header row
func readCSVFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return table.ReadDelimited(f, table.ReadOptions{Comma: ','})
}

// writeCSVFile writes t to path
func writeCSVFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
