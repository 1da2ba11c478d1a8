package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/DrewBradfordXYZ/logo-objects-go/client"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// Columns listed first when present.
var leadingColumns = []string{"INTERNAL_REFERENCE", "CODE", "NUMBER", "FICHENO", "DATE_"}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func (a *app) printRecords(cmd *cobra.Command, records []client.Record, fields []string) error {
	w := cmd.OutOrStdout()
	if a.json() {
		if records == nil {
			records = []client.Record{}
		}
		return writeJSON(w, records)
	}
	if len(records) == 0 {
		fmt.Fprintln(w, color.New(color.Faint).Sprint("no records"))
		return nil
	}

	columns := fields
	if len(columns) == 0 {
		columns = recordColumns(records)
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = formatValue(rec[col])
		}
		rows[i] = row
	}
	writeTable(w, columns, rows)
	return nil
}

func (a *app) printCount(cmd *cobra.Command, page *client.Page[client.Record]) {
	if a.json() || page.Count == nil {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), color.New(color.FgCyan).Sprintf("%d of %d records", len(page.Items), *page.Count))
}

// recordColumns returns the union of the records' keys: well-known
// identifying columns first, then the rest sorted.
func recordColumns(records []client.Record) []string {
	seen := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			seen[k] = true
		}
	}

	var columns []string
	for _, k := range leadingColumns {
		if seen[k] {
			columns = append(columns, k)
			delete(seen, k)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(columns, rest...)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
