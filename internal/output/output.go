// Package output renders materialized query results
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"frame/internal/database"
)

// Render writes the result in the named format: table, csv or json
func Render(w io.Writer, format string, r *database.Result) error {
	switch format {
	case "", "table":
		return Table(w, r)
	case "csv":
		return CSV(w, r)
	case "json":
		return JSON(w, r)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// Table prints an aligned text table followed by the row count
func Table(w io.Writer, r *database.Result) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(r.Columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = FormatValue(v)
		}
		table.Append(cells)
	}
	table.Render()

	noun := "rows"
	if r.Len() == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(w, "(%d %s)\n", r.Len(), noun)
	return err
}

// CSV writes a header line and one record per row
func CSV(w io.Writer, r *database.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(r.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range r.Rows {
		record := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				continue
			}
			record[i] = FormatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// JSON writes an indented array of objects, keys in column order
func JSON(w io.Writer, r *database.Result) error {
	objects := make([]orderedRow, len(r.Rows))
	for i, row := range r.Rows {
		objects[i] = orderedRow{columns: r.Columns, values: row}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(objects); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// orderedRow marshals as a JSON object without sorting its keys
type orderedRow struct {
	columns []string
	values  []interface{}
}

func (o orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range o.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := json.Marshal(o.values[i])
		if err != nil {
			// Fall back to the display form for values JSON cannot express
			val, _ = json.Marshal(FormatValue(o.values[i]))
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatValue renders a single cell for display
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}, map[string]interface{}:
		// Lists and structs read better as JSON than as Go syntax
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprint(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
