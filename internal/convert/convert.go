package convert

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/station-linker/internal/fetcher"
	"github.com/sells-group/station-linker/internal/model"
)

// Defaults for the date-reparsing variant.
const (
	DefaultDelimiter  = '\t'
	DefaultDateLayout = "2/1/2006"
	DefaultISOField   = "Accreditation_Date_ISO"
	DefaultYearField  = "Accreditation_Year"
)

// Options configures ToRecords. When DateField is empty no date columns are
// added.
type Options struct {
	DateField  string
	DateLayout string
	ISOField   string
	YearField  string
}

func (o Options) withDefaults() Options {
	if o.DateLayout == "" {
		o.DateLayout = DefaultDateLayout
	}
	if o.ISOField == "" {
		o.ISOField = DefaultISOField
	}
	if o.YearField == "" {
		o.YearField = DefaultYearField
	}
	return o
}

// ToRecords converts table rows to records. The first row supplies the keys.
// Every value that parses as a finite float becomes a number; the rest stay
// text. Cells missing from short rows become null and cells beyond the
// header are dropped.
func ToRecords(rows [][]string, opts Options) []Record {
	if len(rows) == 0 {
		return nil
	}
	opts = opts.withDefaults()
	header := rows[0]

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, 0, len(header)+2)
		for i, key := range header {
			if i >= len(row) {
				rec.Set(key, nil)
				continue
			}
			if opts.DateField != "" && key == opts.DateField {
				rec.Set(key, row[i])
				continue
			}
			rec.Set(key, coerce(row[i]))
		}
		if opts.DateField != "" {
			addDate(&rec, opts)
		}
		out = append(out, rec)
	}
	return out
}

func coerce(s string) any {
	if n := model.ParseNumber(s); n.Valid {
		return n.Value
	}
	return s
}

// addDate reparses the date field into ISO and year columns, both null
// when the value does not match the layout.
func addDate(rec *Record, opts Options) {
	var iso, year any
	if v, ok := rec.Get(opts.DateField); ok {
		if s, ok := v.(string); ok {
			if t, err := time.Parse(opts.DateLayout, s); err == nil {
				iso = t.Format(time.DateOnly)
				year = t.Year()
			}
		}
	}
	rec.Set(opts.ISOField, iso)
	rec.Set(opts.YearField, year)
}

// WriteJSON writes records as an indented JSON array.
func WriteJSON(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return eris.Wrap(err, "convert: encode json")
	}
	return nil
}

// ReadJSON decodes a JSON array of objects.
func ReadJSON(ctx context.Context, r io.Reader) ([]Record, error) {
	records, err := fetcher.ReadJSONArray[Record](ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "convert: read json")
	}
	return records, nil
}

// Header returns the union of record keys in first-seen order.
func Header(records []Record) []string {
	seen := make(map[string]bool)
	var header []string
	for _, rec := range records {
		for _, f := range rec {
			if !seen[f.Key] {
				seen[f.Key] = true
				header = append(header, f.Key)
			}
		}
	}
	return header
}

// WriteTable writes records as delimited text with a header row. Numbers use
// the shortest representation that round-trips; null and missing keys
// become empty cells.
func WriteTable(w io.Writer, records []Record, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}

	header := Header(records)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "convert: write header")
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, key := range header {
			v, _ := rec.Get(key)
			row[i] = format(v)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "convert: write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "convert: flush")
	}
	return nil
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return model.FormatFloat(x)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case json.RawMessage:
		return string(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
