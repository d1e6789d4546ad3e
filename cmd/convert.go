package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/station-linker/internal/config"
	"github.com/sells-group/station-linker/internal/convert"
	"github.com/sells-group/station-linker/internal/fetcher"
)

var (
	convertInput     string
	convertOutput    string
	convertDelimiter string
	convertDateField string
	convertISOField  string
	convertYearField string
	convertToCSV     bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a delimited table to a JSON array for charting",
	Long: `Converts a delimited table (tab-separated by default) into a JSON array of
objects in column order. Values that parse as numbers become JSON numbers.

With --date-field, the named D/M/YYYY column is also reparsed into an ISO-8601
date and a year column. With --to-csv, a JSON array is converted back.

Examples:
  station-linker convert --input top10.tsv --output top10.json

  station-linker convert --input linked.csv --delimiter , \
    --date-field Accreditation_Start_Date --output chart.json

  station-linker convert --to-csv --input chart.json --output chart.tsv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("delimiter") {
			cfg.Convert.Delimiter = convertDelimiter
		}
		if err := cfg.Validate("convert"); err != nil {
			return err
		}
		delim := config.Delimiter(cfg.Convert.Delimiter, convert.DefaultDelimiter)

		if convertToCSV {
			return runFromJSON(cmd.Context(), convertInput, convertOutput, delim)
		}
		return runToJSON(cmd.Context(), cfg, convertInput, convertOutput, delim, convert.Options{
			DateField:  convertDateField,
			DateLayout: cfg.Convert.DateLayout,
			ISOField:   convertISOField,
			YearField:  convertYearField,
		})
	},
}

func runToJSON(ctx context.Context, c *config.Config, in, out string, delim rune, opts convert.Options) error {
	tbl, err := fetcher.NewOpener(newHTTPFetcher(c)).ReadTable(ctx, in, fetcher.TableOptions{
		Delimiter: delim,
		Encodings: c.Input.Encodings,
	})
	if err != nil {
		return eris.Wrap(err, "convert: read input")
	}

	records := convert.ToRecords(tbl.Rows, opts)
	if err := writeTo(out, func(w io.Writer) error { return convert.WriteJSON(w, records) }); err != nil {
		return err
	}

	zap.L().Info("convert: wrote json",
		zap.String("input", in),
		zap.String("output", out),
		zap.String("encoding", tbl.Encoding),
		zap.Int("records", len(records)),
	)
	return nil
}

func runFromJSON(ctx context.Context, in, out string, delim rune) error {
	f, err := os.Open(in)
	if err != nil {
		return eris.Wrapf(err, "convert: open %s", in)
	}
	defer f.Close() //nolint:errcheck

	records, err := convert.ReadJSON(ctx, f)
	if err != nil {
		return eris.Wrapf(err, "convert: decode %s", in)
	}
	if err := writeTo(out, func(w io.Writer) error { return convert.WriteTable(w, records, delim) }); err != nil {
		return err
	}

	zap.L().Info("convert: wrote table",
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("records", len(records)),
	)
	return nil
}

// writeTo runs write against path, or stdout when path is empty or "-".
func writeTo(path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "convert: create %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "convert: close %s", path)
	}
	return nil
}

func init() {
	convertCmd.Flags().StringVar(&convertInput, "input", "", "input table or JSON file (required)")
	convertCmd.Flags().StringVar(&convertOutput, "output", "-", "output file, - for stdout")
	convertCmd.Flags().StringVar(&convertDelimiter, "delimiter", "\t", "column delimiter (default from config)")
	convertCmd.Flags().StringVar(&convertDateField, "date-field", "", "D/M/YYYY column to reparse into ISO date and year")
	convertCmd.Flags().StringVar(&convertISOField, "iso-field", convert.DefaultISOField, "name of the added ISO date column")
	convertCmd.Flags().StringVar(&convertYearField, "year-field", convert.DefaultYearField, "name of the added year column")
	convertCmd.Flags().BoolVar(&convertToCSV, "to-csv", false, "convert a JSON array back to a delimited table")
	_ = convertCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(convertCmd)
}
