package dataset

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/station-linker/internal/model"
)

// NA marks enrichment fields of a unit with no confident registry match.
const NA = "NA"

// Output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// OutputRow is the flat serialized form of a LinkedRecord.
type OutputRow struct {
	UnitID                string `csv:"unit_id" json:"unit_id" yaml:"unit_id"`
	EnergyTotal           string `csv:"energy_total" json:"energy_total" yaml:"energy_total"`
	AveragePower          string `csv:"average_power" json:"average_power" yaml:"average_power"`
	FuelSource            string `csv:"fuel_source" json:"fuel_source" yaml:"fuel_source"`
	Region                string `csv:"region" json:"region" yaml:"region"`
	GenerationStationName string `csv:"generation_station_name" json:"generation_station_name" yaml:"generation_station_name"`
	RegistryStationName   string `csv:"registry_station_name" json:"registry_station_name" yaml:"registry_station_name"`
	InstalledCapacity     string `csv:"installed_capacity" json:"installed_capacity" yaml:"installed_capacity"`
	AccreditationDate     string `csv:"accreditation_date" json:"accreditation_date" yaml:"accreditation_date"`
	MatchScore            int    `csv:"match_score" json:"match_score" yaml:"match_score"`
}

// OutputColumns lists the output header in column order.
var OutputColumns = []string{
	"unit_id", "energy_total", "average_power", "fuel_source", "region",
	"generation_station_name", "registry_station_name", "installed_capacity",
	"accreditation_date", "match_score",
}

// ToOutputRow flattens a record, substituting NA for missing enrichment.
func ToOutputRow(r model.LinkedRecord) OutputRow {
	row := OutputRow{
		UnitID:                r.UnitID,
		EnergyTotal:           r.EnergyTotal.String(),
		AveragePower:          r.AveragePower.String(),
		FuelSource:            r.FuelSource,
		Region:                r.Region,
		GenerationStationName: r.GenerationStationName,
		RegistryStationName:   NA,
		InstalledCapacity:     NA,
		AccreditationDate:     NA,
	}
	if a := r.Accreditation; a != nil {
		row.RegistryStationName = a.StationName
		row.InstalledCapacity = a.InstalledCapacity.String()
		row.AccreditationDate = a.AccreditationDate
		row.MatchScore = r.Score
	}
	return row
}

// ToOutputRows flattens every record.
func ToOutputRows(records []model.LinkedRecord) []OutputRow {
	out := make([]OutputRow, len(records))
	for i, r := range records {
		out[i] = ToOutputRow(r)
	}
	return out
}

// WriteCSV writes records as comma-separated text with a header row.
func WriteCSV(w io.Writer, records []model.LinkedRecord) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(OutputRow{}); err != nil {
		return eris.Wrap(err, "dataset: encode csv header")
	}
	if len(records) > 0 {
		if err := enc.Encode(ToOutputRows(records)); err != nil {
			return eris.Wrap(err, "dataset: encode csv rows")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "dataset: flush csv")
	}
	return nil
}

// WriteJSON writes records as an indented JSON array. Valid numbers are
// emitted as JSON numbers, everything else as strings.
func WriteJSON(w io.Writer, records []model.LinkedRecord) error {
	type jsonRow struct {
		UnitID                string `json:"unit_id"`
		EnergyTotal           any    `json:"energy_total"`
		AveragePower          any    `json:"average_power"`
		FuelSource            string `json:"fuel_source"`
		Region                string `json:"region"`
		GenerationStationName string `json:"generation_station_name"`
		RegistryStationName   string `json:"registry_station_name"`
		InstalledCapacity     any    `json:"installed_capacity"`
		AccreditationDate     string `json:"accreditation_date"`
		MatchScore            int    `json:"match_score"`
	}

	rows := make([]jsonRow, len(records))
	for i, r := range records {
		flat := ToOutputRow(r)
		rows[i] = jsonRow{
			UnitID:                flat.UnitID,
			EnergyTotal:           numberValue(r.EnergyTotal),
			AveragePower:          numberValue(r.AveragePower),
			FuelSource:            flat.FuelSource,
			Region:                flat.Region,
			GenerationStationName: flat.GenerationStationName,
			RegistryStationName:   flat.RegistryStationName,
			InstalledCapacity:     flat.InstalledCapacity,
			AccreditationDate:     flat.AccreditationDate,
			MatchScore:            flat.MatchScore,
		}
		if r.Accreditation != nil {
			rows[i].InstalledCapacity = numberValue(r.Accreditation.InstalledCapacity)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return eris.Wrap(err, "dataset: encode json")
	}
	return nil
}

func numberValue(n model.Number) any {
	if n.Valid {
		return n.Value
	}
	return n.Raw
}

// WriteXLSX writes records to a single-sheet workbook.
func WriteXLSX(w io.Writer, records []model.LinkedRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("linked")
	if err != nil {
		return eris.Wrap(err, "dataset: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range OutputColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		flat := ToOutputRow(r)
		row := sheet.AddRow()
		row.AddCell().SetString(flat.UnitID)
		setNumberCell(row.AddCell(), r.EnergyTotal)
		setNumberCell(row.AddCell(), r.AveragePower)
		row.AddCell().SetString(flat.FuelSource)
		row.AddCell().SetString(flat.Region)
		row.AddCell().SetString(flat.GenerationStationName)
		row.AddCell().SetString(flat.RegistryStationName)
		if r.Accreditation != nil {
			setNumberCell(row.AddCell(), r.Accreditation.InstalledCapacity)
		} else {
			row.AddCell().SetString(NA)
		}
		row.AddCell().SetString(flat.AccreditationDate)
		row.AddCell().SetInt(flat.MatchScore)
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "dataset: write xlsx")
	}
	return nil
}

func setNumberCell(c *xlsx.Cell, n model.Number) {
	if n.Valid {
		c.SetFloat(n.Value)
		return
	}
	c.SetString(n.Raw)
}

// WriteFile writes records to path in the given format. An empty path or
// "-" writes to stdout.
func WriteFile(path, format string, records []model.LinkedRecord) error {
	write, err := writerFor(format)
	if err != nil {
		return err
	}

	if path == "" || path == "-" {
		return write(os.Stdout, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "dataset: create %s", path)
	}
	if err := write(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "dataset: close %s", path)
	}
	return nil
}

func writerFor(format string) (func(io.Writer, []model.LinkedRecord) error, error) {
	switch format {
	case "", FormatCSV:
		return WriteCSV, nil
	case FormatJSON:
		return WriteJSON, nil
	case FormatXLSX:
		return WriteXLSX, nil
	default:
		return nil, eris.Errorf("dataset: unknown output format %q", format)
	}
}
