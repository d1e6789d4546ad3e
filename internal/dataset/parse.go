// Package dataset binds the generation, mapping and registry tables to
// model records and writes the linked record set back out.
package dataset

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/station-linker/internal/model"
)

// Column layouts, bound by position. Header names in the source files are
// ignored.
const (
	generationColumns = 3 // unit_id, energy_total, average_power
	mappingColumns    = 4 // unit_id, fuel_source, region_code_raw, station_name
	registryColumns   = 3 // station_name_raw, installed_capacity, accreditation_date
)

// ParseGeneration binds generation-output rows. The first row is the header.
func ParseGeneration(rows [][]string) ([]model.GenerationRecord, error) {
	body, err := dataRows(rows, generationColumns, "generation")
	if err != nil {
		return nil, err
	}
	out := make([]model.GenerationRecord, 0, len(body))
	for _, r := range body {
		out = append(out, model.GenerationRecord{
			UnitID:       strings.TrimSpace(getCol(r, 0)),
			EnergyTotal:  model.ParseNumber(getCol(r, 1)),
			AveragePower: model.ParseNumber(getCol(r, 2)),
		})
	}
	return out, nil
}

// ParseMapping binds unit-to-station mapping rows. The first row is the
// header.
func ParseMapping(rows [][]string) ([]model.MappingRecord, error) {
	body, err := dataRows(rows, mappingColumns, "mapping")
	if err != nil {
		return nil, err
	}
	out := make([]model.MappingRecord, 0, len(body))
	for _, r := range body {
		out = append(out, model.MappingRecord{
			UnitID:        strings.TrimSpace(getCol(r, 0)),
			FuelSource:    strings.TrimSpace(getCol(r, 1)),
			RegionCodeRaw: getCol(r, 2),
			StationName:   getCol(r, 3),
		})
	}
	return out, nil
}

// ParseRegistry binds accreditation registry rows. The first row is the
// header. Base name and region are left for the blocking index to derive.
func ParseRegistry(rows [][]string) ([]model.RegistryRecord, error) {
	body, err := dataRows(rows, registryColumns, "registry")
	if err != nil {
		return nil, err
	}
	out := make([]model.RegistryRecord, 0, len(body))
	for _, r := range body {
		out = append(out, model.RegistryRecord{
			StationNameRaw:    getCol(r, 0),
			InstalledCapacity: model.ParseNumber(getCol(r, 1)),
			AccreditationDate: strings.TrimSpace(getCol(r, 2)),
		})
	}
	return out, nil
}

// dataRows checks the header width and returns the non-blank rows after it.
func dataRows(rows [][]string, want int, table string) ([][]string, error) {
	if len(rows) == 0 {
		return nil, eris.Errorf("dataset: %s table is empty", table)
	}
	if got := len(rows[0]); got < want {
		return nil, eris.Errorf("dataset: %s table has %d columns, want %d", table, got, want)
	}

	body := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if blankRow(r) {
			continue
		}
		body = append(body, r)
	}
	return body, nil
}

// getCol safely retrieves a positional column value from a row.
func getCol(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return row[idx]
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
