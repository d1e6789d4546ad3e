// Package model defines the records that flow through a linkage run.
package model

import (
	"math"
	"strconv"
	"strings"
)

// Number is a coerced numeric cell. When the raw text does not parse as a
// finite float, Valid is false and Raw is kept so the value can be written
// back out unchanged.
type Number struct {
	Value float64 `json:"value"`
	Raw   string  `json:"raw,omitempty"`
	Valid bool    `json:"valid"`
}

// ParseNumber coerces a text cell into a Number. Parse failures are absorbed.
// Only decimal notation counts; hex floats such as "0x1p4" stay text.
func ParseNumber(raw string) Number {
	s := strings.TrimSpace(raw)
	if hasHexPrefix(s) {
		return Number{Raw: raw}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{Raw: raw}
	}
	return Number{Value: v, Raw: raw, Valid: true}
}

func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// NewNumber wraps an already-numeric value.
func NewNumber(v float64) Number {
	return Number{Value: v, Raw: FormatFloat(v), Valid: true}
}

// String renders the number for tabular output. Invalid numbers render as
// their raw text.
func (n Number) String() string {
	if !n.Valid {
		return n.Raw
	}
	return FormatFloat(n.Value)
}

// FormatFloat returns the shortest decimal representation that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// GenerationRecord is one row of the generation-output table.
type GenerationRecord struct {
	UnitID       string `json:"unit_id"`
	EnergyTotal  Number `json:"energy_total"`
	AveragePower Number `json:"average_power"`
}

// MappingRecord links a generation unit to its station. Region and Renewable
// are derived during linkage.
type MappingRecord struct {
	UnitID        string `json:"unit_id"`
	FuelSource    string `json:"fuel_source,omitempty"`
	RegionCodeRaw string `json:"region_code_raw"`
	StationName   string `json:"station_name"`

	Region    string `json:"region"`
	Renewable bool   `json:"renewable"`
}

// RegistryRecord is one accreditation registry entry. BaseName and Region are
// derived from StationNameRaw.
type RegistryRecord struct {
	StationNameRaw    string `json:"station_name_raw"`
	InstalledCapacity Number `json:"installed_capacity"`
	AccreditationDate string `json:"accreditation_date"`

	BaseName string `json:"base_name"`
	Region   string `json:"region"`
}

// MatchResult is the outcome of one fuzzy lookup. Record is nil when nothing
// cleared the threshold, in which case Score is 0.
type MatchResult struct {
	Record *RegistryRecord
	Score  int
}

// Matched reports whether the lookup produced a candidate.
func (m MatchResult) Matched() bool {
	return m.Record != nil
}

// Accreditation holds the registry fields copied onto a matched unit.
type Accreditation struct {
	StationName       string `json:"registry_station_name"`
	InstalledCapacity Number `json:"installed_capacity"`
	AccreditationDate string `json:"accreditation_date"`
}

// LinkedRecord is one output row: a generation unit, its mapping fields, and
// the accreditation enrichment when a confident match exists.
type LinkedRecord struct {
	UnitID                string         `json:"unit_id"`
	EnergyTotal           Number         `json:"energy_total"`
	AveragePower          Number         `json:"average_power"`
	FuelSource            string         `json:"fuel_source"`
	Region                string         `json:"region"`
	GenerationStationName string         `json:"generation_station_name"`
	Mapped                bool           `json:"mapped"`
	Accreditation         *Accreditation `json:"accreditation,omitempty"`
	Score                 int            `json:"match_score"`
}

// NewLinkedRecord assembles an output row. A nil or empty match leaves the
// record unmatched with score 0.
func NewLinkedRecord(gen GenerationRecord, mapping *MappingRecord, match MatchResult) LinkedRecord {
	rec := LinkedRecord{
		UnitID:       gen.UnitID,
		EnergyTotal:  gen.EnergyTotal,
		AveragePower: gen.AveragePower,
	}
	if mapping != nil {
		rec.Mapped = true
		rec.FuelSource = mapping.FuelSource
		rec.Region = mapping.Region
		rec.GenerationStationName = mapping.StationName
	}
	if match.Matched() {
		rec.Accreditation = &Accreditation{
			StationName:       match.Record.StationNameRaw,
			InstalledCapacity: match.Record.InstalledCapacity,
			AccreditationDate: match.Record.AccreditationDate,
		}
		rec.Score = match.Score
	}
	return rec
}

// Matched reports whether the record carries accreditation enrichment.
func (r LinkedRecord) Matched() bool {
	return r.Accreditation != nil
}
