package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneration(t *testing.T) {
	rows := [][]string{
		{"DUID", "Total Energy", "Average Power"},
		{" BUNGALA1 ", "1234.5", "51.4"},
		{"", "", ""},
		{"BROKEN1", "n/a", "7"},
	}

	got, err := ParseGeneration(rows)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "BUNGALA1", got[0].UnitID)
	assert.True(t, got[0].EnergyTotal.Valid)
	assert.InDelta(t, 1234.5, got[0].EnergyTotal.Value, 1e-9)
	assert.InDelta(t, 51.4, got[0].AveragePower.Value, 1e-9)

	assert.Equal(t, "BROKEN1", got[1].UnitID)
	assert.False(t, got[1].EnergyTotal.Valid)
	assert.Equal(t, "n/a", got[1].EnergyTotal.String())
}

func TestParseGeneration_ShortRowPadded(t *testing.T) {
	rows := [][]string{
		{"DUID", "Total Energy", "Average Power"},
		{"U1", "10"},
	}

	got, err := ParseGeneration(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].AveragePower.Valid)
	assert.Equal(t, "", got[0].AveragePower.String())
}

func TestParseMapping(t *testing.T) {
	rows := [][]string{
		{"DUID", "Fuel Source", "Region", "Station Name", "Extra"},
		{"U1", " Solar ", "SA1", "Bungala One Solar Farm", "ignored"},
	}

	got, err := ParseMapping(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "U1", got[0].UnitID)
	assert.Equal(t, "Solar", got[0].FuelSource)
	assert.Equal(t, "SA1", got[0].RegionCodeRaw)
	assert.Equal(t, "Bungala One Solar Farm", got[0].StationName)
	assert.Empty(t, got[0].Region)
	assert.False(t, got[0].Renewable)
}

func TestParseRegistry(t *testing.T) {
	rows := [][]string{
		{"Power station name", "Installed capacity (MW)", "Accreditation start date"},
		{"Bungala One Solar Farm - SA", "135", " 12/03/2018 "},
	}

	got, err := ParseRegistry(rows)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bungala One Solar Farm - SA", got[0].StationNameRaw)
	assert.Equal(t, "135", got[0].InstalledCapacity.String())
	assert.Equal(t, "12/03/2018", got[0].AccreditationDate)
	assert.Empty(t, got[0].BaseName)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		parse   func([][]string) error
		rows    [][]string
		wantErr string
	}{
		{
			name:    "empty generation",
			parse:   func(r [][]string) error { _, err := ParseGeneration(r); return err },
			wantErr: "generation table is empty",
		},
		{
			name:    "narrow mapping",
			parse:   func(r [][]string) error { _, err := ParseMapping(r); return err },
			rows:    [][]string{{"DUID", "Fuel", "Region"}},
			wantErr: "mapping table has 3 columns, want 4",
		},
		{
			name:    "narrow registry",
			parse:   func(r [][]string) error { _, err := ParseRegistry(r); return err },
			rows:    [][]string{{"name"}},
			wantErr: "registry table has 1 columns, want 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse(tt.rows)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_HeaderOnly(t *testing.T) {
	got, err := ParseRegistry([][]string{{"a", "b", "c"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}
