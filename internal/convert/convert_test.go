package convert

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToRecords_Coercion(t *testing.T) {
	rows := [][]string{
		{"Station", "State", "Avg_MW", "Energy"},
		{"Bayswater", "NSW", "1850.5", "8.41861E+11"},
		{"Loy Yang A", "VIC", "NaN", ""},
	}

	got := ToRecords(rows, Options{})
	require.Len(t, got, 2)

	assert.Equal(t, []string{"Station", "State", "Avg_MW", "Energy"}, got[0].Keys())
	v, _ := got[0].Get("Avg_MW")
	assert.Equal(t, 1850.5, v)
	v, _ = got[0].Get("Energy")
	assert.Equal(t, 8.41861e11, v)
	v, _ = got[0].Get("State")
	assert.Equal(t, "NSW", v)

	v, _ = got[1].Get("Avg_MW")
	assert.Equal(t, "NaN", v)
	v, _ = got[1].Get("Energy")
	assert.Equal(t, "", v)
}

func TestToRecords_HexStaysText(t *testing.T) {
	rows := [][]string{
		{"DUID", "Code"},
		{"0x1p4", "-0X10"},
	}

	got := ToRecords(rows, Options{})
	require.Len(t, got, 1)

	v, _ := got[0].Get("DUID")
	assert.Equal(t, "0x1p4", v)
	v, _ = got[0].Get("Code")
	assert.Equal(t, "-0X10", v)
}

func TestToRecords_ShortAndLongRows(t *testing.T) {
	rows := [][]string{
		{"a", "b"},
		{"1"},
		{"2", "x", "extra"},
	}

	got := ToRecords(rows, Options{})
	require.Len(t, got, 2)

	v, ok := got[0].Get("b")
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.Equal(t, []string{"a", "b"}, got[1].Keys())
}

func TestToRecords_Empty(t *testing.T) {
	assert.Nil(t, ToRecords(nil, Options{}))
	assert.Empty(t, ToRecords([][]string{{"a"}}, Options{}))
}

func TestToRecords_DateVariant(t *testing.T) {
	rows := [][]string{
		{"Station", "Accreditation_Start_Date", "Installed_Capacity_MW"},
		{"Bungala One", "12/3/2018", "135"},
		{"Coopers Gap", "01/07/2019", "453"},
		{"Broken", "2019-07-01", "1"},
	}

	got := ToRecords(rows, Options{DateField: "Accreditation_Start_Date"})
	require.Len(t, got, 3)

	assert.Equal(t, []string{
		"Station", "Accreditation_Start_Date", "Installed_Capacity_MW",
		DefaultISOField, DefaultYearField,
	}, got[0].Keys())

	tests := []struct {
		idx      int
		wantDate any
		wantISO  any
		wantYear any
	}{
		{0, "12/3/2018", "2018-03-12", 2018},
		{1, "01/07/2019", "2019-07-01", 2019},
		{2, "2019-07-01", nil, nil},
	}
	for _, tt := range tests {
		rec := got[tt.idx]
		v, _ := rec.Get("Accreditation_Start_Date")
		assert.Equal(t, tt.wantDate, v)
		v, _ = rec.Get(DefaultISOField)
		assert.Equal(t, tt.wantISO, v)
		v, _ = rec.Get(DefaultYearField)
		assert.Equal(t, tt.wantYear, v)
	}
}

func TestToRecords_DateFieldKeptAsText(t *testing.T) {
	got := ToRecords([][]string{{"when"}, {"2020"}}, Options{DateField: "when", ISOField: "iso", YearField: "yr"})
	require.Len(t, got, 1)
	v, _ := got[0].Get("when")
	assert.Equal(t, "2020", v)
	v, _ = got[0].Get("iso")
	assert.Nil(t, v)
}

func TestToRecords_MissingDateField(t *testing.T) {
	got := ToRecords([][]string{{"a"}, {"1"}}, Options{DateField: "when"})
	require.Len(t, got, 1)
	v, ok := got[0].Get(DefaultISOField)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestWriteJSON_KeepsColumnOrder(t *testing.T) {
	rec := Record{{Key: "z", Value: 1.0}, {Key: "a", Value: "x"}, {Key: "m", Value: nil}}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []Record{rec}))
	assert.Equal(t, "[\n  {\n    \"z\": 1,\n    \"a\": \"x\",\n    \"m\": null\n  }\n]\n", buf.String())
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestReadJSON(t *testing.T) {
	in := `[{"b": 2, "a": "x", "n": null, "nested": {"k": [1, 2]}}, {"a": "y", "c": true}]`

	got, err := ReadJSON(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"b", "a", "n", "nested"}, got[0].Keys())
	v, _ := got[0].Get("b")
	assert.Equal(t, 2.0, v)
	v, _ = got[0].Get("nested")
	assert.JSONEq(t, `{"k": [1, 2]}`, string(v.(json.RawMessage)))

	assert.Equal(t, []string{"b", "a", "n", "nested", "c"}, Header(got))
}

func TestReadJSON_NotObjects(t *testing.T) {
	_, err := ReadJSON(context.Background(), strings.NewReader(`[1, 2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "convert: read json")
}

func TestWriteTable(t *testing.T) {
	records := []Record{
		{{Key: "name", Value: "Bayswater"}, {Key: "mw", Value: 8.41861e11}},
		{{Key: "name", Value: "Eraring"}, {Key: "ok", Value: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, records, '\t'))
	assert.Equal(t, "name\tmw\tok\nBayswater\t841861000000\t\nEraring\t\ttrue\n", buf.String())
}

func TestRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Station", "State", "Avg_MW"},
		{"Bayswater", "NSW", "1850.5"},
		{"Hornsdale, Stage 2", "SA", "n/a"},
	}

	var js bytes.Buffer
	require.NoError(t, WriteJSON(&js, ToRecords(rows, Options{})))

	records, err := ReadJSON(context.Background(), &js)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteTable(&out, records, ','))

	back, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}
