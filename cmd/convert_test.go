package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/station-linker/internal/convert"
)

func TestRunToJSON_AndBack(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "top10.tsv")
	require.NoError(t, os.WriteFile(in, []byte("Station\tState\tEnergy\nBayswater\tNSW\t8.41861E+11\n"), 0o644))

	js := filepath.Join(dir, "top10.json")
	require.NoError(t, runToJSON(context.Background(), testConfig(), in, js, '\t', convert.Options{}))

	data, err := os.ReadFile(js)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Station": "Bayswater", "State": "NSW", "Energy": 841861000000}]`, string(data))

	back := filepath.Join(dir, "back.tsv")
	require.NoError(t, runFromJSON(context.Background(), js, back, '\t'))

	data, err = os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "Station\tState\tEnergy\nBayswater\tNSW\t841861000000\n", string(data))
}

func TestRunToJSON_DateVariant(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "projects.csv")
	require.NoError(t, os.WriteFile(in, []byte("Station,Accreditation_Start_Date\nBungala One,12/03/2018\nOdd,unknown\n"), 0o644))

	out := filepath.Join(dir, "projects.json")
	opts := convert.Options{DateField: "Accreditation_Start_Date", ISOField: convert.DefaultISOField, YearField: convert.DefaultYearField}
	require.NoError(t, runToJSON(context.Background(), testConfig(), in, out, ',', opts))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"Station": "Bungala One", "Accreditation_Start_Date": "12/03/2018", "Accreditation_Date_ISO": "2018-03-12", "Accreditation_Year": 2018},
		{"Station": "Odd", "Accreditation_Start_Date": "unknown", "Accreditation_Date_ISO": null, "Accreditation_Year": null}
	]`, string(data))
}

func TestRunFromJSON_MissingFile(t *testing.T) {
	err := runFromJSON(context.Background(), filepath.Join(t.TempDir(), "nope.json"), "-", ',')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.json")
}

func TestRunToJSON_RemoteUsesConfiguredRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.HTTP.MaxRetries = 0
	err := runToJSON(context.Background(), cfg, srv.URL+"/top10.tsv", filepath.Join(t.TempDir(), "out.json"), '\t', convert.Options{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
