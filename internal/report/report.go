// Package report summarizes a linkage run for the log and for an optional
// YAML report file.
package report

import (
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/station-linker/internal/dataset"
	"github.com/sells-group/station-linker/internal/resolve"
)

// DefaultSampleSize is the number of matched and unmatched rows kept.
const DefaultSampleSize = 5

// Inputs names the sources a run read.
type Inputs struct {
	Generation string `yaml:"generation"`
	Mapping    string `yaml:"mapping"`
	Registry   string `yaml:"registry"`
}

// Report is a point-in-time summary of one linkage run.
type Report struct {
	RunID          string              `yaml:"run_id"`
	GeneratedAt    time.Time           `yaml:"generated_at"`
	Inputs         Inputs              `yaml:"inputs"`
	Output         string              `yaml:"output,omitempty"`
	Stats          resolve.Stats       `yaml:"stats"`
	MatchedPercent float64             `yaml:"matched_percent"`
	Matched        []dataset.OutputRow `yaml:"sample_matched"`
	Unmatched      []dataset.OutputRow `yaml:"sample_unmatched"`
}

// New builds a report from a run result. sampleSize bounds each sample list;
// values below 1 use DefaultSampleSize.
func New(runID string, in Inputs, res *resolve.Result, sampleSize int) *Report {
	if sampleSize < 1 {
		sampleSize = DefaultSampleSize
	}

	r := &Report{
		RunID:          runID,
		GeneratedAt:    time.Now().UTC(),
		Inputs:         in,
		Stats:          res.Stats,
		MatchedPercent: res.Stats.MatchedPercent(),
		Matched:        []dataset.OutputRow{},
		Unmatched:      []dataset.OutputRow{},
	}

	for _, rec := range res.Records {
		switch {
		case rec.Matched() && len(r.Matched) < sampleSize:
			r.Matched = append(r.Matched, dataset.ToOutputRow(rec))
		case !rec.Matched() && len(r.Unmatched) < sampleSize:
			r.Unmatched = append(r.Unmatched, dataset.ToOutputRow(rec))
		}
		if len(r.Matched) >= sampleSize && len(r.Unmatched) >= sampleSize {
			break
		}
	}
	return r
}

// Log writes the summary and samples to logger.
func (r *Report) Log(logger *zap.Logger) {
	s := r.Stats
	logger = logger.With(zap.String("run_id", r.RunID))

	logger.Info("report: inputs loaded",
		zap.Int("generation_rows", s.GenerationRows),
		zap.Int("mapping_rows", s.MappingRows),
		zap.Int("registry_rows", s.RegistryRows),
		zap.Int("registry_regions", s.RegistryRegions),
		zap.Int("registry_without_region", s.RegistryWithoutRegion),
	)
	logger.Info("report: filter stages",
		zap.Int("renewable_mapping_rows", s.RenewableMappingRows),
		zap.Int("non_renewable_rows", s.NonRenewableRows),
		zap.Int("unmapped_rows", s.UnmappedRows),
		zap.Int("output_rows", s.OutputRows),
	)
	logger.Info("report: matching",
		zap.Int("threshold", s.Threshold),
		zap.Int("match_attempts", s.MatchAttempts),
		zap.Int("matched", s.Matched),
		zap.Float64("matched_percent", r.MatchedPercent),
		zap.Float64("mean_score", s.MeanScore),
	)

	for _, row := range r.Matched {
		logger.Debug("report: sample match",
			zap.String("unit_id", row.UnitID),
			zap.String("generation_station_name", row.GenerationStationName),
			zap.String("registry_station_name", row.RegistryStationName),
			zap.Int("match_score", row.MatchScore),
		)
	}
	for _, row := range r.Unmatched {
		logger.Debug("report: sample unmatched",
			zap.String("unit_id", row.UnitID),
			zap.String("generation_station_name", row.GenerationStationName),
			zap.String("region", row.Region),
		)
	}
}

// WriteYAML encodes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return eris.Wrap(err, "report: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return eris.Wrap(err, "report: close yaml encoder")
	}
	return nil
}

// Save writes the report to path as YAML.
func (r *Report) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	if err := r.WriteYAML(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "report: close %s", path)
	}
	return nil
}
