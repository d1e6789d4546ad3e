package resolve

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/station-linker/internal/model"
)

// ProgressFunc is called every few rows with the number of rows linked so
// far. With concurrency above 1 it may be called from several goroutines.
type ProgressFunc func(done, total int)

// Linker joins generation output to the unit mapping and enriches each
// renewable unit with accreditation data from the registry.
type Linker struct {
	threshold     int
	preprocess    bool
	concurrency   int
	dropUnmapped  bool
	progress      ProgressFunc
	progressEvery int
}

// LinkerOption configures a Linker.
type LinkerOption func(*Linker)

// WithLinkThreshold sets the minimum match score (0-100).
func WithLinkThreshold(threshold int) LinkerOption {
	return func(l *Linker) { l.threshold = threshold }
}

// WithNamePreprocess enables case and punctuation folding before scoring.
func WithNamePreprocess(on bool) LinkerOption {
	return func(l *Linker) { l.preprocess = on }
}

// WithConcurrency sets how many rows are matched in parallel. Output order
// is unaffected.
func WithConcurrency(n int) LinkerOption {
	return func(l *Linker) { l.concurrency = n }
}

// WithDropUnmapped excludes generation rows whose unit id does not appear in
// the mapping table at all. By default they are kept with empty mapping
// fields.
func WithDropUnmapped(drop bool) LinkerOption {
	return func(l *Linker) { l.dropUnmapped = drop }
}

// WithProgress registers a progress callback invoked every n rows.
func WithProgress(n int, fn ProgressFunc) LinkerOption {
	return func(l *Linker) {
		l.progressEvery = n
		l.progress = fn
	}
}

// NewLinker creates a Linker with the default threshold and sequential
// matching.
func NewLinker(opts ...LinkerOption) *Linker {
	l := &Linker{
		threshold:   DefaultThreshold,
		concurrency: 1,
	}
	for _, o := range opts {
		o(l)
	}
	if l.concurrency < 1 {
		l.concurrency = 1
	}
	return l
}

// Result is the linked record set plus the statistics of the run.
type Result struct {
	Records []model.LinkedRecord
	Stats   Stats
}

// Stats counts rows at each stage of a linkage run.
type Stats struct {
	GenerationRows        int     `json:"generation_rows" yaml:"generation_rows"`
	MappingRows           int     `json:"mapping_rows" yaml:"mapping_rows"`
	RegistryRows          int     `json:"registry_rows" yaml:"registry_rows"`
	RegistryRegions       int     `json:"registry_regions" yaml:"registry_regions"`
	RegistryWithoutRegion int     `json:"registry_without_region" yaml:"registry_without_region"`
	RenewableMappingRows  int     `json:"renewable_mapping_rows" yaml:"renewable_mapping_rows"`
	NonRenewableRows      int     `json:"non_renewable_rows" yaml:"non_renewable_rows"`
	UnmappedRows          int     `json:"unmapped_rows" yaml:"unmapped_rows"`
	OutputRows            int     `json:"output_rows" yaml:"output_rows"`
	MatchAttempts         int     `json:"match_attempts" yaml:"match_attempts"`
	Matched               int     `json:"matched" yaml:"matched"`
	MeanScore             float64 `json:"mean_score" yaml:"mean_score"`
	Threshold             int     `json:"threshold" yaml:"threshold"`
}

// MatchedPercent returns the share of output rows that matched, 0-100.
func (s Stats) MatchedPercent() float64 {
	if s.OutputRows == 0 {
		return 0
	}
	return float64(s.Matched) / float64(s.OutputRows) * 100
}

type linkJob struct {
	gen     model.GenerationRecord
	mapping *model.MappingRecord
	attempt bool
}

// Link runs the linkage:
//  1. Derive region and renewable flag on every mapping row
//  2. Drop generation rows whose unit maps only to non-renewable rows
//  3. Left join the remaining generation rows to the mapping by unit id
//  4. Fuzzy match each joined station name within its region block
//
// Output preserves the input order of generation. The only error returned
// is context cancellation.
func (l *Linker) Link(ctx context.Context, generation []model.GenerationRecord, mapping []model.MappingRecord, registry []model.RegistryRecord) (*Result, error) {
	stats := Stats{
		GenerationRows: len(generation),
		MappingRows:    len(mapping),
		RegistryRows:   len(registry),
		Threshold:      l.threshold,
	}

	prepared := make([]model.MappingRecord, len(mapping))
	known := make(map[string]struct{}, len(mapping))
	renewable := make(map[string]*model.MappingRecord, len(mapping))
	for i, m := range mapping {
		m.Region = NormalizeRegion(m.RegionCodeRaw)
		m.Renewable = IsRenewable(m.FuelSource)
		prepared[i] = m
		known[m.UnitID] = struct{}{}
		if !m.Renewable {
			continue
		}
		stats.RenewableMappingRows++
		if _, dup := renewable[m.UnitID]; !dup {
			renewable[m.UnitID] = &prepared[i]
		}
	}

	idx := NewIndex(registry)
	stats.RegistryRegions = len(idx.Regions())
	stats.RegistryWithoutRegion = len(idx.Block(""))
	matcher := NewMatcher(idx, WithThreshold(l.threshold), WithPreprocess(l.preprocess))

	jobs := make([]linkJob, 0, len(generation))
	for _, g := range generation {
		if m, ok := renewable[g.UnitID]; ok {
			attempt := strings.TrimSpace(m.StationName) != "" && m.Region != ""
			if attempt {
				stats.MatchAttempts++
			}
			jobs = append(jobs, linkJob{gen: g, mapping: m, attempt: attempt})
			continue
		}
		if _, ok := known[g.UnitID]; ok {
			stats.NonRenewableRows++
			continue
		}
		stats.UnmappedRows++
		if l.dropUnmapped {
			continue
		}
		jobs = append(jobs, linkJob{gen: g})
	}

	records := make([]model.LinkedRecord, len(jobs))
	if err := l.run(ctx, matcher, jobs, records); err != nil {
		return nil, err
	}

	stats.OutputRows = len(records)
	var scoreSum int
	for _, r := range records {
		if r.Matched() {
			stats.Matched++
			scoreSum += r.Score
		}
	}
	if stats.Matched > 0 {
		stats.MeanScore = float64(scoreSum) / float64(stats.Matched)
	}

	return &Result{Records: records, Stats: stats}, nil
}

func (l *Linker) run(ctx context.Context, matcher *Matcher, jobs []linkJob, out []model.LinkedRecord) error {
	var done atomic.Int64
	total := len(jobs)
	tick := func() {
		n := int(done.Add(1))
		if l.progress != nil && l.progressEvery > 0 && (n%l.progressEvery == 0 || n == total) {
			l.progress(n, total)
		}
	}

	if l.concurrency == 1 {
		for i, j := range jobs {
			if err := ctx.Err(); err != nil {
				return eris.Wrap(err, "resolve: link cancelled")
			}
			out[i] = linkOne(matcher, j)
			tick()
		}
		return nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, j := range jobs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "resolve: link cancelled")
			}
			out[i] = linkOne(matcher, j)
			tick()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "resolve: link cancelled")
	}
	return nil
}

func linkOne(matcher *Matcher, j linkJob) model.LinkedRecord {
	var match model.MatchResult
	if j.attempt {
		match = matcher.Match(j.mapping.StationName, j.mapping.Region)
	}
	return model.NewLinkedRecord(j.gen, j.mapping, match)
}
