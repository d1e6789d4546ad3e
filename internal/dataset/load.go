package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/station-linker/internal/fetcher"
	"github.com/sells-group/station-linker/internal/model"
)

// Sources names the three input tables. Each may be a local path or an
// http(s) URL.
type Sources struct {
	Generation string
	Mapping    string
	Registry   string
}

// Tables holds the bound input tables for one linkage run.
type Tables struct {
	Generation []model.GenerationRecord
	Mapping    []model.MappingRecord
	Registry   []model.RegistryRecord
}

// Loader reads and binds the input tables.
type Loader struct {
	opener *fetcher.Opener
	opts   fetcher.TableOptions
}

// NewLoader creates a Loader that reads through opener.
func NewLoader(opener *fetcher.Opener, opts fetcher.TableOptions) *Loader {
	return &Loader{opener: opener, opts: opts}
}

// Load reads all three tables. Any unreadable or undecodable table aborts
// the load with an error naming the source.
func (l *Loader) Load(ctx context.Context, src Sources) (*Tables, error) {
	var t Tables

	rows, err := l.read(ctx, src.Generation)
	if err != nil {
		return nil, err
	}
	if t.Generation, err = ParseGeneration(rows); err != nil {
		return nil, eris.Wrapf(err, "dataset: bind %s", src.Generation)
	}

	rows, err = l.read(ctx, src.Mapping)
	if err != nil {
		return nil, err
	}
	if t.Mapping, err = ParseMapping(rows); err != nil {
		return nil, eris.Wrapf(err, "dataset: bind %s", src.Mapping)
	}

	rows, err = l.read(ctx, src.Registry)
	if err != nil {
		return nil, err
	}
	if t.Registry, err = ParseRegistry(rows); err != nil {
		return nil, eris.Wrapf(err, "dataset: bind %s", src.Registry)
	}

	zap.L().Info("dataset: loaded tables",
		zap.Int("generation", len(t.Generation)),
		zap.Int("mapping", len(t.Mapping)),
		zap.Int("registry", len(t.Registry)),
	)
	return &t, nil
}

func (l *Loader) read(ctx context.Context, src string) ([][]string, error) {
	if src == "" {
		return nil, eris.New("dataset: source path is required")
	}
	tbl, err := l.opener.ReadTable(ctx, src, l.opts)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read %s", src)
	}
	return tbl.Rows, nil
}
