package fetcher

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// TableOptions configures how a tabular source is read.
type TableOptions struct {
	Delimiter rune     // CSV delimiter, default ','
	Encodings []string // fallback order for text sources, default DefaultEncodings
	Sheet     string   // XLSX sheet name, default first sheet
}

// Table is a fully loaded tabular source. Rows include the header row.
type Table struct {
	Source   string
	Encoding string
	Rows     [][]string
}

// Opener reads tables from local paths or http(s) URLs.
type Opener struct {
	fetcher Fetcher
}

// NewOpener creates an Opener. A nil fetcher disables remote sources.
func NewOpener(f Fetcher) *Opener {
	return &Opener{fetcher: f}
}

// IsRemote reports whether src is an http(s) URL.
func IsRemote(src string) bool {
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// IsXLSX reports whether src names an XLSX workbook.
func IsXLSX(src string) bool {
	p := src
	if IsRemote(src) {
		if u, err := url.Parse(src); err == nil {
			p = u.Path
		}
	}
	return strings.EqualFold(path.Ext(p), ".xlsx")
}

// ReadTable loads every row of src. Text sources are decoded through the
// encoding fallback list; a source no candidate can decode fails with an
// error wrapping ErrDecode.
func (o *Opener) ReadTable(ctx context.Context, src string, opts TableOptions) (*Table, error) {
	if IsXLSX(src) {
		return o.readXLSX(ctx, src, opts)
	}

	raw, err := o.readAll(ctx, src)
	if err != nil {
		return nil, err
	}

	text, enc, err := DecodeText(raw, opts.Encodings)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: decode %s", src)
	}
	if enc != "UTF-8" {
		zap.L().Info("fetcher: decoded with fallback encoding",
			zap.String("source", src),
			zap.String("encoding", enc),
		)
	}

	rows, err := ReadCSV(ctx, strings.NewReader(text), CSVOptions{
		Delimiter:  opts.Delimiter,
		LazyQuotes: true,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse %s", src)
	}

	return &Table{Source: src, Encoding: enc, Rows: rows}, nil
}

func (o *Opener) readXLSX(ctx context.Context, src string, opts TableOptions) (*Table, error) {
	local := src
	if IsRemote(src) {
		tmp, err := os.MkdirTemp("", "station-linker-*")
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: create temp dir")
		}
		defer os.RemoveAll(tmp) //nolint:errcheck

		local = filepath.Join(tmp, "source.xlsx")
		if err := o.download(ctx, src, local); err != nil {
			return nil, err
		}
	}

	rows, err := ReadXLSX(local, XLSXOptions{SheetName: opts.Sheet})
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read %s", src)
	}
	return &Table{Source: src, Encoding: "xlsx", Rows: rows}, nil
}

func (o *Opener) readAll(ctx context.Context, src string) ([]byte, error) {
	if !IsRemote(src) {
		raw, err := os.ReadFile(src)
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: read %s", src)
		}
		return raw, nil
	}

	if o.fetcher == nil {
		return nil, eris.Errorf("fetcher: remote source %s given but no http fetcher configured", src)
	}
	body, err := o.fetcher.Download(ctx, src)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: download %s", src)
	}
	defer body.Close() //nolint:errcheck

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body %s", src)
	}
	return buf.Bytes(), nil
}

func (o *Opener) download(ctx context.Context, src, dst string) error {
	if o.fetcher == nil {
		return eris.Errorf("fetcher: remote source %s given but no http fetcher configured", src)
	}
	n, err := o.fetcher.DownloadToFile(ctx, src, dst)
	if err != nil {
		return eris.Wrapf(err, "fetcher: download %s", src)
	}
	zap.L().Debug("fetcher: downloaded", zap.String("source", src), zap.Int64("bytes", n))
	return nil
}
