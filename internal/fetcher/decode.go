package fetcher

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrDecode is returned when no candidate encoding can decode a source.
var ErrDecode = eris.New("fetcher: input encoding not recognized")

// DefaultEncodings is the fallback order for text sources: UTF-8 first,
// then the two single-byte encodings the registry has historically been
// published in.
var DefaultEncodings = []string{"UTF-8", "ISO-8859-1", "windows-1252"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText decodes raw bytes with the first encoding in names that
// accepts them. It returns the text and the IANA name of the encoding used.
// An empty names list uses DefaultEncodings.
func DecodeText(raw []byte, names []string) (string, string, error) {
	if len(names) == 0 {
		names = DefaultEncodings
	}

	for _, name := range names {
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil {
			return "", "", eris.Wrapf(err, "fetcher: unknown encoding %q", name)
		}
		if enc == nil {
			return "", "", eris.Errorf("fetcher: unsupported encoding %q", name)
		}
		canonical, err := ianaindex.IANA.Name(enc)
		if err != nil {
			canonical = name
		}

		text, ok := decodeStrict(enc, canonical, raw)
		if ok {
			return text, canonical, nil
		}
		zap.L().Debug("fetcher: decode failed, trying next encoding",
			zap.String("encoding", canonical),
		)
	}

	return "", "", eris.Wrapf(ErrDecode, "tried %s", strings.Join(names, ", "))
}

// decodeStrict reports false instead of substituting replacement
// characters, so that the next candidate encoding gets a chance.
func decodeStrict(enc encoding.Encoding, canonical string, raw []byte) (string, bool) {
	if strings.EqualFold(canonical, "UTF-8") {
		raw = bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	}

	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}
