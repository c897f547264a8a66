package csvtext

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const utf8BOM = "\uFEFF"

// StripBOM removes a UTF-8 byte order mark from the start of s.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, utf8BOM)
}

// Decoder converts source bytes to UTF-8. The zero value passes bytes through.
type Decoder struct {
	enc encoding.Encoding
}

// NewDecoder returns a Decoder for the named source encoding.
// Supported: "", "utf-8", "utf8", "windows-1252", "cp1252", "latin1".
func NewDecoder(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return Decoder{}, nil
	case "windows-1252", "cp1252":
		return Decoder{enc: charmap.Windows1252}, nil
	case "latin1", "iso-8859-1":
		return Decoder{enc: charmap.ISO8859_1}, nil
	default:
		return Decoder{}, fmt.Errorf("unsupported source encoding %q", name)
	}
}

// Bytes decodes buf. Single-byte charsets map '\n' to '\n', so decoding a
// line-aligned window never moves a line boundary.
func (d Decoder) Bytes(buf []byte) ([]byte, error) {
	if d.enc == nil {
		return buf, nil
	}
	out, err := d.enc.NewDecoder().Bytes(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding source text: %w", err)
	}
	return out, nil
}

// Reader wraps r so reads yield UTF-8.
func (d Decoder) Reader(r io.Reader) io.Reader {
	if d.enc == nil {
		return r
	}
	return transform.NewReader(r, d.enc.NewDecoder())
}
