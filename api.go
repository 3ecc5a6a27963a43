package streamjson

import (
	"io"

	"github.com/pkg/errors"

	"github.com/jquent/streamjson/arena"
)

// readChunkSize bounds the chunks ParseReader hands to the parser.
const readChunkSize = 4096

// Parse builds the value tree of the single JSON document in data,
// allocating from res (nil means the default resource). Anything but
// whitespace after the document is a syntax error.
func Parse(data []byte, res arena.Resource) (*Value, error) {
	p := NewParser(res)
	p.Start()
	n, err := p.Write(data)
	if err != nil {
		return nil, err
	}
	if err := checkTrailing(data[n:], n); err != nil {
		return nil, err
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Release()
}

// ParseReader drives a parser from r in bounded chunks, the loop the
// incremental API exists for: read, write, repeat until the source is
// drained, then finish. Read failures propagate as I/O errors, never as
// syntax errors.
func ParseReader(r io.Reader, res arena.Resource) (*Value, error) {
	p := NewParser(res)
	p.Start()
	buf := make([]byte, readChunkSize)
	off := 0
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			w, err := p.Write(buf[:n])
			if err != nil {
				return nil, err
			}
			if w < n {
				if err := checkTrailing(buf[w:n], off+w); err != nil {
					return nil, err
				}
			}
			off += n
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, errors.Wrap(rerr, "reading input")
		}
	}
	if err := p.Finish(); err != nil {
		return nil, err
	}
	return p.Release()
}

// checkTrailing rejects non-whitespace bytes left over after a complete
// document. off is the absolute offset of rest[0].
func checkTrailing(rest []byte, off int) error {
	for i, b := range rest {
		switch b {
		case ' ', '\t', '\n', '\r':
		default:
			return syntaxErrf(off+i, "unexpected character %q after top-level value", b)
		}
	}
	return nil
}

// Valid reports whether data is a single well-formed JSON document.
func Valid(data []byte) bool {
	_, err := Parse(data, nil)
	return err == nil
}
