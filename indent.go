package streamjson

import (
	"bytes"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// indentUnit is one level of indentation in pretty output.
const indentUnit = "    "

// WriteIndent renders v as indented JSON text: 4 spaces per nesting
// level, " : " between keys and values, one trailing newline, and no
// trailing whitespace on structural lines. Empty arrays and objects keep
// the bracket/newline skeleton of non-empty ones. The tree is only read,
// never mutated.
func WriteIndent(w io.Writer, v *Value) (int, error) {
	b, err := AppendIndent(nil, v)
	if err != nil {
		return 0, err
	}
	return w.Write(b)
}

// AppendIndent appends the indented rendering of v to dst.
func AppendIndent(dst []byte, v *Value) ([]byte, error) {
	return appendPretty(dst, v, nil)
}

func appendPretty(dst []byte, v *Value, indent []byte) ([]byte, error) {
	var err error
	switch v.kind {
	case Object:
		dst = append(dst, '{', '\n')
		inner := append(indent, indentUnit...)
		for i := range v.obj {
			if i > 0 {
				dst = append(dst, ',', '\n')
			}
			dst = append(dst, inner...)
			dst = appendQuoted(dst, v.obj[i].key)
			dst = append(dst, " : "...)
			if dst, err = appendPretty(dst, &v.obj[i].val, inner); err != nil {
				return nil, err
			}
		}
		dst = append(dst, '\n')
		dst = append(dst, indent...)
		dst = append(dst, '}')
	case Array:
		dst = append(dst, '[', '\n')
		inner := append(indent, indentUnit...)
		for i := range v.arr {
			if i > 0 {
				dst = append(dst, ',', '\n')
			}
			dst = append(dst, inner...)
			if dst, err = appendPretty(dst, &v.arr[i], inner); err != nil {
				return nil, err
			}
		}
		dst = append(dst, '\n')
		dst = append(dst, indent...)
		dst = append(dst, ']')
	default:
		if dst, err = appendScalar(dst, v); err != nil {
			return nil, err
		}
	}
	if len(indent) == 0 {
		dst = append(dst, '\n')
	}
	return dst, nil
}

// WriteTo writes v as compact JSON with no whitespace.
func (v *Value) WriteTo(w io.Writer) (int64, error) {
	b, err := appendCompact(nil, v)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// MarshalJSON implements json.Marshaler with the compact rendering.
func (v *Value) MarshalJSON() ([]byte, error) {
	return appendCompact(nil, v)
}

// UnmarshalJSON implements json.Unmarshaler. The tree is allocated from
// v's resource when it has one, otherwise from the default resource.
func (v *Value) UnmarshalJSON(data []byte) error {
	m, err := Parse(data, v.res)
	if err != nil {
		return err
	}
	*v = *m
	return nil
}

// String renders v as compact JSON, or "" when v holds a double with no
// JSON form.
func (v *Value) String() string {
	b, err := appendCompact(nil, v)
	if err != nil {
		return ""
	}
	return string(b)
}

func appendCompact(dst []byte, v *Value) ([]byte, error) {
	var err error
	switch v.kind {
	case Object:
		dst = append(dst, '{')
		for i := range v.obj {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendQuoted(dst, v.obj[i].key)
			dst = append(dst, ':')
			if dst, err = appendCompact(dst, &v.obj[i].val); err != nil {
				return nil, err
			}
		}
		dst = append(dst, '}')
	case Array:
		dst = append(dst, '[')
		for i := range v.arr {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = appendCompact(dst, &v.arr[i]); err != nil {
				return nil, err
			}
		}
		dst = append(dst, ']')
	default:
		return appendScalar(dst, v)
	}
	return dst, nil
}

func appendScalar(dst []byte, v *Value) ([]byte, error) {
	switch v.kind {
	case Null:
		return append(dst, "null"...), nil
	case Bool:
		if v.b {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case Int64:
		return strconv.AppendInt(dst, v.i, 10), nil
	case Uint64:
		return strconv.AppendUint(dst, v.u, 10), nil
	case Double:
		return appendDouble(dst, v.f)
	case String:
		return appendQuoted(dst, v.str), nil
	default:
		return nil, errors.Errorf("cannot render value of kind %d", v.kind)
	}
}

// appendDouble renders f in its shortest form, keeping a fractional or
// exponent marker so the text parses back as a double.
func appendDouble(dst []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.Errorf("double %v has no JSON representation", f)
	}
	n := len(dst)
	dst = strconv.AppendFloat(dst, f, 'g', -1, 64)
	if !bytes.ContainsAny(dst[n:], ".eE") {
		dst = append(dst, '.', '0')
	}
	return dst, nil
}

const hexDigits = "0123456789abcdef"

func appendQuoted(dst, s []byte) []byte {
	dst = append(dst, '"')
	for _, b := range s {
		switch {
		case b == '"':
			dst = append(dst, '\\', '"')
		case b == '\\':
			dst = append(dst, '\\', '\\')
		case b >= 0x20:
			dst = append(dst, b)
		case b == '\n':
			dst = append(dst, '\\', 'n')
		case b == '\t':
			dst = append(dst, '\\', 't')
		case b == '\r':
			dst = append(dst, '\\', 'r')
		case b == '\b':
			dst = append(dst, '\\', 'b')
		case b == '\f':
			dst = append(dst, '\\', 'f')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xf])
		}
	}
	return append(dst, '"')
}
