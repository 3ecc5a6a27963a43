package streamjson

import (
	"unicode/utf8"
)

// scanner turns pushed bytes into tokens. The current mode function and
// the partial token text survive between calls, so a chunk boundary may
// fall anywhere: inside a string, an escape sequence, a \uXXXX group, a
// number or a literal.
type scanner struct {
	mode  scanFunc
	buf   []byte // text of the token being scanned
	off   int    // absolute offset of the byte being examined
	start int    // offset of the first byte of the current token

	lit     string // remaining bytes of an expected literal
	litKind tokenKind

	hex     rune // \uXXXX accumulator
	hexLeft int
	hi      rune // pending high surrogate

	inString bool
	inNumber bool

	tok      token
	hasTok   bool
	consumed bool
}

type scanFunc func(*scanner, byte) (scanFunc, error)

func (s *scanner) reset() {
	s.mode = scanValue
	s.buf = s.buf[:0]
	s.off = 0
	s.start = 0
	s.lit = ""
	s.hex = 0
	s.hexLeft = 0
	s.hi = 0
	s.inString = false
	s.inNumber = false
	s.hasTok = false
}

// step examines one byte. It reports the token completed by the byte, if
// any, and whether the byte itself was consumed; an unconsumed byte
// terminated a token and must be fed again.
func (s *scanner) step(b byte) (tok token, emitted, consumed bool, err error) {
	s.hasTok = false
	s.consumed = true
	next, err := s.mode(s, b)
	if err != nil {
		return token{}, false, false, err
	}
	s.mode = next
	if s.consumed {
		s.off++
	}
	return s.tok, s.hasTok, s.consumed, nil
}

// flush handles end of input: a pending number becomes a token, any other
// unfinished token is an error.
func (s *scanner) flush() (token, bool, error) {
	s.hasTok = false
	switch {
	case s.inString:
		return token{}, false, syntaxErrf(s.start, "unterminated string")
	case s.lit != "":
		return token{}, false, syntaxErrf(s.start, "truncated literal")
	case s.inNumber:
		s.inNumber = false
		s.mode = scanValue
		s.emit(tkNumber)
		return s.tok, true, nil
	}
	return token{}, false, nil
}

func (s *scanner) emit(kind tokenKind) {
	s.tok = token{kind: kind, text: s.buf, off: s.start}
	s.hasTok = true
}

func scanValue(s *scanner, b byte) (scanFunc, error) {
	switch b {
	case ' ', '\t', '\n', '\r':
		return scanValue, nil
	case '{', '}', '[', ']', ',', ':':
		s.start = s.off
		s.buf = s.buf[:0]
		s.emit(punctKind(b))
		return scanValue, nil
	case '"':
		s.start = s.off
		s.buf = s.buf[:0]
		s.inString = true
		return scanString, nil
	case 't':
		return s.literal(tkTrue, "rue"), nil
	case 'f':
		return s.literal(tkFalse, "alse"), nil
	case 'n':
		return s.literal(tkNull, "ull"), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s.start = s.off
		s.buf = append(s.buf[:0], b)
		s.inNumber = true
		return scanNumber, nil
	default:
		return nil, syntaxErrf(s.off, "unexpected character %q", b)
	}
}

func (s *scanner) literal(kind tokenKind, rest string) scanFunc {
	s.start = s.off
	s.litKind = kind
	s.lit = rest
	return scanLiteral
}

func scanLiteral(s *scanner, b byte) (scanFunc, error) {
	if b != s.lit[0] {
		return nil, syntaxErrf(s.off, "invalid literal")
	}
	s.lit = s.lit[1:]
	if s.lit != "" {
		return scanLiteral, nil
	}
	s.buf = s.buf[:0]
	s.emit(s.litKind)
	return scanValue, nil
}

func scanNumber(s *scanner, b byte) (scanFunc, error) {
	switch b {
	case '+', '-', '.', 'e', 'E',
		'0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		s.buf = append(s.buf, b)
		return scanNumber, nil
	}
	s.inNumber = false
	s.consumed = false
	s.emit(tkNumber)
	return scanValue, nil
}

func scanString(s *scanner, b byte) (scanFunc, error) {
	switch {
	case b == '"':
		if !utf8.Valid(s.buf) {
			return nil, syntaxErrf(s.start, "invalid UTF-8 in string")
		}
		s.inString = false
		s.emit(tkString)
		return scanValue, nil
	case b == '\\':
		return scanEscape, nil
	case b < 0x20:
		return nil, syntaxErrf(s.off, "control character in string")
	default:
		s.buf = append(s.buf, b)
		return scanString, nil
	}
}

func scanEscape(s *scanner, b byte) (scanFunc, error) {
	if s.hi != 0 && b != 'u' {
		return nil, syntaxErrf(s.off, "unpaired surrogate escape")
	}
	switch b {
	case '"', '\\', '/':
		s.buf = append(s.buf, b)
	case 'b':
		s.buf = append(s.buf, '\b')
	case 'f':
		s.buf = append(s.buf, '\f')
	case 'n':
		s.buf = append(s.buf, '\n')
	case 'r':
		s.buf = append(s.buf, '\r')
	case 't':
		s.buf = append(s.buf, '\t')
	case 'u':
		s.hex = 0
		s.hexLeft = 4
		return scanUnicode, nil
	default:
		return nil, syntaxErrf(s.off, "invalid escape character %q", b)
	}
	return scanString, nil
}

func scanUnicode(s *scanner, b byte) (scanFunc, error) {
	var d rune
	switch {
	case b >= '0' && b <= '9':
		d = rune(b - '0')
	case b >= 'a' && b <= 'f':
		d = rune(b-'a') + 10
	case b >= 'A' && b <= 'F':
		d = rune(b-'A') + 10
	default:
		return nil, syntaxErrf(s.off, "invalid character %q in \\u escape", b)
	}
	s.hex = s.hex<<4 | d
	s.hexLeft--
	if s.hexLeft > 0 {
		return scanUnicode, nil
	}
	r := s.hex
	switch {
	case s.hi != 0:
		if r < 0xDC00 || r > 0xDFFF {
			return nil, syntaxErrf(s.off, "unpaired surrogate escape")
		}
		r = 0x10000 + (s.hi-0xD800)<<10 + (r - 0xDC00)
		s.hi = 0
	case r >= 0xD800 && r <= 0xDBFF:
		s.hi = r
		return scanSurrogate, nil
	case r >= 0xDC00 && r <= 0xDFFF:
		return nil, syntaxErrf(s.off, "unpaired surrogate escape")
	}
	s.buf = utf8.AppendRune(s.buf, r)
	return scanString, nil
}

// scanSurrogate demands the \u that must follow a high surrogate.
func scanSurrogate(s *scanner, b byte) (scanFunc, error) {
	if b != '\\' {
		return nil, syntaxErrf(s.off, "unpaired surrogate escape")
	}
	return scanEscape, nil
}
